package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/postlinehq/postline/internal/models"
	"github.com/postlinehq/postline/internal/transfer"
)

const linkedinAPIBase = "https://api.linkedin.com"

type LinkedinAdapter struct {
	creds   *Credentials
	apiBase string
}

func NewLinkedinAdapter(creds *Credentials) *LinkedinAdapter {
	return &LinkedinAdapter{creds: creds, apiBase: linkedinAPIBase}
}

func (l *LinkedinAdapter) ValidateCredentials(ctx context.Context) bool {
	client := bearerClient(ctx, l.creds.AccessToken)
	req, err := http.NewRequestWithContext(ctx, "GET", l.apiBase+"/v2/me", nil)
	if err != nil {
		return false
	}

	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

func (l *LinkedinAdapter) Publish(ctx context.Context, req *PublishRequest) *PublishResult {
	if res := checkContent(models.PlatformLinkedin, req); res != nil {
		return res
	}

	// Token liveness is checked earlier; a missing person URN only surfaces
	// here, at publish time.
	if l.creds.PersonURN == "" {
		return failure("linkedin person URN missing from integration data")
	}

	mediaCategory := "NONE"
	var media []transfer.LinkedinMedia
	for _, u := range req.MediaURLs {
		media = append(media, transfer.LinkedinMedia{Status: "READY", OriginalURL: u})
	}
	if len(media) > 0 {
		mediaCategory = "IMAGE"
	}

	share := transfer.LinkedinShareRequest{
		Author:         l.creds.PersonURN,
		LifecycleState: "PUBLISHED",
		SpecificContent: transfer.LinkedinSpecificContent{
			ShareContent: transfer.LinkedinShareContent{
				ShareCommentary:    transfer.LinkedinText{Text: req.Content},
				ShareMediaCategory: mediaCategory,
				Media:              media,
			},
		},
		Visibility: transfer.LinkedinVisibility{MemberNetworkVisibility: "PUBLIC"},
	}

	body, err := json.Marshal(share)
	if err != nil {
		return failure("error marshalling share payload: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", l.apiBase+"/v2/ugcPosts", bytes.NewBuffer(body))
	if err != nil {
		return failure("error creating request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	client := bearerClient(ctx, l.creds.AccessToken)
	resp, err := client.Do(httpReq)
	if err != nil {
		return failure("linkedin request failed: %v", err)
	}
	defer resp.Body.Close()

	var result transfer.LinkedinShareResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return failure("error parsing linkedin response: %v", err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return failure("linkedin returned status %d: %s", resp.StatusCode, result.Message)
	}
	if result.ID == "" {
		return failure("no share id returned from linkedin")
	}

	// The id is composite, e.g. urn:li:share:7234. The trailing segment is
	// what the canonical feed URL wants.
	shareID := result.ID
	if i := strings.LastIndex(shareID, ":"); i >= 0 {
		shareID = shareID[i+1:]
	}

	return &PublishResult{
		Success:     true,
		ExternalID:  result.ID,
		ExternalURL: fmt.Sprintf("https://www.linkedin.com/feed/update/urn:li:share:%s", shareID),
	}
}
