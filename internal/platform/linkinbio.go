package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/postlinehq/postline/internal/models"
)

// LinkInBioAdapter publishes to the product's own bio-page service. Same
// contract as the external platforms, just pointed at an internal API.
type LinkInBioAdapter struct {
	creds   *Credentials
	apiBase string
	client  *http.Client
}

func NewLinkInBioAdapter(creds *Credentials, apiBase string) *LinkInBioAdapter {
	return &LinkInBioAdapter{
		creds:   creds,
		apiBase: apiBase,
		client:  &http.Client{Timeout: defaultHTTPTimeout},
	}
}

func (l *LinkInBioAdapter) ValidateCredentials(ctx context.Context) bool {
	if l.creds.PageSlug == "" {
		return false
	}

	reqURL := fmt.Sprintf("%s/api/pages/%s", l.apiBase, l.creds.PageSlug)
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+l.creds.AccessToken)

	resp, err := l.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

func (l *LinkInBioAdapter) Publish(ctx context.Context, req *PublishRequest) *PublishResult {
	if res := checkContent(models.PlatformLinkInBio, req); res != nil {
		return res
	}

	if l.creds.PageSlug == "" {
		return failure("bio page slug missing from integration data")
	}

	payload := map[string]any{
		"content":    req.Content,
		"media_urls": req.MediaURLs,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return failure("error marshalling payload: %v", err)
	}

	reqURL := fmt.Sprintf("%s/api/pages/%s/posts", l.apiBase, l.creds.PageSlug)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", reqURL, bytes.NewBuffer(body))
	if err != nil {
		return failure("error creating request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+l.creds.AccessToken)

	resp, err := l.client.Do(httpReq)
	if err != nil {
		return failure("bio service request failed: %v", err)
	}
	defer resp.Body.Close()

	var result struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return failure("error parsing bio service response: %v", err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return failure("bio service returned status %d", resp.StatusCode)
	}
	if result.ID == "" {
		return failure("no post id returned from bio service")
	}

	externalURL := result.URL
	if externalURL == "" {
		externalURL = fmt.Sprintf("%s/%s", l.apiBase, l.creds.PageSlug)
	}

	return &PublishResult{Success: true, ExternalID: result.ID, ExternalURL: externalURL}
}
