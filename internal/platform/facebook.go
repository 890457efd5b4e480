package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/postlinehq/postline/internal/models"
)

const facebookAPIBase = "https://graph.facebook.com"

type FacebookAdapter struct {
	creds   *Credentials
	apiBase string
	client  *http.Client
}

func NewFacebookAdapter(creds *Credentials) *FacebookAdapter {
	return &FacebookAdapter{
		creds:   creds,
		apiBase: facebookAPIBase,
		client:  &http.Client{Timeout: defaultHTTPTimeout},
	}
}

func (f *FacebookAdapter) ValidateCredentials(ctx context.Context) bool {
	reqURL := fmt.Sprintf("%s/me?access_token=%s", f.apiBase, f.creds.AccessToken)
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return false
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

func (f *FacebookAdapter) Publish(ctx context.Context, req *PublishRequest) *PublishResult {
	if res := checkContent(models.PlatformFacebook, req); res != nil {
		return res
	}

	if f.creds.PageID == "" {
		return failure("facebook page id missing from integration data")
	}

	payload := map[string]any{
		"message":      req.Content,
		"access_token": f.creds.AccessToken,
	}
	if len(req.MediaURLs) > 0 {
		payload["link"] = req.MediaURLs[0]
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return failure("error marshalling payload: %v", err)
	}

	reqURL := fmt.Sprintf("%s/%s/feed", f.apiBase, f.creds.PageID)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", reqURL, bytes.NewBuffer(body))
	if err != nil {
		return failure("error creating request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return failure("facebook request failed: %v", err)
	}
	defer resp.Body.Close()

	var result struct {
		ID    string `json:"id"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return failure("error parsing facebook response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return failure("facebook returned status %d: %s", resp.StatusCode, result.Error.Message)
	}
	if result.ID == "" {
		return failure("no post id returned from facebook")
	}

	return &PublishResult{
		Success:     true,
		ExternalID:  result.ID,
		ExternalURL: fmt.Sprintf("https://www.facebook.com/%s", result.ID),
	}
}
