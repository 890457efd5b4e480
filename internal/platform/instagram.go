package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/postlinehq/postline/internal/models"
)

const instagramAPIBase = "https://graph.instagram.com"

type InstagramAdapter struct {
	creds   *Credentials
	apiBase string
	client  *http.Client
}

func NewInstagramAdapter(creds *Credentials) *InstagramAdapter {
	return &InstagramAdapter{
		creds:   creds,
		apiBase: instagramAPIBase,
		client:  &http.Client{Timeout: defaultHTTPTimeout},
	}
}

func (ig *InstagramAdapter) ValidateCredentials(ctx context.Context) bool {
	reqURL := fmt.Sprintf("%s/me?fields=id,username&access_token=%s", ig.apiBase, ig.creds.AccessToken)
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return false
	}

	resp, err := ig.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false
	}
	return result.ID != ""
}

// Publish runs the two-step Graph flow: create a media container for the
// image, then publish the container by its creation id.
func (ig *InstagramAdapter) Publish(ctx context.Context, req *PublishRequest) *PublishResult {
	if res := checkContent(models.PlatformInstagram, req); res != nil {
		return res
	}

	if ig.creds.InstagramAccountID == "" {
		return failure("instagram account id missing from integration data")
	}
	if len(req.MediaURLs) == 0 {
		return failure("instagram requires at least one media url")
	}

	containerID, err := ig.createContainer(ctx, req.MediaURLs[0], req.Content)
	if err != nil {
		return failure("container creation failed: %v", err)
	}

	mediaID, err := ig.publishContainer(ctx, containerID)
	if err != nil {
		return failure("container publish failed: %v", err)
	}

	externalURL := ig.fetchPermalink(ctx, mediaID)
	if externalURL == "" {
		externalURL = fmt.Sprintf("https://www.instagram.com/p/%s/", mediaID)
	}

	return &PublishResult{Success: true, ExternalID: mediaID, ExternalURL: externalURL}
}

func (ig *InstagramAdapter) createContainer(ctx context.Context, imageURL, caption string) (string, error) {
	reqURL := fmt.Sprintf("%s/v21.0/%s/media", ig.apiBase, ig.creds.InstagramAccountID)
	payload := map[string]any{
		"image_url":    imageURL,
		"caption":      caption,
		"access_token": ig.creds.AccessToken,
	}
	return ig.postForID(ctx, reqURL, payload)
}

func (ig *InstagramAdapter) publishContainer(ctx context.Context, containerID string) (string, error) {
	reqURL := fmt.Sprintf("%s/v21.0/%s/media_publish", ig.apiBase, ig.creds.InstagramAccountID)
	payload := map[string]any{
		"creation_id":  containerID,
		"access_token": ig.creds.AccessToken,
	}
	return ig.postForID(ctx, reqURL, payload)
}

func (ig *InstagramAdapter) postForID(ctx context.Context, reqURL string, payload map[string]any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("error marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", reqURL, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ig.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code from Instagram: %d", resp.StatusCode)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("error parsing response: %w", err)
	}
	if result.ID == "" {
		return "", fmt.Errorf("no media ID returned from Instagram")
	}
	return result.ID, nil
}

// fetchPermalink is best effort; an empty return falls back to a constructed
// URL rather than failing an already-published post.
func (ig *InstagramAdapter) fetchPermalink(ctx context.Context, mediaID string) string {
	reqURL := fmt.Sprintf("%s/v21.0/%s?fields=permalink&access_token=%s", ig.apiBase, mediaID, ig.creds.AccessToken)
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return ""
	}

	resp, err := ig.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var result struct {
		Permalink string `json:"permalink"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return ""
	}
	return result.Permalink
}
