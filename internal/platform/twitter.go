package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/postlinehq/postline/internal/models"
	"github.com/postlinehq/postline/internal/transfer"
)

const (
	twitterAPIBase    = "https://api.twitter.com"
	twitterUploadBase = "https://upload.twitter.com"
)

type TwitterAdapter struct {
	creds      *Credentials
	apiBase    string
	uploadBase string
}

func NewTwitterAdapter(creds *Credentials) *TwitterAdapter {
	return &TwitterAdapter{
		creds:      creds,
		apiBase:    twitterAPIBase,
		uploadBase: twitterUploadBase,
	}
}

func (t *TwitterAdapter) ValidateCredentials(ctx context.Context) bool {
	client := bearerClient(ctx, t.creds.AccessToken)
	req, err := http.NewRequestWithContext(ctx, "GET", t.apiBase+"/2/users/me", nil)
	if err != nil {
		return false
	}

	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var user transfer.TwitterUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return false
	}
	return user.Data.ID != ""
}

func (t *TwitterAdapter) Publish(ctx context.Context, req *PublishRequest) *PublishResult {
	if res := checkContent(models.PlatformTwitter, req); res != nil {
		return res
	}

	client := bearerClient(ctx, t.creds.AccessToken)

	tweet := transfer.TweetRequest{Text: req.Content}
	if len(req.MediaURLs) > 0 {
		mediaIDs, err := t.uploadMedia(ctx, client, req.MediaURLs)
		if err != nil {
			return failure("media upload failed: %v", err)
		}
		if len(mediaIDs) > 0 {
			tweet.Media = &transfer.TweetMedia{MediaIDs: mediaIDs}
		}
	}

	body, err := json.Marshal(tweet)
	if err != nil {
		return failure("error marshalling tweet payload: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", t.apiBase+"/2/tweets", bytes.NewBuffer(body))
	if err != nil {
		return failure("error creating request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.IdempotencyKey != "" {
		httpReq.Header.Set("X-Idempotency-Key", req.IdempotencyKey)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return failure("twitter request failed: %v", err)
	}
	defer resp.Body.Close()

	// Status first: error bodies are not guaranteed to be JSON (proxies,
	// load shedding), and the 429 branch must survive an undecodable body.
	if resp.StatusCode == http.StatusTooManyRequests {
		var apiErr transfer.TweetResponse
		json.NewDecoder(resp.Body).Decode(&apiErr)
		res := failure("twitter rate limit hit: %s", apiErr.Title)
		if reset := resp.Header.Get("x-rate-limit-reset"); reset != "" {
			if sec, err := strconv.ParseInt(reset, 10, 64); err == nil {
				res.RateLimitReset = time.Unix(sec, 0)
			}
		}
		return res
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		var apiErr transfer.TweetResponse
		json.NewDecoder(resp.Body).Decode(&apiErr)
		return failure("twitter returned status %d: %s", resp.StatusCode, apiErr.Detail)
	}

	var result transfer.TweetResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return failure("error parsing twitter response: %v", err)
	}
	if result.Data.ID == "" {
		return failure("no tweet id returned from twitter")
	}

	return &PublishResult{
		Success:     true,
		ExternalID:  result.Data.ID,
		ExternalURL: fmt.Sprintf("https://x.com/i/web/status/%s", result.Data.ID),
	}
}

// uploadMedia runs the two-step media sub-protocol: upload each asset, then
// attach the returned ids to the tweet. Upload is by source URL only; chunked
// byte upload (INIT/APPEND/FINALIZE) is not implemented yet.
func (t *TwitterAdapter) uploadMedia(ctx context.Context, client *http.Client, mediaURLs []string) ([]string, error) {
	mediaIDs := make([]string, 0, len(mediaURLs))
	for _, mediaURL := range mediaURLs {
		form := url.Values{}
		form.Set("media_url", mediaURL)

		httpReq, err := http.NewRequestWithContext(ctx, "POST",
			t.uploadBase+"/1.1/media/upload.json", bytes.NewBufferString(form.Encode()))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := client.Do(httpReq)
		if err != nil {
			return nil, err
		}

		var result transfer.TwitterMediaUploadResponse
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("media upload returned status %d: %s", resp.StatusCode, body)
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			resp.Body.Close()
			return nil, err
		}
		resp.Body.Close()

		if result.MediaIDString == "" {
			return nil, fmt.Errorf("no media id returned for %s", mediaURL)
		}
		mediaIDs = append(mediaIDs, result.MediaIDString)
	}
	return mediaIDs, nil
}
