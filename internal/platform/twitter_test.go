package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTwitterPublishSuccess(t *testing.T) {
	var gotAuth, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/2/tweets", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		var tweet struct {
			Text string `json:"text"`
		}
		json.NewDecoder(r.Body).Decode(&tweet)
		gotText = tweet.Text
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"1801","text":"Hello"}}`))
	}))
	defer srv.Close()

	adapter := NewTwitterAdapter(&Credentials{AccessToken: "tok"})
	adapter.apiBase = srv.URL

	res := adapter.Publish(context.Background(), &PublishRequest{Content: "Hello"})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "1801", res.ExternalID)
	assert.Equal(t, "https://x.com/i/web/status/1801", res.ExternalURL)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "Hello", gotText)
}

func TestTwitterPublishRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-rate-limit-reset", "1767225600")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"title":"Too Many Requests"}`))
	}))
	defer srv.Close()

	adapter := NewTwitterAdapter(&Credentials{AccessToken: "tok"})
	adapter.apiBase = srv.URL

	res := adapter.Publish(context.Background(), &PublishRequest{Content: "Hello"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "rate limit")
	assert.False(t, res.RateLimitReset.IsZero())
}

func TestTwitterPublishRateLimitedWithNonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-rate-limit-reset", "1767225600")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("<html>Too Many Requests</html>"))
	}))
	defer srv.Close()

	adapter := NewTwitterAdapter(&Credentials{AccessToken: "tok"})
	adapter.apiBase = srv.URL

	// A proxy can answer 429 with a non-JSON body; the reset header must
	// still come through.
	res := adapter.Publish(context.Background(), &PublishRequest{Content: "Hello"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "rate limit")
	assert.False(t, res.RateLimitReset.IsZero())
}

func TestTwitterPublishKeepsStatusOnNonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>Bad Gateway</html>"))
	}))
	defer srv.Close()

	adapter := NewTwitterAdapter(&Credentials{AccessToken: "tok"})
	adapter.apiBase = srv.URL

	res := adapter.Publish(context.Background(), &PublishRequest{Content: "Hello"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "status 502")
}

func TestTwitterPublishContentTooLong(t *testing.T) {
	adapter := NewTwitterAdapter(&Credentials{AccessToken: "tok"})
	adapter.apiBase = "http://unreachable.invalid"

	res := adapter.Publish(context.Background(), &PublishRequest{Content: strings.Repeat("a", 281)})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "limit of 280")
}

func TestTwitterPublishAttachesUploadedMedia(t *testing.T) {
	var uploads, tweets int
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/1.1/media/upload.json":
			uploads++
			w.Write([]byte(`{"media_id_string":"m1"}`))
		case "/2/tweets":
			tweets++
			body, _ := json.Marshal(map[string]any{"data": map[string]string{"id": "9"}})
			w.WriteHeader(http.StatusCreated)
			w.Write(body)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer api.Close()

	adapter := NewTwitterAdapter(&Credentials{AccessToken: "tok"})
	adapter.apiBase = api.URL
	adapter.uploadBase = api.URL

	res := adapter.Publish(context.Background(), &PublishRequest{
		Content:   "with media",
		MediaURLs: []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"},
	})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, 2, uploads)
	assert.Equal(t, 1, tweets)
}

func TestTwitterValidateCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"data":{"id":"42","username":"someone"}}`))
	}))
	defer srv.Close()

	good := NewTwitterAdapter(&Credentials{AccessToken: "good"})
	good.apiBase = srv.URL
	assert.True(t, good.ValidateCredentials(context.Background()))

	bad := NewTwitterAdapter(&Credentials{AccessToken: "bad"})
	bad.apiBase = srv.URL
	assert.False(t, bad.ValidateCredentials(context.Background()))

	down := NewTwitterAdapter(&Credentials{AccessToken: "good"})
	down.apiBase = "http://unreachable.invalid"
	assert.False(t, down.ValidateCredentials(context.Background()))
}
