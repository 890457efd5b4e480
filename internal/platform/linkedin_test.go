package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postlinehq/postline/internal/transfer"
)

func TestLinkedinPublishRequiresPersonURN(t *testing.T) {
	adapter := NewLinkedinAdapter(&Credentials{AccessToken: "tok"})
	adapter.apiBase = "http://unreachable.invalid"

	res := adapter.Publish(context.Background(), &PublishRequest{Content: "post"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "person URN")
}

func TestLinkedinPublishParsesCompositeShareID(t *testing.T) {
	var gotShare transfer.LinkedinShareRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/ugcPosts", r.URL.Path)
		require.Equal(t, "2.0.0", r.Header.Get("X-Restli-Protocol-Version"))
		json.NewDecoder(r.Body).Decode(&gotShare)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"urn:li:share:12345"}`))
	}))
	defer srv.Close()

	adapter := NewLinkedinAdapter(&Credentials{AccessToken: "tok", PersonURN: "urn:li:person:abc"})
	adapter.apiBase = srv.URL

	res := adapter.Publish(context.Background(), &PublishRequest{Content: "professional update"})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "urn:li:share:12345", res.ExternalID)
	assert.Equal(t, "https://www.linkedin.com/feed/update/urn:li:share:12345", res.ExternalURL)

	assert.Equal(t, "urn:li:person:abc", gotShare.Author)
	assert.Equal(t, "PUBLISHED", gotShare.LifecycleState)
	assert.Equal(t, "professional update", gotShare.SpecificContent.ShareContent.ShareCommentary.Text)
}

func TestLinkedinPublishMarksMediaCategory(t *testing.T) {
	var gotShare transfer.LinkedinShareRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotShare)
		w.Write([]byte(`{"id":"urn:li:share:9"}`))
	}))
	defer srv.Close()

	adapter := NewLinkedinAdapter(&Credentials{AccessToken: "tok", PersonURN: "urn:li:person:abc"})
	adapter.apiBase = srv.URL

	res := adapter.Publish(context.Background(), &PublishRequest{
		Content:   "with image",
		MediaURLs: []string{"https://cdn.example.com/a.jpg"},
	})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "IMAGE", gotShare.SpecificContent.ShareContent.ShareMediaCategory)
	require.Len(t, gotShare.SpecificContent.ShareContent.Media, 1)
	assert.Equal(t, "https://cdn.example.com/a.jpg", gotShare.SpecificContent.ShareContent.Media[0].OriginalURL)
}

func TestLinkedinPublishSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"duplicate share"}`))
	}))
	defer srv.Close()

	adapter := NewLinkedinAdapter(&Credentials{AccessToken: "tok", PersonURN: "urn:li:person:abc"})
	adapter.apiBase = srv.URL

	res := adapter.Publish(context.Background(), &PublishRequest{Content: "dup"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "duplicate share")
}
