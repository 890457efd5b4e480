package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkInBioPublish(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/pages/craft-shop/posts", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		json.NewDecoder(r.Body).Decode(&payload)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"bio_1","url":"https://postline.bio/craft-shop"}`))
	}))
	defer srv.Close()

	adapter := NewLinkInBioAdapter(&Credentials{AccessToken: "tok", PageSlug: "craft-shop"}, srv.URL)

	res := adapter.Publish(context.Background(), &PublishRequest{Content: "new drop"})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "bio_1", res.ExternalID)
	assert.Equal(t, "https://postline.bio/craft-shop", res.ExternalURL)
	assert.Equal(t, "new drop", payload["content"])
}

func TestLinkInBioPublishRequiresSlug(t *testing.T) {
	adapter := NewLinkInBioAdapter(&Credentials{AccessToken: "tok"}, "http://unreachable.invalid")

	res := adapter.Publish(context.Background(), &PublishRequest{Content: "new drop"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "page slug")
}

func TestLinkInBioPublishSurfacesServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	adapter := NewLinkInBioAdapter(&Credentials{AccessToken: "tok", PageSlug: "craft-shop"}, srv.URL)

	res := adapter.Publish(context.Background(), &PublishRequest{Content: "new drop"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "status 503")
}

func TestLinkInBioValidateCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/pages/craft-shop", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"slug":"craft-shop"}`))
	}))
	defer srv.Close()

	good := NewLinkInBioAdapter(&Credentials{AccessToken: "good", PageSlug: "craft-shop"}, srv.URL)
	assert.True(t, good.ValidateCredentials(context.Background()))

	bad := NewLinkInBioAdapter(&Credentials{AccessToken: "bad", PageSlug: "craft-shop"}, srv.URL)
	assert.False(t, bad.ValidateCredentials(context.Background()))

	noSlug := NewLinkInBioAdapter(&Credentials{AccessToken: "good"}, srv.URL)
	assert.False(t, noSlug.ValidateCredentials(context.Background()))
}
