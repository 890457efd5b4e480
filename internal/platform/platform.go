// Package platform holds the per-network publish adapters. Every adapter
// speaks one wire protocol and reports outcomes through PublishResult; a
// Publish call never returns a Go error, transport and API failures included.
package platform

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/postlinehq/postline/internal/models"
)

// Credentials is the typed form of an integration row after decryption and
// decoding. Platform-specific identifiers come from the additional_data blob;
// only the fields for the post's platform are populated.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time

	PersonURN          string   // linkedin
	PageID             string   // facebook
	InstagramAccountID string   // instagram
	Recipients         []string // email
	FromAddress        string   // email
	PageSlug           string   // link_in_bio
}

type PublishRequest struct {
	Content        string
	MediaURLs      []string
	PostType       string
	IdempotencyKey string
}

type PublishResult struct {
	Success        bool
	ExternalID     string
	ExternalURL    string
	Error          string
	RateLimitReset time.Time
}

type Publisher interface {
	// ValidateCredentials makes a lightweight who-am-I call. Transport
	// errors are converted to false, never surfaced.
	ValidateCredentials(ctx context.Context) bool
	// Publish performs the platform wire call(s) for one post.
	Publish(ctx context.Context, req *PublishRequest) *PublishResult
}

type Limits struct {
	MaxContentLength int // 0 means unbounded
	MaxMediaCount    int
	NativeScheduling bool
}

var platformLimits = map[string]Limits{
	models.PlatformTwitter:   {MaxContentLength: 280, MaxMediaCount: 4, NativeScheduling: true},
	models.PlatformLinkedin:  {MaxContentLength: 3000, MaxMediaCount: 9, NativeScheduling: false},
	models.PlatformInstagram: {MaxContentLength: 2200, MaxMediaCount: 10, NativeScheduling: false},
	models.PlatformFacebook:  {MaxContentLength: 63206, MaxMediaCount: 10, NativeScheduling: true},
	models.PlatformTiktok:    {MaxContentLength: 2200, MaxMediaCount: 1, NativeScheduling: false},
	models.PlatformEmail:     {MaxContentLength: 0, MaxMediaCount: 0, NativeScheduling: true},
	models.PlatformLinkInBio: {MaxContentLength: 10000, MaxMediaCount: 10, NativeScheduling: false},
}

// LimitsFor returns the static limits table entry for a platform tag.
// Informational only; adapters enforce content length themselves.
func LimitsFor(platform string) (Limits, bool) {
	l, ok := platformLimits[platform]
	return l, ok
}

func AllLimits() map[string]Limits {
	out := make(map[string]Limits, len(platformLimits))
	for k, v := range platformLimits {
		out[k] = v
	}
	return out
}

func failure(format string, args ...any) *PublishResult {
	return &PublishResult{Success: false, Error: fmt.Sprintf(format, args...)}
}

// checkContent fails fast on posts the platform would reject anyway, before
// any wire call is made.
func checkContent(platform string, req *PublishRequest) *PublishResult {
	l := platformLimits[platform]
	if l.MaxContentLength > 0 && len([]rune(req.Content)) > l.MaxContentLength {
		return failure("content exceeds %s limit of %d characters", platform, l.MaxContentLength)
	}
	if len(req.MediaURLs) > l.MaxMediaCount {
		return failure("media count exceeds %s limit of %d", platform, l.MaxMediaCount)
	}
	return nil
}

const defaultHTTPTimeout = 30 * time.Second

// bearerClient builds an oauth2 bearer-auth client with a bounded timeout so
// a hung platform API turns into a caught publish failure, not a stuck batch.
func bearerClient(ctx context.Context, accessToken string) *http.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: defaultHTTPTimeout})
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))
}
