package platform

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/postlinehq/postline/internal/models"
)

// EmailAdapter sends a scheduled email post through the owner's Gmail
// account using their stored OAuth token.
type EmailAdapter struct {
	creds    *Credentials
	endpoint string // test override, empty in production
}

func NewEmailAdapter(creds *Credentials) *EmailAdapter {
	return &EmailAdapter{creds: creds}
}

func (e *EmailAdapter) service(ctx context.Context) (*gmail.Service, error) {
	// Same bounded bearer client as the other adapters; a hung Gmail call
	// must become a publish failure, not a stuck batch.
	opts := []option.ClientOption{
		option.WithHTTPClient(bearerClient(ctx, e.creds.AccessToken)),
	}
	if e.endpoint != "" {
		opts = append(opts, option.WithEndpoint(e.endpoint))
	}
	return gmail.NewService(ctx, opts...)
}

func (e *EmailAdapter) ValidateCredentials(ctx context.Context) bool {
	srv, err := e.service(ctx)
	if err != nil {
		return false
	}

	profile, err := srv.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return false
	}
	return profile.EmailAddress != ""
}

func (e *EmailAdapter) Publish(ctx context.Context, req *PublishRequest) *PublishResult {
	if res := checkContent(models.PlatformEmail, req); res != nil {
		return res
	}

	if len(e.creds.Recipients) == 0 {
		return failure("email recipients missing from integration data")
	}
	if e.creds.FromAddress == "" {
		return failure("email from address missing from integration data")
	}

	srv, err := e.service(ctx)
	if err != nil {
		return failure("gmail client init failed: %v", err)
	}

	raw := buildRawMessage(e.creds.FromAddress, e.creds.Recipients, req.Content)
	msg := &gmail.Message{Raw: base64.RawURLEncoding.EncodeToString([]byte(raw))}

	sent, err := srv.Users.Messages.Send("me", msg).Context(ctx).Do()
	if err != nil {
		return failure("gmail send failed: %v", err)
	}

	return &PublishResult{
		Success:     true,
		ExternalID:  sent.Id,
		ExternalURL: fmt.Sprintf("https://mail.google.com/mail/u/0/#sent/%s", sent.Id),
	}
}

// buildRawMessage renders an RFC 822 message. The subject is the first line
// of the post content.
func buildRawMessage(from string, to []string, content string) string {
	subject := content
	if i := strings.IndexByte(subject, '\n'); i >= 0 {
		subject = subject[:i]
	}
	if r := []rune(subject); len(r) > 78 {
		subject = string(r[:78])
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", strings.TrimSpace(subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(content)
	return b.String()
}
