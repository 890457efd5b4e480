package service

import (
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/gomail.v2"

	config "github.com/postlinehq/postline/configs"
	"github.com/postlinehq/postline/internal/transfer"
)

// MailDialer is the seam over gomail's SMTP dialer so delivery can be faked
// in tests.
type MailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type NotificationService interface {
	// SendFailureNotification emails the post owner about a failed publish.
	// Delivery problems are logged and returned for the queue's retry
	// bookkeeping; they never touch the post's state.
	SendFailureNotification(n *transfer.FailureNotification) error
}

type notificationService struct {
	cfg    config.Config
	dialer MailDialer
}

func NewNotificationService(cfg config.Config) NotificationService {
	return &notificationService{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password),
	}
}

func (s *notificationService) SendFailureNotification(n *transfer.FailureNotification) error {
	if n.UserEmail == "" {
		slog.Info("skipping failure notification without recipient", "post_id", n.PostID)
		return nil
	}

	dashboardURL := fmt.Sprintf("%s/posts/%d", s.cfg.FrontendURL, n.PostID)

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.SMTP.From)
	m.SetHeader("To", n.UserEmail)
	m.SetHeader("Subject", fmt.Sprintf("Your scheduled %s post failed to publish", n.Platform))
	m.SetBody("text/plain", failureBody(n, dashboardURL))

	if err := s.dialer.DialAndSend(m); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func failureBody(n *transfer.FailureNotification, dashboardURL string) string {
	preview := n.Content
	if len(preview) > 140 {
		preview = preview[:140] + "..."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "We couldn't publish your scheduled post to %s.\n\n", n.Platform)
	fmt.Fprintf(&b, "Post: %q\n", preview)
	fmt.Fprintf(&b, "Reason: %s\n\n", n.ErrorMessage)
	fmt.Fprintf(&b, "You can review and retry it here: %s\n", dashboardURL)
	return b.String()
}
