package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/postlinehq/postline/internal/models"
	"github.com/postlinehq/postline/internal/platform"
	"github.com/postlinehq/postline/internal/repository"
	"github.com/postlinehq/postline/internal/service"
	"github.com/postlinehq/postline/internal/transfer"
)

const (
	pacingDelay      = 1 * time.Second
	staleAfter       = 15 * time.Minute
	staleReclaimNote = "publish attempt interrupted"

	errNoCredentials      = "No credentials found for platform %s"
	errInvalidCredentials = "Invalid or expired credentials"
)

// FailureNotifier is the executor's view of the notification side channel.
// Implementations must swallow their own errors.
type FailureNotifier interface {
	NotifyFailure(ctx context.Context, payload *transfer.FailureNotification)
}

// PublishPostsJob drives one batch of due posts through the publish state
// machine: pending -> processing -> published | failed. Strictly sequential,
// one pacing sleep between posts.
type PublishPostsJob struct {
	pr       repository.ScheduledPostRepository
	ur       repository.UserRepository
	resolver service.CredentialResolver
	media    service.MediaResolver
	registry *platform.Registry
	notifier FailureNotifier

	window     time.Duration
	batchLimit int

	// injectable for tests
	now   func() time.Time
	sleep func(time.Duration)
}

func NewPublishPostsJob(
	pr repository.ScheduledPostRepository,
	ur repository.UserRepository,
	resolver service.CredentialResolver,
	media service.MediaResolver,
	registry *platform.Registry,
	notifier FailureNotifier,
	windowMinutes, batchLimit int) *PublishPostsJob {
	return &PublishPostsJob{
		pr:         pr,
		ur:         ur,
		resolver:   resolver,
		media:      media,
		registry:   registry,
		notifier:   notifier,
		window:     time.Duration(windowMinutes) * time.Minute,
		batchLimit: batchLimit,
		now:        time.Now,
		sleep:      time.Sleep,
	}
}

// Run processes every due post and reports the batch outcome. Only store
// infrastructure errors escape; a single post's failure is recorded on its
// row and in the result, never allowed to abort the batch.
func (j *PublishPostsJob) Run(ctx context.Context) (*transfer.ProcessResult, error) {
	now := j.now()

	reclaimed, err := j.pr.ReclaimStale(ctx, now.Add(-staleAfter), staleReclaimNote)
	if err != nil {
		return nil, err
	}
	if reclaimed > 0 {
		slog.Info("reclaimed stale processing posts", "count", reclaimed)
	}

	// Posts older than the window are not auto-published; a backlog from a
	// stalled trigger needs operator intervention, not a burst of late posts.
	posts, err := j.pr.ListDue(ctx, now.Add(-j.window), now, j.batchLimit)
	if err != nil {
		return nil, err
	}

	result := &transfer.ProcessResult{Errors: []transfer.PostError{}}
	for i, post := range posts {
		if i > 0 {
			j.sleep(pacingDelay)
		}

		if err := j.processPost(ctx, post, result); err != nil {
			return nil, err
		}
	}

	if result.Processed > 0 {
		slog.Info("publish batch finished",
			"processed", result.Processed, "published", result.Published, "failed", result.Failed)
	}
	return result, nil
}

func (j *PublishPostsJob) processPost(ctx context.Context, post *models.ScheduledPost, result *transfer.ProcessResult) error {
	// The claim write lands before any external call: it records the attempt
	// even across a crash and keeps a second runner from re-selecting the
	// row, since the due query only reads pending posts.
	claimed, err := j.pr.ClaimProcessing(ctx, post.ID)
	if err != nil {
		return err
	}
	if !claimed {
		slog.Info("post no longer pending, skipping", "post_id", post.ID)
		return nil
	}
	result.Processed++

	creds, err := j.resolver.Resolve(ctx, post.UserID, post.Platform)
	if err != nil {
		return err
	}
	if creds == nil {
		return j.failPost(ctx, post, fmt.Sprintf(errNoCredentials, post.Platform), result)
	}

	adapter, err := j.registry.Adapter(post.Platform, creds)
	if err != nil {
		return j.failPost(ctx, post, err.Error(), result)
	}

	if !adapter.ValidateCredentials(ctx) {
		return j.failPost(ctx, post, errInvalidCredentials, result)
	}

	mediaURLs, err := j.media.ResolveURLs(ctx, post.MediaURLs)
	if err != nil {
		return j.failPost(ctx, post, fmt.Sprintf("media resolution failed: %v", err), result)
	}

	key, err := gonanoid.New()
	if err != nil {
		key = ""
	}

	res := adapter.Publish(ctx, &platform.PublishRequest{
		Content:        post.Content,
		MediaURLs:      mediaURLs,
		PostType:       post.PostType,
		IdempotencyKey: key,
	})

	if !res.Success {
		return j.failPost(ctx, post, res.Error, result)
	}

	if err := j.pr.MarkPublished(ctx, post.ID, res.ExternalID, res.ExternalURL, j.now()); err != nil {
		return err
	}
	result.Published++
	return nil
}

// failPost records the terminal failure on the row, reflects it in the batch
// result, and fires the best-effort owner notification.
func (j *PublishPostsJob) failPost(ctx context.Context, post *models.ScheduledPost, errorMessage string, result *transfer.ProcessResult) error {
	if err := j.pr.MarkFailed(ctx, post.ID, errorMessage); err != nil {
		return err
	}
	result.Failed++
	result.Errors = append(result.Errors, transfer.PostError{PostID: post.ID, Error: errorMessage})

	j.notifyOwner(ctx, post, errorMessage)
	return nil
}

func (j *PublishPostsJob) notifyOwner(ctx context.Context, post *models.ScheduledPost, errorMessage string) {
	user, err := j.ur.GetByID(ctx, post.UserID)
	if err != nil || user == nil {
		slog.Info("cannot notify owner of failed post", "post_id", post.ID, "user_id", post.UserID)
		return
	}

	j.notifier.NotifyFailure(ctx, &transfer.FailureNotification{
		PostID:       post.ID,
		UserEmail:    user.Email,
		Platform:     post.Platform,
		Content:      post.Content,
		ErrorMessage: errorMessage,
	})
}
