package service

import (
	"context"
	"log/slog"

	"github.com/postlinehq/postline/internal/models"
	"github.com/postlinehq/postline/internal/repository"
)

// PostControlService is the manual surface outside the periodic run: retry a
// failed post, cancel a pending one. Both are idempotent-safe no-ops (false)
// when the post is in any other state or does not exist.
type PostControlService interface {
	RetryFailedPost(ctx context.Context, postID int64) (bool, error)
	CancelScheduledPost(ctx context.Context, postID, userID int64) (bool, error)
	ListPosts(ctx context.Context, userID int64) ([]*models.ScheduledPost, error)
}

type postControlService struct {
	pr repository.ScheduledPostRepository
}

func NewPostControlService(pr repository.ScheduledPostRepository) PostControlService {
	return &postControlService{pr: pr}
}

func (s *postControlService) RetryFailedPost(ctx context.Context, postID int64) (bool, error) {
	retried, err := s.pr.RetryFailed(ctx, postID)
	if err != nil {
		return false, err
	}
	if retried {
		slog.Info("post queued for retry", "post_id", postID)
	}
	return retried, nil
}

func (s *postControlService) CancelScheduledPost(ctx context.Context, postID, userID int64) (bool, error) {
	cancelled, err := s.pr.Cancel(ctx, postID, userID)
	if err != nil {
		return false, err
	}
	if cancelled {
		slog.Info("post cancelled", "post_id", postID, "user_id", userID)
	}
	return cancelled, nil
}

func (s *postControlService) ListPosts(ctx context.Context, userID int64) ([]*models.ScheduledPost, error) {
	return s.pr.ListByUserID(ctx, userID)
}
