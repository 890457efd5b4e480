package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postlinehq/postline/internal/models"
	"github.com/postlinehq/postline/internal/repository"
)

type controlFakeRepo struct {
	posts map[int64]*models.ScheduledPost
}

var _ repository.ScheduledPostRepository = (*controlFakeRepo)(nil)

func (r *controlFakeRepo) GetByID(ctx context.Context, id int64) (*models.ScheduledPost, error) {
	return r.posts[id], nil
}

func (r *controlFakeRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.ScheduledPost, error) {
	var out []*models.ScheduledPost
	for _, p := range r.posts {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *controlFakeRepo) ListDue(ctx context.Context, from, to time.Time, limit int) ([]*models.ScheduledPost, error) {
	return nil, nil
}

func (r *controlFakeRepo) Create(ctx context.Context, post *models.ScheduledPost) (int64, error) {
	return 0, nil
}

func (r *controlFakeRepo) ClaimProcessing(ctx context.Context, id int64) (bool, error) {
	return false, nil
}

func (r *controlFakeRepo) MarkPublished(ctx context.Context, id int64, externalID, externalURL string, publishedAt time.Time) error {
	return nil
}

func (r *controlFakeRepo) MarkFailed(ctx context.Context, id int64, lastError string) error {
	return nil
}

func (r *controlFakeRepo) RetryFailed(ctx context.Context, id int64) (bool, error) {
	p := r.posts[id]
	if p == nil || p.Status != models.PostStatusFailed {
		return false, nil
	}
	p.Status = models.PostStatusPending
	p.LastError.String, p.LastError.Valid = "", false
	return true, nil
}

func (r *controlFakeRepo) Cancel(ctx context.Context, id, userID int64) (bool, error) {
	p := r.posts[id]
	if p == nil || p.UserID != userID || p.Status != models.PostStatusPending {
		return false, nil
	}
	p.Status = models.PostStatusCancelled
	return true, nil
}

func (r *controlFakeRepo) ReclaimStale(ctx context.Context, cutoff time.Time, lastError string) (int64, error) {
	return 0, nil
}

func controlPost(id, userID int64, status string) *models.ScheduledPost {
	p := &models.ScheduledPost{ID: id, UserID: userID, Platform: models.PlatformTwitter, Status: status}
	if status == models.PostStatusFailed {
		p.LastError.String, p.LastError.Valid = "boom", true
	}
	return p
}

func TestRetryFailedPost(t *testing.T) {
	cases := []struct {
		name   string
		status string
		want   bool
	}{
		{"failed post retries", models.PostStatusFailed, true},
		{"published post is a no-op", models.PostStatusPublished, false},
		{"pending post is a no-op", models.PostStatusPending, false},
		{"cancelled post is a no-op", models.PostStatusCancelled, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			post := controlPost(1, 10, tc.status)
			s := NewPostControlService(&controlFakeRepo{posts: map[int64]*models.ScheduledPost{1: post}})

			retried, err := s.RetryFailedPost(context.Background(), 1)
			require.NoError(t, err)
			assert.Equal(t, tc.want, retried)

			if tc.want {
				assert.Equal(t, models.PostStatusPending, post.Status)
				assert.False(t, post.LastError.Valid)
			} else {
				assert.Equal(t, tc.status, post.Status)
			}
		})
	}
}

func TestRetryFailedPostMissingID(t *testing.T) {
	s := NewPostControlService(&controlFakeRepo{posts: map[int64]*models.ScheduledPost{}})

	retried, err := s.RetryFailedPost(context.Background(), 404)
	require.NoError(t, err)
	assert.False(t, retried)
}

func TestCancelScheduledPost(t *testing.T) {
	post := controlPost(1, 10, models.PostStatusPending)
	s := NewPostControlService(&controlFakeRepo{posts: map[int64]*models.ScheduledPost{1: post}})

	cancelled, err := s.CancelScheduledPost(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.True(t, cancelled)
	assert.Equal(t, models.PostStatusCancelled, post.Status)
}

func TestCancelScheduledPostWrongOwner(t *testing.T) {
	post := controlPost(1, 10, models.PostStatusPending)
	s := NewPostControlService(&controlFakeRepo{posts: map[int64]*models.ScheduledPost{1: post}})

	cancelled, err := s.CancelScheduledPost(context.Background(), 1, 99)
	require.NoError(t, err)
	assert.False(t, cancelled)
	assert.Equal(t, models.PostStatusPending, post.Status)
}

func TestCancelScheduledPostNotPending(t *testing.T) {
	post := controlPost(1, 10, models.PostStatusPublished)
	s := NewPostControlService(&controlFakeRepo{posts: map[int64]*models.ScheduledPost{1: post}})

	cancelled, err := s.CancelScheduledPost(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.False(t, cancelled)
	assert.Equal(t, models.PostStatusPublished, post.Status)
}
