package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/postlinehq/postline/internal/models"
)

type ScheduledPostRepository interface {
	GetByID(ctx context.Context, id int64) (*models.ScheduledPost, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.ScheduledPost, error)
	ListDue(ctx context.Context, from, to time.Time, limit int) ([]*models.ScheduledPost, error)
	Create(ctx context.Context, post *models.ScheduledPost) (int64, error)
	ClaimProcessing(ctx context.Context, id int64) (bool, error)
	MarkPublished(ctx context.Context, id int64, externalID, externalURL string, publishedAt time.Time) error
	MarkFailed(ctx context.Context, id int64, lastError string) error
	RetryFailed(ctx context.Context, id int64) (bool, error)
	Cancel(ctx context.Context, id, userID int64) (bool, error)
	ReclaimStale(ctx context.Context, cutoff time.Time, lastError string) (int64, error)
}

type scheduledPostRepository struct {
	db *sql.DB
}

func NewScheduledPostRepository(db *sql.DB) ScheduledPostRepository {
	return &scheduledPostRepository{db: db}
}

const postColumns = `id, user_id, platform, post_type, content, media_urls, scheduled_for, auto_post, status, attempts, last_error, external_id, external_url, published_at, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (*models.ScheduledPost, error) {
	var p models.ScheduledPost
	err := row.Scan(&p.ID, &p.UserID, &p.Platform, &p.PostType, &p.Content, &p.MediaURLs,
		&p.ScheduledFor, &p.AutoPost, &p.Status, &p.Attempts, &p.LastError,
		&p.ExternalID, &p.ExternalURL, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *scheduledPostRepository) GetByID(ctx context.Context, id int64) (*models.ScheduledPost, error) {
	query := `SELECT ` + postColumns + ` FROM scheduled_posts WHERE id = $1`
	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func (r *scheduledPostRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.ScheduledPost, error) {
	query := `SELECT ` + postColumns + ` FROM scheduled_posts WHERE user_id = $1 ORDER BY scheduled_for DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.ScheduledPost
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// ListDue selects the auto-post batch for one run: pending posts whose
// scheduled time falls inside [from, to], oldest first. Posts older than the
// window are deliberately excluded; a missed backlog needs manual retry
// rather than a burst of very-late publishes.
func (r *scheduledPostRepository) ListDue(ctx context.Context, from, to time.Time, limit int) ([]*models.ScheduledPost, error) {
	query := `SELECT ` + postColumns + `
		FROM scheduled_posts
		WHERE status = $1 AND auto_post = true AND scheduled_for BETWEEN $2 AND $3
		ORDER BY scheduled_for ASC
		LIMIT $4`
	rows, err := r.db.QueryContext(ctx, query, models.PostStatusPending, from, to, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.ScheduledPost
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *scheduledPostRepository) Create(ctx context.Context, post *models.ScheduledPost) (int64, error) {
	query := `
		INSERT INTO scheduled_posts (user_id, platform, post_type, content, media_urls, scheduled_for, auto_post, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query, post.UserID, post.Platform, post.PostType,
		post.Content, pq.Array(post.MediaURLs), post.ScheduledFor, post.AutoPost,
		models.PostStatusPending).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

// ClaimProcessing moves a pending post to processing and counts the attempt.
// The status guard makes the claim safe against a second runner: only one
// UPDATE can win the pending row.
func (r *scheduledPostRepository) ClaimProcessing(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE scheduled_posts
		SET status = $1, attempts = attempts + 1, updated_at = $2
		WHERE id = $3 AND status = $4
	`
	result, err := r.db.ExecContext(ctx, query, models.PostStatusProcessing, time.Now(), id, models.PostStatusPending)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected == 1, nil
}

func (r *scheduledPostRepository) MarkPublished(ctx context.Context, id int64, externalID, externalURL string, publishedAt time.Time) error {
	query := `
		UPDATE scheduled_posts
		SET status = $1, external_id = $2, external_url = $3, published_at = $4, last_error = NULL, updated_at = $5
		WHERE id = $6
	`
	_, err := r.db.ExecContext(ctx, query, models.PostStatusPublished, externalID, externalURL, publishedAt, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *scheduledPostRepository) MarkFailed(ctx context.Context, id int64, lastError string) error {
	query := `
		UPDATE scheduled_posts
		SET status = $1, last_error = $2, updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, models.PostStatusFailed, lastError, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *scheduledPostRepository) RetryFailed(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE scheduled_posts
		SET status = $1, last_error = NULL, updated_at = $2
		WHERE id = $3 AND status = $4
	`
	result, err := r.db.ExecContext(ctx, query, models.PostStatusPending, time.Now(), id, models.PostStatusFailed)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected == 1, nil
}

func (r *scheduledPostRepository) Cancel(ctx context.Context, id, userID int64) (bool, error) {
	query := `
		UPDATE scheduled_posts
		SET status = $1, updated_at = $2
		WHERE id = $3 AND user_id = $4 AND status = $5
	`
	result, err := r.db.ExecContext(ctx, query, models.PostStatusCancelled, time.Now(), id, userID, models.PostStatusPending)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected == 1, nil
}

// ReclaimStale fails processing rows untouched since the cutoff. A crash
// between the claim write and the outcome write would otherwise leave the
// post stuck in processing forever.
func (r *scheduledPostRepository) ReclaimStale(ctx context.Context, cutoff time.Time, lastError string) (int64, error) {
	query := `
		UPDATE scheduled_posts
		SET status = $1, last_error = $2, updated_at = $3
		WHERE status = $4 AND updated_at < $5
	`
	result, err := r.db.ExecContext(ctx, query, models.PostStatusFailed, lastError, time.Now(), models.PostStatusProcessing, cutoff)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return affected, nil
}
