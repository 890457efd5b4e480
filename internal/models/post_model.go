package models

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type ScheduledPost struct {
	ID           int64          `db:"id" json:"id"`
	UserID       int64          `db:"user_id" json:"user_id"`
	Platform     string         `db:"platform" json:"platform"`
	PostType     string         `db:"post_type" json:"post_type"` // text, image, video
	Content      string         `db:"content" json:"content"`
	MediaURLs    pq.StringArray `db:"media_urls" json:"media_urls"`
	ScheduledFor time.Time      `db:"scheduled_for" json:"scheduled_for"`
	AutoPost     bool           `db:"auto_post" json:"auto_post"`
	Status       string         `db:"status" json:"status"`
	Attempts     int            `db:"attempts" json:"attempts"`
	LastError    sql.NullString `db:"last_error" json:"last_error"`
	ExternalID   sql.NullString `db:"external_id" json:"external_id"`
	ExternalURL  sql.NullString `db:"external_url" json:"external_url"`
	PublishedAt  sql.NullTime   `db:"published_at" json:"published_at"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

const (
	PostStatusPending    = "pending"
	PostStatusProcessing = "processing"
	PostStatusPublished  = "published"
	PostStatusFailed     = "failed"
	PostStatusCancelled  = "cancelled"
)

const (
	PlatformTwitter   = "twitter"
	PlatformLinkedin  = "linkedin"
	PlatformInstagram = "instagram"
	PlatformFacebook  = "facebook"
	PlatformTiktok    = "tiktok"
	PlatformEmail     = "email"
	PlatformLinkInBio = "link_in_bio"
)
