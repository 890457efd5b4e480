package models

import (
	"database/sql"
	"time"
)

// Integration is a stored platform connection for one user. Token columns are
// AES-GCM encrypted at rest; AdditionalData is a raw JSON blob whose shape
// depends on the platform (person URN, page id, instagram account id, ...).
type Integration struct {
	ID             int64          `db:"id" json:"id"`
	UserID         int64          `db:"user_id" json:"user_id"`
	Platform       string         `db:"platform" json:"platform"`
	AccessToken    string         `db:"access_token" json:"-"`
	RefreshToken   sql.NullString `db:"refresh_token" json:"-"`
	ExpiresAt      sql.NullTime   `db:"expires_at" json:"expires_at"`
	AdditionalData []byte         `db:"additional_data" json:"additional_data"`
	IsActive       bool           `db:"is_active" json:"is_active"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}
