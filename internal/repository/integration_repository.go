package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/postlinehq/postline/internal/models"
)

type IntegrationRepository interface {
	GetActive(ctx context.Context, userID int64, platform string) (*models.Integration, error)
}

type integrationRepository struct {
	db *sql.DB
}

func NewIntegrationRepository(db *sql.DB) IntegrationRepository {
	return &integrationRepository{db: db}
}

func (r *integrationRepository) GetActive(ctx context.Context, userID int64, platform string) (*models.Integration, error) {
	query := `
		SELECT id, user_id, platform, access_token, refresh_token, expires_at, additional_data, is_active, created_at, updated_at
		FROM integrations
		WHERE user_id = $1 AND platform = $2 AND is_active = true
	`
	row := r.db.QueryRowContext(ctx, query, userID, platform)

	var in models.Integration
	err := row.Scan(&in.ID, &in.UserID, &in.Platform, &in.AccessToken, &in.RefreshToken,
		&in.ExpiresAt, &in.AdditionalData, &in.IsActive, &in.CreatedAt, &in.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &in, nil
}
