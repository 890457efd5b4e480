package service

import (
	"context"
	"encoding/json"
	"log/slog"

	config "github.com/postlinehq/postline/configs"
	"github.com/postlinehq/postline/internal/platform"
	"github.com/postlinehq/postline/internal/repository"
	"github.com/postlinehq/postline/pkg/utils"
)

type CredentialResolver interface {
	// Resolve returns nil credentials (not an error) when the user has no
	// usable integration for the platform: no active row, undecryptable
	// tokens, or a malformed additional_data blob. A single bad record must
	// not take down a batch.
	Resolve(ctx context.Context, userID int64, platformTag string) (*platform.Credentials, error)
}

type credentialResolver struct {
	cfg config.Config
	ir  repository.IntegrationRepository
}

func NewCredentialResolver(cfg config.Config, ir repository.IntegrationRepository) CredentialResolver {
	return &credentialResolver{cfg: cfg, ir: ir}
}

// additionalData is the decoded shape of the integration's JSON blob. All
// fields are optional; each adapter checks for what it needs at publish time.
type additionalData struct {
	PersonURN          string   `json:"person_urn"`
	PageID             string   `json:"page_id"`
	InstagramAccountID string   `json:"instagram_account_id"`
	Recipients         []string `json:"recipients"`
	FromAddress        string   `json:"from_address"`
	PageSlug           string   `json:"page_slug"`
}

func (r *credentialResolver) Resolve(ctx context.Context, userID int64, platformTag string) (*platform.Credentials, error) {
	integration, err := r.ir.GetActive(ctx, userID, platformTag)
	if err != nil {
		return nil, err
	}
	if integration == nil {
		return nil, nil
	}

	accessToken, err := utils.Decrypt(integration.AccessToken, []byte(r.cfg.SecretKey))
	if err != nil {
		slog.Info("discarding integration with undecryptable access token", "integration_id", integration.ID)
		return nil, nil
	}

	creds := &platform.Credentials{AccessToken: accessToken}

	if integration.RefreshToken.Valid && integration.RefreshToken.String != "" {
		refreshToken, err := utils.Decrypt(integration.RefreshToken.String, []byte(r.cfg.SecretKey))
		if err != nil {
			slog.Info("discarding integration with undecryptable refresh token", "integration_id", integration.ID)
			return nil, nil
		}
		creds.RefreshToken = refreshToken
	}
	if integration.ExpiresAt.Valid {
		creds.ExpiresAt = integration.ExpiresAt.Time
	}

	if len(integration.AdditionalData) > 0 {
		var data additionalData
		if err := json.Unmarshal(integration.AdditionalData, &data); err != nil {
			slog.Info("discarding integration with malformed additional data", "integration_id", integration.ID)
			return nil, nil
		}
		creds.PersonURN = data.PersonURN
		creds.PageID = data.PageID
		creds.InstagramAccountID = data.InstagramAccountID
		creds.Recipients = data.Recipients
		creds.FromAddress = data.FromAddress
		creds.PageSlug = data.PageSlug
	}

	return creds, nil
}
