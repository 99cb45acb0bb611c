package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sanctuary-dev/party-roster/backend/internal/domain"
)

func (r *Repository) GetSettings() (*domain.Settings, error) {
	query := `
		SELECT log_webhook_url, notify_webhook_url, version
		FROM settings WHERE id = 1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	settings := &domain.Settings{}
	dst := []any{&settings.LogWebhookURL, &settings.NotifyWebhookURL, &settings.Version}
	if err := r.dbpool.QueryRowContext(ctx, query).Scan(dst...); err != nil {
		return nil, err
	}

	return settings, nil
}

func (r *Repository) UpdateSettings(settings *domain.Settings) error {
	query := `
		UPDATE settings
		SET
			log_webhook_url = $1,
			notify_webhook_url = $2,
			version = version + 1
		WHERE id = 1 AND version = $3
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{settings.LogWebhookURL, settings.NotifyWebhookURL, settings.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&settings.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrConflict
		}
		return err
	}

	return nil
}
