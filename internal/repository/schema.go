package repository

import (
	"context"
	"time"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		pin_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'user',
		characters JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		version INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS parties (
		id BIGSERIAL PRIMARY KEY,
		creator_id BIGINT NOT NULL REFERENCES users (id),
		creator_name TEXT NOT NULL,
		scheduled_time TEXT NOT NULL,
		estimated_runs TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'open',
		is_two_teams BOOLEAN NOT NULL,
		team1 JSONB NOT NULL,
		team2 JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		version INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS completion_records (
		id BIGSERIAL PRIMARY KEY,
		party_id BIGINT NOT NULL,
		completed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		scheduled_time TEXT NOT NULL,
		estimated_runs TEXT NOT NULL,
		participants JSONB NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY,
		log_webhook_url TEXT NOT NULL DEFAULT '',
		notify_webhook_url TEXT NOT NULL DEFAULT '',
		version INTEGER NOT NULL DEFAULT 1
	)`,
	`INSERT INTO settings (id) VALUES (1) ON CONFLICT (id) DO NOTHING`,
}

// EnsureSchema 确保数据库中存在所需的表以及默认的设置记录
func (r *Repository) EnsureSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	return tx.Commit()
}
