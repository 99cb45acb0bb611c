package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/sanctuary-dev/party-roster/backend/internal/domain"
)

func scanParty(dst interface {
	Scan(dest ...any) error
}, party *domain.Party) error {
	var team1, team2 []byte
	fields := []any{
		&party.ID,
		&party.CreatorID,
		&party.CreatorName,
		&party.ScheduledTime,
		&party.EstimatedRuns,
		&party.Status,
		&party.IsTwoTeams,
		&team1,
		&team2,
		&party.CreatedAt,
		&party.Version,
	}
	if err := dst.Scan(fields...); err != nil {
		return err
	}

	if err := json.Unmarshal(team1, &party.Team1); err != nil {
		return err
	}
	if team2 != nil {
		if err := json.Unmarshal(team2, &party.Team2); err != nil {
			return err
		}
	}

	return nil
}

func marshalTeams(party *domain.Party) ([]byte, []byte, error) {
	team1, err := json.Marshal(party.Team1)
	if err != nil {
		return nil, nil, err
	}

	var team2 []byte
	if party.IsTwoTeams {
		team2, err = json.Marshal(party.Team2)
		if err != nil {
			return nil, nil, err
		}
	}

	return team1, team2, nil
}

func (r *Repository) CreateParty(party *domain.Party) error {
	team1, team2, err := marshalTeams(party)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO parties (creator_id, creator_name, scheduled_time, estimated_runs, status, is_two_teams, team1, team2)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{
		party.CreatorID,
		party.CreatorName,
		party.ScheduledTime,
		party.EstimatedRuns,
		party.Status,
		party.IsTwoTeams,
		team1,
		team2,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&party.ID, &party.CreatedAt, &party.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetPartyByID(id int64) (*domain.Party, error) {
	query := `
		SELECT id, creator_id, creator_name, scheduled_time, estimated_runs, status, is_two_teams, team1, team2, created_at, version
		FROM parties
		WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	party := &domain.Party{}
	if err := scanParty(r.dbpool.QueryRowContext(ctx, query, id), party); err != nil {
		return nil, err
	}

	return party, nil
}

// GetOpenParties 每次调用都是一次全新的查询，按创建时间倒序返回所有开放中的组队
func (r *Repository) GetOpenParties() ([]*domain.Party, error) {
	query := `
		SELECT id, creator_id, creator_name, scheduled_time, estimated_runs, status, is_two_teams, team1, team2, created_at, version
		FROM parties
		WHERE status = $1
		ORDER BY created_at DESC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, domain.PartyStatusOpen)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	parties := make([]*domain.Party, 0)
	for rows.Next() {
		party := &domain.Party{}
		if err := scanParty(rows, party); err != nil {
			return nil, err
		}
		parties = append(parties, party)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return parties, nil
}

// UpdatePartyTeams 带版本检查地更新两个小队的位置数组，
// 版本不匹配时返回 domain.ErrConflict，由调用方决定是否重试
func (r *Repository) UpdatePartyTeams(party *domain.Party) error {
	team1, team2, err := marshalTeams(party)
	if err != nil {
		return err
	}

	query := `
		UPDATE parties
		SET
			team1 = $1,
			team2 = $2,
			version = version + 1
		WHERE id = $3 AND version = $4 AND status = $5
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{team1, team2, party.ID, party.Version, domain.PartyStatusOpen}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&party.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrConflict
		}
		return err
	}

	return nil
}

// DeleteParty 带版本检查地删除组队，只允许删除开放中的组队，
// 没有命中任何行说明有并发写入者抢先修改或封存了它，返回 domain.ErrConflict
func (r *Repository) DeleteParty(party *domain.Party) error {
	query := `
		DELETE FROM parties WHERE id = $1 AND version = $2 AND status = $3
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	res, err := r.dbpool.ExecContext(ctx, query, party.ID, party.Version, domain.PartyStatusOpen)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrConflict
	}

	return nil
}

// FinalizeParty 在同一个事务中写入封存记录并把组队状态置为已完成，
// 两者要么同时可见要么同时不可见
func (r *Repository) FinalizeParty(party *domain.Party, record *domain.CompletionRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE parties
		SET
			status = $1,
			version = version + 1
		WHERE id = $2 AND version = $3 AND status = $4
		RETURNING version
	`

	args := []any{domain.PartyStatusCompleted, party.ID, party.Version, domain.PartyStatusOpen}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&party.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrConflict
		}
		return err
	}

	participants, err := json.Marshal(record.Participants)
	if err != nil {
		return err
	}

	query = `
		INSERT INTO completion_records (party_id, completed_at, scheduled_time, estimated_runs, participants)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	args = []any{record.PartyID, record.CompletedAt, record.ScheduledTime, record.EstimatedRuns, participants}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&record.ID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	party.Status = domain.PartyStatusCompleted

	return nil
}
