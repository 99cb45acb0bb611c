package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sanctuary-dev/party-roster/backend/internal/domain"
)

func (r *Repository) GetAllCompletionRecords() ([]*domain.CompletionRecord, error) {
	query := `
		SELECT id, party_id, completed_at, scheduled_time, estimated_runs, participants
		FROM completion_records
		ORDER BY completed_at DESC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*domain.CompletionRecord, 0)
	for rows.Next() {
		record := &domain.CompletionRecord{}
		var participants []byte
		dst := []any{&record.ID, &record.PartyID, &record.CompletedAt, &record.ScheduledTime, &record.EstimatedRuns, &participants}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(participants, &record.Participants); err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
