package domain

import "time"

// CompletionRecord 组队完成时的封存记录，创建后不可修改
type CompletionRecord struct {
	ID            int64     `json:"id"`
	PartyID       int64     `json:"partyId"`
	CompletedAt   time.Time `json:"completedAt"`
	ScheduledTime string    `json:"scheduledTime"`
	EstimatedRuns string    `json:"estimatedRuns"`
	Participants  []*Slot   `json:"participants"`
}
