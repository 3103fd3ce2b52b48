package model

import "time"

type CycleStatus string

const (
	CycleStatusActive    CycleStatus = "ACTIVE"
	CycleStatusCompleted CycleStatus = "COMPLETED"
)

// RotationCycle bounds the retention window of volatile snapshot tables.
type RotationCycle struct {
	ID        int64       `db:"id"`
	StartedAt time.Time   `db:"started_at"`
	EndedAt   *time.Time  `db:"ended_at"`
	Status    CycleStatus `db:"status"`
}
