package model

import "time"

type TrackedEntity struct {
	ChainID       ChainID   `db:"chain_id"`
	Address       string    `db:"address"`
	Label         *string   `db:"label"`
	IsContract    bool      `db:"is_contract"`
	MonitorEvents bool      `db:"monitor_events"`
	IsActive      bool      `db:"is_active"`
	CreatedAt     time.Time `db:"created_at"`
}
