package models

import (
	"time"

	"shutdowns-bot/internal/schedule"
)

// Subscriber is a Telegram user following one outage group.
type Subscriber struct {
	TelegramID int64     `json:"telegram_id" db:"telegram_id"`
	Group      int       `json:"group,omitempty" db:"group_number"` // 0 when none chosen yet
	Language   string    `json:"language,omitempty" db:"language"`  // "uk" or "en"
	UpdatedAt  time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// HasGroup reports whether the subscriber picked a group.
func (s Subscriber) HasGroup() bool {
	return s.Group > 0
}

// ScheduleChange describes which groups changed between two fetches.
type ScheduleChange struct {
	ChangedGroups []int          `json:"changed_groups"`
	ShapeChanged  bool           `json:"shape_changed"`
	FetchedAt     time.Time      `json:"fetched_at"`
	Table         schedule.Table `json:"table"`
}
