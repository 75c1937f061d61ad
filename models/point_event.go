package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PointEventType string

const (
	PointEventClassEnroll       PointEventType = "CLASS_ENROLL"
	PointEventRoutineAssign     PointEventType = "ROUTINE_ASSIGN"
	PointEventRoutineComplete   PointEventType = "ROUTINE_COMPLETE"
	PointEventChallengeComplete PointEventType = "CHALLENGE_COMPLETE"
)

func (t PointEventType) Valid() bool {
	switch t {
	case PointEventClassEnroll, PointEventRoutineAssign, PointEventRoutineComplete, PointEventChallengeComplete:
		return true
	}
	return false
}

// PointEvent is an append-only ledger row. Totals are always derived by summing.
type PointEvent struct {
	ID        string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    string         `gorm:"index:idx_point_events_user_created,priority:1;not null" json:"user_id"`
	SedeID    string         `gorm:"index;not null" json:"sede_id"`
	Type      PointEventType `gorm:"type:varchar(32);index;not null" json:"type"`
	Points    int64          `gorm:"not null" json:"points"`
	ClassID   *string        `gorm:"index" json:"class_id,omitempty"`
	RoutineID *string        `gorm:"index" json:"routine_id,omitempty"`
	CreatedAt time.Time      `gorm:"index:idx_point_events_user_created,priority:2;autoCreateTime" json:"created_at"`
}

func (e *PointEvent) BeforeCreate(tx *gorm.DB) error {
	ensureID(&e.ID)
	return nil
}

// LeaderboardSnapshot freezes a weekly sede ranking.
type LeaderboardSnapshot struct {
	ID          string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Scope       string         `gorm:"type:varchar(16);index;not null" json:"scope"` // "sede"
	PeriodStart time.Time      `gorm:"index;not null" json:"period_start"`
	PeriodEnd   time.Time      `gorm:"not null" json:"period_end"`
	Rows        datatypes.JSON `json:"rows"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (s *LeaderboardSnapshot) BeforeCreate(tx *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
