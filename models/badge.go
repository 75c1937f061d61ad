package models

import (
	"strings"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BadgeMetric names the aggregate a badge threshold is compared against.
type BadgeMetric string

const (
	BadgeMetricTotalPoints          BadgeMetric = "TOTAL_POINTS"
	BadgeMetricClassEnrollCount     BadgeMetric = "CLASS_ENROLL_COUNT"
	BadgeMetricRoutineCompleteCount BadgeMetric = "ROUTINE_COMPLETE_COUNT"
)

func (m BadgeMetric) Valid() bool {
	switch m {
	case BadgeMetricTotalPoints, BadgeMetricClassEnrollCount, BadgeMetricRoutineCompleteCount:
		return true
	}
	return false
}

// Badge: static catalog entry
type Badge struct {
	ID          string      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Code        string      `gorm:"uniqueIndex;not null" json:"code"` // e.g., "PRIMERA_CLASE"
	Name        string      `gorm:"not null" json:"name"`
	Description string      `json:"description"`
	Icon        string      `gorm:"type:text" json:"icon"` // emoji or R2 URL
	Metric      BadgeMetric `gorm:"type:varchar(32);not null" json:"metric"`
	Threshold   int64       `gorm:"not null" json:"threshold"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
}

func (b *Badge) BeforeCreate(tx *gorm.DB) error {
	ensureID(&b.ID)
	if b.Code == "" {
		b.Code = strings.ToUpper(strings.ReplaceAll(slug.Make(b.Name), "-", "_"))
	}
	return nil
}

// UserBadge: awarded instance, at most one per (user, badge)
type UserBadge struct {
	ID       string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID   string         `gorm:"uniqueIndex:idx_user_badge,priority:1;not null" json:"user_id"`
	BadgeID  string         `gorm:"uniqueIndex:idx_user_badge,priority:2;not null" json:"badge_id"`
	EarnedAt time.Time      `gorm:"not null" json:"earned_at"`
	Metadata datatypes.JSON `json:"metadata,omitempty"` // metric value at grant time
}

func (ub *UserBadge) BeforeCreate(tx *gorm.DB) error {
	ensureID(&ub.ID)
	return nil
}
