package models

import (
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type ChallengeFrequency string

const (
	ChallengeDaily  ChallengeFrequency = "DAILY"
	ChallengeWeekly ChallengeFrequency = "WEEKLY"
)

func (f ChallengeFrequency) Valid() bool {
	return f == ChallengeDaily || f == ChallengeWeekly
}

// Challenge: catalog entry. A nil SedeID means the challenge is offered at every sede.
type Challenge struct {
	ID           string             `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Code         string             `gorm:"index;not null" json:"code"` // slug of the title, keys the completion predicate
	Title        string             `gorm:"not null" json:"title"`
	Description  string             `json:"description"`
	Frequency    ChallengeFrequency `gorm:"type:varchar(16);index;not null" json:"frequency"`
	PointsReward int64              `gorm:"not null" json:"points_reward"`
	MinLevel     int                `gorm:"not null" json:"min_level"`
	SedeID       *string            `gorm:"index" json:"sede_id,omitempty"`
	IsActive     bool               `gorm:"not null;index" json:"is_active"`
	CreatedAt    time.Time          `gorm:"autoCreateTime" json:"created_at"`
}

func (c *Challenge) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	if c.Code == "" {
		c.Code = slug.Make(c.Title)
	}
	if c.MinLevel < 1 {
		c.MinLevel = 1
	}
	return nil
}

// UserChallenge records one completion per (user, challenge, period).
type UserChallenge struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID        string    `gorm:"uniqueIndex:idx_user_challenge_period,priority:1;not null" json:"user_id"`
	ChallengeID   string    `gorm:"uniqueIndex:idx_user_challenge_period,priority:2;not null" json:"challenge_id"`
	PeriodKey     string    `gorm:"uniqueIndex:idx_user_challenge_period,priority:3;type:varchar(16);not null" json:"period_key"`
	PointsAwarded int64     `gorm:"not null" json:"points_awarded"`
	CompletedAt   time.Time `gorm:"not null" json:"completed_at"`
}

func (uc *UserChallenge) BeforeCreate(tx *gorm.DB) error {
	ensureID(&uc.ID)
	return nil
}
