package services

import (
	"context"
	"fmt"
	"log"

	"gorm.io/gorm"
)

type ProgressionService struct {
	DB       *gorm.DB
	Identity IdentityProvider
}

func NewProgressionService(db *gorm.DB, idp IdentityProvider) *ProgressionService {
	return &ProgressionService{DB: db, Identity: idp}
}

type LevelStatus struct {
	LevelInfo
	Multipliers           map[ActivityContext]float64 `json:"multipliers"`
	ChallengesUnlocked    bool                        `json:"challenges_unlocked"`
	LastAcknowledgedLevel int                         `json:"last_acknowledged_level"`
	LeveledUp             bool                        `json:"leveled_up"`
}

func (s *ProgressionService) acknowledged(ctx context.Context, userID string) int {
	if s.Identity == nil {
		return 0
	}
	p, err := s.Identity.GetProfile(ctx, userID)
	if err != nil || p == nil {
		log.Printf("[IDENTITY] could not read acknowledged level for %s: %v", userID, err)
		return 0
	}
	return metadataInt(p.Metadata, LastAcknowledgedLevelKey)
}

// LevelStatus translates a user's ledger total into level, progress and multipliers.
func (s *ProgressionService) LevelStatus(ctx context.Context, userID, sedeID string) (*LevelStatus, error) {
	if userID == "" {
		return nil, validationError("user id is required")
	}
	total, err := totalPoints(s.DB.WithContext(ctx), userID, sedeID)
	if err != nil {
		return nil, err
	}

	info := LevelForPoints(total)
	ack := s.acknowledged(ctx, userID)
	return &LevelStatus{
		LevelInfo:             info,
		Multipliers:           MultipliersFor(info.Level),
		ChallengesUnlocked:    info.Level >= ChallengeMinLevel,
		LastAcknowledgedLevel: ack,
		LeveledUp:             info.Level > ack,
	}, nil
}

// AcknowledgeLevel stores the user's current all-time level as seen.
func (s *ProgressionService) AcknowledgeLevel(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, validationError("user id is required")
	}
	if s.Identity == nil {
		return 0, fmt.Errorf("%w: no identity provider configured", ErrConfiguration)
	}
	total, err := totalPoints(s.DB.WithContext(ctx), userID, "")
	if err != nil {
		return 0, err
	}
	level := LevelForPoints(total).Level
	if err := s.Identity.UpdateMetadata(ctx, userID, map[string]any{LastAcknowledgedLevelKey: level}); err != nil {
		return 0, err
	}
	log.Printf("[IDENTITY] %s acknowledged level %d", userID, level)
	return level, nil
}
