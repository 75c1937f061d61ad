package services

import (
	"context"
	"fmt"
	"log"

	"gym-management-system/models"

	"gorm.io/gorm"
)

// ResetService wipes gamification state for demo environments.
type ResetService struct {
	DB       *gorm.DB
	Identity IdentityProvider
	Allowed  bool
}

func NewResetService(db *gorm.DB, idp IdentityProvider, allowed bool) *ResetService {
	return &ResetService{DB: db, Identity: idp, Allowed: allowed}
}

type ResetReport struct {
	PointEvents     int64 `json:"point_events"`
	UserBadges      int64 `json:"user_badges"`
	UserChallenges  int64 `json:"user_challenges"`
	UsersReset      int   `json:"users_reset"`
	UsersFailed     int   `json:"users_failed"`
	IdentitySkipped bool  `json:"identity_skipped"`
}

// Reset deletes every ledger row and grant in one transaction, then zeroes
// lastAcknowledgedLevel for every known user on a best-effort basis.
func (s *ResetService) Reset(ctx context.Context) (*ResetReport, error) {
	if !s.Allowed {
		return nil, fmt.Errorf("%w: demo reset is disabled (set ALLOW_DEMO_RESET=true)", ErrForbidden)
	}

	report := &ResetReport{}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})

		res := all.Delete(&models.UserChallenge{})
		if res.Error != nil {
			return fmt.Errorf("delete user challenges: %w", res.Error)
		}
		report.UserChallenges = res.RowsAffected

		res = all.Delete(&models.UserBadge{})
		if res.Error != nil {
			return fmt.Errorf("delete user badges: %w", res.Error)
		}
		report.UserBadges = res.RowsAffected

		res = all.Delete(&models.PointEvent{})
		if res.Error != nil {
			return fmt.Errorf("delete point events: %w", res.Error)
		}
		report.PointEvents = res.RowsAffected
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("🧹 [RESET] deleted %d point events, %d user badges, %d user challenges",
		report.PointEvents, report.UserBadges, report.UserChallenges)

	if s.Identity == nil {
		report.IdentitySkipped = true
		return report, nil
	}
	ids, err := s.Identity.ListUserIDs(ctx)
	if err != nil {
		log.Printf("⚠️ [RESET] could not list identity users: %v", err)
		report.IdentitySkipped = true
		return report, nil
	}
	for _, id := range ids {
		if err := s.Identity.UpdateMetadata(ctx, id, map[string]any{LastAcknowledgedLevelKey: 0}); err != nil {
			log.Printf("⚠️ [RESET] metadata reset failed for %s: %v", id, err)
			report.UsersFailed++
			continue
		}
		report.UsersReset++
	}
	return report, nil
}
