package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"gym-management-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errAlreadyCompleted = errors.New("challenge already completed for period")

type ChallengeService struct {
	DB       *gorm.DB
	Location *time.Location // local day/week boundaries for period keys and predicates

	now func() time.Time
}

func NewChallengeService(db *gorm.DB, loc *time.Location) *ChallengeService {
	if loc == nil {
		loc = time.UTC
	}
	return &ChallengeService{DB: db, Location: loc, now: time.Now}
}

// ChallengeStatus is a selected challenge and whether it is done this period.
type ChallengeStatus struct {
	models.Challenge
	PeriodKey   string `json:"period_key"`
	IsCompleted bool   `json:"is_completed"`
}

// ChallengeGrant is a completion recorded by EvaluateAndReturnNew.
type ChallengeGrant struct {
	Challenge     models.Challenge `json:"challenge"`
	PeriodKey     string           `json:"period_key"`
	PointsAwarded int64            `json:"points_awarded"`
}

// SelectChallenges deterministically picks a user's challenges for a period.
// Candidates are ordered by id, shuffled by Fisher-Yates from a stream seeded with
// "userID|periodKey|frequency", then truncated: weekly keeps 3, daily keeps 3 or 2
// depending on one extra draw from the same stream.
func SelectChallenges(candidates []models.Challenge, userID, periodKey string, freq models.ChallengeFrequency) []models.Challenge {
	pool := slices.Clone(candidates)
	slices.SortFunc(pool, func(a, b models.Challenge) int { return strings.Compare(a.ID, b.ID) })

	rng := newSeededRand(userID + "|" + periodKey + "|" + string(freq))
	for i := len(pool) - 1; i > 0; i-- {
		j := int(rng.Float64() * float64(i+1))
		pool[i], pool[j] = pool[j], pool[i]
	}

	count := 3
	if freq == models.ChallengeDaily && rng.Float64() >= 0.5 {
		count = 2
	}
	return pool[:min(count, len(pool))]
}

// selected re-derives the challenge set. Users below ChallengeMinLevel get none.
func (s *ChallengeService) selected(db *gorm.DB, userID, sedeID string, freq models.ChallengeFrequency, now time.Time) ([]models.Challenge, string, error) {
	key := PeriodKey(freq, now, s.Location)

	total, err := totalPoints(db, userID, "")
	if err != nil {
		return nil, key, err
	}
	level := LevelForPoints(total).Level
	if level < ChallengeMinLevel {
		return nil, key, nil
	}

	q := db.Where("is_active = ? AND frequency = ? AND min_level <= ?", true, freq, level)
	if sedeID != "" {
		q = q.Where("sede_id IS NULL OR sede_id = ?", sedeID)
	} else {
		q = q.Where("sede_id IS NULL")
	}
	var candidates []models.Challenge
	if err := q.Find(&candidates).Error; err != nil {
		return nil, key, fmt.Errorf("load %s challenges: %w", freq, err)
	}
	return SelectChallenges(candidates, userID, key, freq), key, nil
}

func (s *ChallengeService) completedIDs(db *gorm.DB, userID, key string, selected []models.Challenge) (map[string]bool, error) {
	done := make(map[string]bool)
	if len(selected) == 0 {
		return done, nil
	}
	ids := make([]string, 0, len(selected))
	for _, ch := range selected {
		ids = append(ids, ch.ID)
	}
	var rows []string
	err := db.Model(&models.UserChallenge{}).
		Where("user_id = ? AND period_key = ? AND challenge_id IN ?", userID, key, ids).
		Pluck("challenge_id", &rows).Error
	if err != nil {
		return nil, fmt.Errorf("load completed challenges: %w", err)
	}
	for _, id := range rows {
		done[id] = true
	}
	return done, nil
}

// ListForUser returns this period's challenges with completion flags.
func (s *ChallengeService) ListForUser(ctx context.Context, userID, sedeID string, freq models.ChallengeFrequency) ([]ChallengeStatus, error) {
	if userID == "" {
		return nil, validationError("user id is required")
	}
	if !freq.Valid() {
		return nil, validationError("unknown challenge frequency %q", freq)
	}
	db := s.DB.WithContext(ctx)

	selected, key, err := s.selected(db, userID, sedeID, freq, s.now())
	if err != nil {
		return nil, err
	}
	done, err := s.completedIDs(db, userID, key, selected)
	if err != nil {
		return nil, err
	}

	out := make([]ChallengeStatus, 0, len(selected))
	for _, ch := range selected {
		out = append(out, ChallengeStatus{Challenge: ch, PeriodKey: key, IsCompleted: done[ch.ID]})
	}
	return out, nil
}

// EvaluateAndReturnNew checks the daily and weekly selections and records every newly satisfied challenge.
func (s *ChallengeService) EvaluateAndReturnNew(ctx context.Context, userID, sedeID string) ([]ChallengeGrant, error) {
	if userID == "" {
		return nil, validationError("user id is required")
	}
	if sedeID == "" {
		return nil, validationError("sede id is required")
	}
	db := s.DB.WithContext(ctx)
	now := s.now()

	var granted []ChallengeGrant
	for _, freq := range []models.ChallengeFrequency{models.ChallengeDaily, models.ChallengeWeekly} {
		selected, key, err := s.selected(db, userID, sedeID, freq, now)
		if err != nil {
			return granted, err
		}
		done, err := s.completedIDs(db, userID, key, selected)
		if err != nil {
			return granted, err
		}

		start, end := periodRange(freq, now, s.Location)
		window := ActivityWindow{UserID: userID, Start: start, End: end, Location: s.Location}

		for _, ch := range selected {
			if done[ch.ID] {
				continue
			}
			pred := resolvePredicate(ch)
			if pred == nil {
				continue
			}
			ok, err := pred(ctx, s.DB, window)
			if err != nil {
				return granted, err
			}
			if !ok {
				continue
			}

			grant, err := s.grant(ctx, userID, sedeID, ch, key, now)
			if err != nil {
				return granted, err
			}
			if grant != nil {
				granted = append(granted, *grant)
			}
		}
	}
	return granted, nil
}

// grant records the completion and its reward atomically. A nil grant means another evaluation won the race.
func (s *ChallengeService) grant(ctx context.Context, userID, sedeID string, ch models.Challenge, key string, now time.Time) (*ChallengeGrant, error) {
	eventSede := sedeID
	if ch.SedeID != nil {
		eventSede = *ch.SedeID
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		uc := models.UserChallenge{
			UserID:        userID,
			ChallengeID:   ch.ID,
			PeriodKey:     key,
			PointsAwarded: ch.PointsReward,
			CompletedAt:   now.UTC(),
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&uc)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errAlreadyCompleted
		}
		if ch.PointsReward <= 0 {
			return nil
		}
		reward := ch.PointsReward
		_, err := registerEvent(tx, RegisterEventInput{
			UserID:       userID,
			SedeID:       eventSede,
			Type:         models.PointEventChallengeComplete,
			CustomPoints: &reward,
		})
		return err
	})
	if errors.Is(err, errAlreadyCompleted) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("grant challenge %s to %s: %w", ch.Code, userID, err)
	}

	log.Printf("🏁 [CHALLENGES] %s completed %s (%s) +%d", userID, ch.Code, key, ch.PointsReward)
	return &ChallengeGrant{Challenge: ch, PeriodKey: key, PointsAwarded: ch.PointsReward}, nil
}
