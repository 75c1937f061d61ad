package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gym-management-system/models"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/datatypes"
)

const snapshotScopeSede = "sede"

// SnapshotSedeLeaderboard freezes the trailing 7-day sede ranking.
func (s *PointsService) SnapshotSedeLeaderboard(ctx context.Context) (*models.LeaderboardSnapshot, error) {
	end := s.now().UTC()
	rows, err := s.SedeLeaderboard(ctx, LeaderboardQuery{Period: Period7Days, Limit: maxLeaderboardLimit})
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot rows: %w", err)
	}

	snap := models.LeaderboardSnapshot{
		Scope:       snapshotScopeSede,
		PeriodStart: end.AddDate(0, 0, -7),
		PeriodEnd:   end,
		Rows:        datatypes.JSON(payload),
	}
	if err := s.DB.WithContext(ctx).Create(&snap).Error; err != nil {
		return nil, fmt.Errorf("store leaderboard snapshot: %w", err)
	}
	return &snap, nil
}

// StartSnapshotScheduler runs SnapshotSedeLeaderboard on a cron expression.
// The caller owns the returned scheduler and must Shutdown it.
func (s *PointsService) StartSnapshotScheduler(cronExpr string, loc *time.Location) (gocron.Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	sched, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			snap, err := s.SnapshotSedeLeaderboard(ctx)
			if err != nil {
				log.Printf("[SCHEDULER] sede leaderboard snapshot failed: %v", err)
				return
			}
			log.Printf("✅ [SCHEDULER] stored sede leaderboard snapshot %s", snap.ID)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("schedule snapshot job: %w", err)
	}

	sched.Start()
	return sched, nil
}
