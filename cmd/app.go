package cmd

import (
	"context"
	"fmt"
	"log"

	"gym-management-system/config"
	"gym-management-system/database"
	"gym-management-system/handlers"
	"gym-management-system/services"
	"gym-management-system/utils"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// app bundles everything built from the configuration.
type app struct {
	cfg      *config.Config
	db       *gorm.DB
	rdb      *redis.Client
	identity services.IdentityProvider
	services *handlers.Services
}

func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.DatabaseURL, cfg.DBLog)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	a := &app{cfg: cfg, db: db}

	if cfg.IdentityURL != "" {
		a.identity = services.NewIdentityClient(cfg.IdentityURL, cfg.IdentityToken)
		if cfg.RedisAddr != "" {
			a.rdb = redis.NewClient(&redis.Options{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
			})
			if err := a.rdb.Ping(ctx).Err(); err != nil {
				log.Printf("[CONFIG] ⚠️  redis at %s unreachable, profile cache disabled: %v", cfg.RedisAddr, err)
				_ = a.rdb.Close()
				a.rdb = nil
			} else {
				a.identity = services.NewCachedIdentity(a.identity, a.rdb, cfg.ProfileCacheTTL)
			}
		}
	} else {
		log.Println("[CONFIG] ⚠️  IDENTITY_URL not set, level acknowledgement and names fall back to user ids")
	}

	badges := services.NewBadgeService(db)
	challenges := services.NewChallengeService(db, cfg.Location)
	gamification := services.NewGamification(badges, challenges)

	a.services = &handlers.Services{
		Points:       services.NewPointsService(db, a.identity),
		Progression:  services.NewProgressionService(db, a.identity),
		Badges:       badges,
		Challenges:   challenges,
		Sessions:     services.NewWorkoutSessionService(db, gamification),
		Gamification: gamification,
		Reset:        services.NewResetService(db, a.identity, cfg.AllowDemoReset),
	}

	if cfg.R2Enabled() {
		store, err := utils.NewR2Store(ctx, utils.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2SecretAccessKey,
			Bucket:          cfg.R2Bucket,
			CDNBaseURL:      cfg.CDNBaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize R2 client: %w", err)
		}
		a.services.Icons = store
	}

	return a, nil
}

func (a *app) Close() {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
