package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gym-management-system/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormConfig is shared by the server and by tests. All stored times are UTC.
func GormConfig(logSQL bool) *gorm.Config {
	level := logger.Silent
	if logSQL {
		level = logger.Warn
	}
	return &gorm.Config{
		Logger: logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				SlowThreshold: 200 * time.Millisecond,
				LogLevel:      level,
				Colorful:      true,
			},
		),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
}

// Open connects to Postgres.
func Open(dsn string, logSQL bool) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), GormConfig(logSQL))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}
