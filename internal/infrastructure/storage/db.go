package storage

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/certwatch/backend/internal/domain"
)

// Open initializes the sqlite database and migrates the pipeline schema.
// Use ":memory:" for tests.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	// sqlite serializes writers; a single connection avoids busy errors
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&domain.PendingJudgment{}, &domain.BlacklistTerm{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	log.Printf("[STORAGE] database ready at %s", path)
	return db, nil
}
