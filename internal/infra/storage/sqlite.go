package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"mm_game/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Storage archives runs and stores replay price series in SQLite.
type Storage struct {
	db *gorm.DB
}

// NewStorage opens (or creates) the SQLite database at dbPath.
func NewStorage(dbPath string) (*Storage, error) {
	// Ensure directory exists
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return newStorage(db)
}

func newStorage(db *gorm.DB) (*Storage, error) {
	if err := db.AutoMigrate(&domain.RunRecord{}, &domain.FillRow{}, &domain.PricePoint{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the underlying connection pool.
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ======================================================================================
// Run Operations
// ======================================================================================

// SaveRun stores a run summary together with its fills.
func (s *Storage) SaveRun(ctx context.Context, rec *domain.RunRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Fills").Create(rec).Error; err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}
		if len(rec.Fills) == 0 {
			return nil
		}
		for i := range rec.Fills {
			rec.Fills[i].RunID = rec.ID
		}
		if err := tx.CreateInBatches(rec.Fills, 500).Error; err != nil {
			return fmt.Errorf("failed to insert fills: %w", err)
		}
		return nil
	})
}

// GetRun retrieves a run and its fills in log order.
func (s *Storage) GetRun(ctx context.Context, id string) (*domain.RunRecord, error) {
	var rec domain.RunRecord
	err := s.db.WithContext(ctx).
		Preload("Fills", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListRuns returns the most recent runs without fills.
func (s *Storage) ListRuns(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var runs []domain.RunRecord
	err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

// ======================================================================================
// Price Series Operations
// ======================================================================================

// SavePriceSeries replaces the stored points of a series.
func (s *Storage) SavePriceSeries(ctx context.Context, series string, points []domain.PricePoint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("series = ?", series).Delete(&domain.PricePoint{}).Error; err != nil {
			return err
		}
		if len(points) == 0 {
			return nil
		}
		for i := range points {
			points[i].Series = series
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(points, 500).Error
	})
}

// LoadPriceSeries returns a series ordered by day.
func (s *Storage) LoadPriceSeries(ctx context.Context, series string) ([]domain.PricePoint, error) {
	var points []domain.PricePoint
	err := s.db.WithContext(ctx).Where("series = ?", series).Order("day ASC").Find(&points).Error
	return points, err
}
