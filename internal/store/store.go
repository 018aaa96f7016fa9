// Package store persists worksite snapshots with gorm on SQLite or Postgres.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/couchcryptid/worksite-map/internal/domain"
)

// ErrUnknownDriver is returned by Open for a driver other than sqlite or postgres.
var ErrUnknownDriver = errors.New("unknown store driver")

// Store reads and writes worksites.
type Store struct {
	db *gorm.DB
}

// Open connects to the database named by driver and dsn and migrates the schema.
func Open(driver, dsn string, log *slog.Logger) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        500,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", driver, err)
	}

	s := New(db)
	if err := s.Migrate(); err != nil {
		_ = s.Close()
		return nil, err
	}
	log.Info("worksite store ready", "driver", driver)
	return s, nil
}

// New wraps an existing connection. The schema is not migrated.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the worksites and work_types tables.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("migrate store: %w", err)
	}
	return nil
}

// Replace swaps the stored snapshot for sites in one transaction.
func (s *Store) Replace(ctx context.Context, sites []domain.Worksite) error {
	records := make([]worksiteRecord, 0, len(sites))
	for _, site := range sites {
		records = append(records, toRecord(site))
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := all.Delete(&workTypeRecord{}).Error; err != nil {
			return err
		}
		if err := all.Delete(&worksiteRecord{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.Create(&records).Error
	})
	if err != nil {
		return fmt.Errorf("replace worksites: %w", err)
	}
	return nil
}

// Worksites returns every stored worksite ordered by ID, with work types in their original order.
func (s *Store) Worksites(ctx context.Context) ([]domain.Worksite, error) {
	var records []worksiteRecord
	err := s.db.WithContext(ctx).
		Preload("WorkTypes", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Order("id").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("load worksites: %w", err)
	}

	sites := make([]domain.Worksite, 0, len(records))
	for _, r := range records {
		sites = append(sites, r.toDomain())
	}
	return sites, nil
}

// CheckReadiness pings the underlying connection.
func (s *Store) CheckReadiness(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
