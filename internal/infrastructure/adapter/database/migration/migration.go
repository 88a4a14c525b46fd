package migration

import (
	"context"
	"errors"
	"time"

	coreport "github.com/garmonpay/reward-ledger/internal/domain/port/core"
	"github.com/garmonpay/reward-ledger/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

const (
	// CurrentSchemaVersion represents the current database schema version
	CurrentSchemaVersion = "1.0.0"
)

// MigrationManager manages database migrations
type MigrationManager struct {
	db               *gorm.DB
	logger           coreport.Logger
	timeProvider     coreport.TimeProvider
	advancedIndexMgr *AdvancedIndexManager
}

// NewMigrationManager creates a new migration manager
func NewMigrationManager(db *gorm.DB, logger coreport.Logger) *MigrationManager {
	return &MigrationManager{
		db:               db,
		logger:           logger,
		advancedIndexMgr: NewAdvancedIndexManager(db, logger),
	}
}

// NewMigrationManagerWithTimeProvider creates a new migration manager with time provider
func NewMigrationManagerWithTimeProvider(db *gorm.DB, logger coreport.Logger, timeProvider coreport.TimeProvider) *MigrationManager {
	return &MigrationManager{
		db:               db,
		logger:           logger,
		timeProvider:     timeProvider,
		advancedIndexMgr: NewAdvancedIndexManager(db, logger),
	}
}

// MigrateAll performs all migrations
func (m *MigrationManager) MigrateAll() error {
	m.logger.Info("Starting database migrations", map[string]any{
		"target_version": CurrentSchemaVersion,
	})

	// Create migration version table first
	if err := m.db.AutoMigrate(&model.MigrationVersion{}); err != nil {
		m.logger.Error("Failed to create migration version table", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	// Check current version
	currentVersion, err := m.GetCurrentVersion(context.Background())
	if err != nil {
		m.logger.Error("Failed to check current schema version", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	if currentVersion == CurrentSchemaVersion {
		m.logger.Info("Database already at target version, skipping migration", map[string]any{
			"version": currentVersion,
		})
		return nil
	}

	m.logger.Info("Current database version", map[string]any{
		"version": currentVersion,
	})

	// Auto-migrate models
	if err := m.autoMigrateModels(); err != nil {
		m.logger.Error("Failed to auto-migrate models", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	// Run custom migrations based on version
	if err := m.runVersionedMigrations(currentVersion); err != nil {
		m.logger.Error("Failed to run versioned migrations", map[string]any{
			"error":           err.Error(),
			"current_version": currentVersion,
			"target_version":  CurrentSchemaVersion,
		})
		return err
	}

	// Create basic indexes
	if err := m.createIndexes(); err != nil {
		m.logger.Error("Failed to create indexes", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	// Create advanced PostgreSQL indexes for better performance
	if err := m.createAdvancedIndexes(); err != nil {
		m.logger.Error("Failed to create advanced indexes", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	// Apply performance tweaks
	if err := m.applyPerformanceTweaks(); err != nil {
		m.logger.Error("Failed to apply performance tweaks", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	// Update migration version
	if err := m.setVersion(context.Background(), CurrentSchemaVersion, "Full schema migration"); err != nil {
		m.logger.Error("Failed to update schema version", map[string]any{
			"error":   err.Error(),
			"version": CurrentSchemaVersion,
		})
		return err
	}

	m.logger.Info("Database migrations completed successfully", map[string]any{
		"version": CurrentSchemaVersion,
	})
	return nil
}

// GetCurrentVersion gets the current migration version
func (m *MigrationManager) GetCurrentVersion(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	var version model.MigrationVersion
	result := m.db.WithContext(ctx).Order("applied_at desc").First(&version)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", nil // No version found
		}
		return "", result.Error
	}

	return version.Version, nil
}

// setVersion records a new migration version
func (m *MigrationManager) setVersion(ctx context.Context, version string, details string) error {
	var appliedAt time.Time
	if m.timeProvider != nil {
		appliedAt = m.timeProvider.Now()
	} else {
		appliedAt = time.Now()
	}

	migrationVersion := model.MigrationVersion{
		Version:   version,
		AppliedAt: appliedAt,
		Details:   details,
	}

	result := m.db.WithContext(ctx).Create(&migrationVersion)
	return result.Error
}

// autoMigrateModels auto-migrates database models
func (m *MigrationManager) autoMigrateModels() error {
	m.logger.Info("Auto-migrating database models", nil)

	// Auto-migrate all models
	return m.db.AutoMigrate(
		&model.Account{},
		&model.Transaction{},
		&model.RewardEvent{},
		&model.Ad{},
		&model.AdSession{},
		&model.GlobalBudget{},
		&model.Withdrawal{},
		&model.Subscription{},
		&model.ReferralCommission{},
	)
}

// runVersionedMigrations runs migrations specific to version transitions
func (m *MigrationManager) runVersionedMigrations(currentVersion string) error {
	m.logger.Info("Running versioned migrations", map[string]any{
		"from": currentVersion,
		"to":   CurrentSchemaVersion,
	})

	// If starting from scratch
	if currentVersion == "" {
		return m.runBaseMigrations()
	}

	// Apply migrations based on current version
	switch currentVersion {
	case "0.9.0":
		if err := m.migrateFrom0_9_0To1_0_0(); err != nil {
			return err
		}
	}

	return nil
}

// runBaseMigrations runs the base migrations for a new database
func (m *MigrationManager) runBaseMigrations() error {
	m.logger.Info("Running base migrations", nil)

	// Add any SQL that needs to run for fresh migrations
	// Example: setting up sequences, special constraints, etc.

	return nil
}

// migrateFrom0_9_0To1_0_0 migrates from version 0.9.0 to 1.0.0
func (m *MigrationManager) migrateFrom0_9_0To1_0_0() error {
	m.logger.Info("Migrating from v0.9.0 to v1.0.0", nil)

	// Add migration steps specific to this version transition
	// Example: Adding columns, changing types, etc.

	return nil
}

// createIndexes creates basic database indexes
func (m *MigrationManager) createIndexes() error {
	m.logger.Info("Creating database indexes", nil)

	// Create unique index for reference IDs to prevent replayed ledger rows
	if err := m.db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_reference_id_unique ON transactions (reference_id)").Error; err != nil {
		return err
	}

	// Create account ID index for transactions
	if err := m.db.Exec("CREATE INDEX IF NOT EXISTS idx_transactions_account_id ON transactions (account_id)").Error; err != nil {
		return err
	}

	// Create the idempotency index for reward events
	if err := m.db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_reward_events_source_key ON reward_events (source, natural_key)").Error; err != nil {
		return err
	}

	return nil
}

// createAdvancedIndexes creates advanced PostgreSQL indexes
func (m *MigrationManager) createAdvancedIndexes() error {
	return m.advancedIndexMgr.CreateAdvancedIndexes()
}

// applyPerformanceTweaks applies PostgreSQL performance tweaks
func (m *MigrationManager) applyPerformanceTweaks() error {
	return m.advancedIndexMgr.CreatePerformanceTweaks()
}
