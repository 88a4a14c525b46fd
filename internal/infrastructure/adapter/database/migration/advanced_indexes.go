package migration

import (
	coreport "github.com/garmonpay/reward-ledger/internal/domain/port/core"
	"gorm.io/gorm"
)

// AdvancedIndexManager manages PostgreSQL-specific advanced indexes
type AdvancedIndexManager struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewAdvancedIndexManager creates a new advanced index manager
func NewAdvancedIndexManager(db *gorm.DB, logger coreport.Logger) *AdvancedIndexManager {
	return &AdvancedIndexManager{
		db:     db,
		logger: logger,
	}
}

// CreateAdvancedIndexes creates advanced PostgreSQL indexes for better performance
func (m *AdvancedIndexManager) CreateAdvancedIndexes() error {
	m.logger.Info("Creating advanced PostgreSQL indexes", nil)

	// Unique index on reference_id for fast idempotency checks
	if err := m.db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_reference_id
		ON transactions (reference_id)
	`).Error; err != nil {
		m.logger.Error("Failed to create unique index on reference_id", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	// Composite index for account_id and type to speed up filtered queries
	if err := m.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_transactions_account_type
		ON transactions (account_id, type)
	`).Error; err != nil {
		m.logger.Error("Failed to create account_type composite index", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	// Partial index scoped to pending withdrawals for operator queues
	if err := m.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_withdrawals_pending
		ON withdrawals (created_at)
		WHERE status = 'pending'
	`).Error; err != nil {
		m.logger.Error("Failed to create pending withdrawals partial index", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	// BRIN index for created_at (more efficient for temporal data)
	if err := m.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_transactions_created_at_brin
		ON transactions USING BRIN (created_at)
		WITH (pages_per_range = 32)
	`).Error; err != nil {
		m.logger.Error("Failed to create BRIN index on created_at", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	// Per-period limit counting hits (account_id, source, created_at)
	if err := m.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_reward_events_account_source_created
		ON reward_events (account_id, source, created_at)
	`).Error; err != nil {
		m.logger.Error("Failed to create reward events limit index", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	// Billing runs scan active subscriptions by due date
	if err := m.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_subscriptions_due
		ON subscriptions (next_billing_date)
		WHERE status = 'active'
	`).Error; err != nil {
		m.logger.Error("Failed to create due subscriptions partial index", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	m.logger.Info("Advanced PostgreSQL indexes created successfully", nil)
	return nil
}

// CreatePerformanceTweaks applies PostgreSQL performance tweaks
func (m *AdvancedIndexManager) CreatePerformanceTweaks() error {
	m.logger.Info("Applying PostgreSQL performance tweaks", nil)

	// Set fillfactor for transaction table to reduce page splits
	if err := m.db.Exec(`
		ALTER TABLE transactions SET (fillfactor = 90)
	`).Error; err != nil {
		m.logger.Warn("Failed to set fillfactor for transactions table", map[string]any{
			"error": err.Error(),
		})
		// Don't return error as this is not critical
	}

	// Set statistics target for better query planning
	if err := m.db.Exec(`
		ALTER TABLE transactions ALTER COLUMN account_id SET STATISTICS 1000
	`).Error; err != nil {
		m.logger.Warn("Failed to set statistics target for account_id", map[string]any{
			"error": err.Error(),
		})
		// Don't return error as this is not critical
	}

	m.logger.Info("PostgreSQL performance tweaks applied successfully", nil)
	return nil
}
