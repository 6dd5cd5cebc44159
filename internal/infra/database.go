package infra

import (
	"fmt"

	"machtrade/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that
// GORM cannot express (partial indexes, cross-table uniqueness guards).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations creates the schema. Shared with integration tests.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Branch{},
		&model.User{},
		&model.Customer{},
		&model.Machine{},
		&model.MachineSale{},
		&model.Installment{},
		&model.Payment{},
		&model.Ownership{},
		&model.MaintenanceJob{},
		&model.AuditLog{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// Each statement uses IF NOT EXISTS semantics so re-running is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Receipt numbers must be unique across payments AND paid installments.
		// The application checks both sets before writing; this partial index
		// closes the race on the installment side.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uni_installments_receipt_number') THEN
		    CREATE UNIQUE INDEX uni_installments_receipt_number
		        ON installments (receipt_number)
		        WHERE is_paid AND receipt_number IS NOT NULL;
		  END IF;
		END $$`,
		// Open-installment lookup for the repayment path (is_paid = false guard).
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_installments_sale_unpaid') THEN
		    CREATE INDEX idx_installments_sale_unpaid
		        ON installments (sale_id)
		        WHERE NOT is_paid;
		  END IF;
		END $$`,
		// Guard the paid ≤ total invariant at the storage layer as well.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_machine_sales_paid_le_total') THEN
		    ALTER TABLE machine_sales
		      ADD CONSTRAINT chk_machine_sales_paid_le_total CHECK (paid_amount <= total_price);
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
