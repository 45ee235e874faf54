package infra

import (
	"fmt"

	"github.com/Joaovenera/wms-sub005/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and runs AutoMigrate
// to create / update all tables. Decimal columns carry explicit precision in
// the model tags so AutoMigrate emits the right DDL.
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
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return db, nil
}

// RunMigrations applies the schema. Also used by integration tests against a
// disposable container database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Product{},
		&model.PackagingType{},
		&model.StockRecord{},
		&model.StockMovement{},
		&model.Pallet{},
		&model.Composition{},
		&model.CompositionItem{},
	); err != nil {
		return err
	}

	// Partial unique index: barcode uniqueness applies to active types only.
	// The validator enforces it too, but the index closes races between
	// concurrent writers.
	return db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_packaging_types_active_barcode
		    ON packaging_types (barcode)
		    WHERE active = true AND barcode IS NOT NULL`).Error
}
