package repository

import (
	"context"

	"github.com/Joaovenera/wms-sub005/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockRepository reads stock records (always base units) and applies the
// assembly/disassembly mutations. All *Tx methods require a live transaction —
// the assembly stock recheck must read-then-decide inside the same tx as the
// resulting writes, so concurrent assembles against the same product serialize
// on the row locks.
type StockRepository interface {
	ListActiveByProduct(ctx context.Context, productID uuid.UUID) ([]model.StockRecord, error)

	// HasActiveStockForPackaging backs the referential delete guard: a
	// packaging type referenced by live stock cannot be soft-deleted.
	HasActiveStockForPackaging(ctx context.Context, packagingTypeID uuid.UUID) (bool, error)

	// ListActiveByProductForUpdate locks the product's stock rows (SELECT …
	// FOR UPDATE) inside tx, ordered oldest first for FIFO deduction.
	ListActiveByProductForUpdate(tx *gorm.DB, productID uuid.UUID) ([]model.StockRecord, error)
	UpdateQuantityTx(tx *gorm.DB, recordID uuid.UUID, quantity decimal.Decimal) error
	DeactivateTx(tx *gorm.DB, recordID uuid.UUID) error
	CreateTx(tx *gorm.DB, rec *model.StockRecord) error
	CreateMovementTx(tx *gorm.DB, mov *model.StockMovement) error

	DB() *gorm.DB
}

type stockRepo struct{ db *gorm.DB }

func NewStockRepository(db *gorm.DB) StockRepository { return &stockRepo{db: db} }

func (r *stockRepo) ListActiveByProduct(ctx context.Context, productID uuid.UUID) ([]model.StockRecord, error) {
	var records []model.StockRecord
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND active = true", productID).
		Order("created_at ASC").
		Find(&records).Error
	return records, err
}

func (r *stockRepo) HasActiveStockForPackaging(ctx context.Context, packagingTypeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.StockRecord{}).
		Where("packaging_type_id = ? AND active = true AND quantity_base_units > 0", packagingTypeID).
		Count(&count).Error
	return count > 0, err
}

func (r *stockRepo) ListActiveByProductForUpdate(tx *gorm.DB, productID uuid.UUID) ([]model.StockRecord, error) {
	var records []model.StockRecord
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND active = true", productID).
		Order("created_at ASC").
		Find(&records).Error
	return records, err
}

func (r *stockRepo) UpdateQuantityTx(tx *gorm.DB, recordID uuid.UUID, quantity decimal.Decimal) error {
	return tx.Model(&model.StockRecord{}).
		Where("id = ?", recordID).
		Update("quantity_base_units", quantity).Error
}

func (r *stockRepo) DeactivateTx(tx *gorm.DB, recordID uuid.UUID) error {
	return tx.Model(&model.StockRecord{}).
		Where("id = ?", recordID).
		Updates(map[string]interface{}{"quantity_base_units": 0, "active": false}).Error
}

func (r *stockRepo) CreateTx(tx *gorm.DB, rec *model.StockRecord) error {
	return tx.Create(rec).Error
}

func (r *stockRepo) CreateMovementTx(tx *gorm.DB, mov *model.StockMovement) error {
	return tx.Create(mov).Error
}

func (r *stockRepo) DB() *gorm.DB { return r.db }
