package repository

import (
	"context"
	"time"

	"github.com/Joaovenera/wms-sub005/internal/dto"
	"github.com/Joaovenera/wms-sub005/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompositionRepository persists compositions and their items. Lifecycle
// mutations (assemble, disassemble, delete) run inside transactions opened
// via Transaction.
type CompositionRepository interface {
	Create(ctx context.Context, c *model.Composition) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Composition, error)
	List(ctx context.Context, filter dto.CompositionFilter) ([]model.Composition, int64, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status string, approvedBy *string, approvedAt *time.Time) error

	// Transaction runs fn inside a database transaction; the lifecycle
	// mutations pass the returned tx to the *Tx methods below.
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error

	// TransitionStatusTx moves the composition from one status to another only
	// if it still holds the expected status, reporting whether the row matched.
	// The conditional write takes the row lock, so concurrent lifecycle calls
	// serialize here and the loser sees false.
	TransitionStatusTx(tx *gorm.DB, id uuid.UUID, from, to string) (bool, error)

	// ListItemsForUpdateTx locks the composition's active items (SELECT … FOR
	// UPDATE) so disassembly caps are checked against committed values.
	ListItemsForUpdateTx(tx *gorm.DB, compositionID uuid.UUID) ([]model.CompositionItem, error)

	UpdateItemDisassembledTx(tx *gorm.DB, itemID uuid.UUID, quantity decimal.Decimal) error
	SoftDeleteTx(tx *gorm.DB, id uuid.UUID) error

	DB() *gorm.DB
}

type compositionRepo struct{ db *gorm.DB }

func NewCompositionRepository(db *gorm.DB) CompositionRepository { return &compositionRepo{db: db} }

func (r *compositionRepo) Create(ctx context.Context, c *model.Composition) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *compositionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Composition, error) {
	var c model.Composition
	err := r.db.WithContext(ctx).
		Preload("Items", "active = true").
		Preload("Items.PackagingType").
		Preload("Pallet").
		Where("id = ? AND active = true", id).
		First(&c).Error
	return &c, err
}

func (r *compositionRepo) List(ctx context.Context, filter dto.CompositionFilter) ([]model.Composition, int64, error) {
	var compositions []model.Composition
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Composition{}).Where("active = true")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Items", "active = true").
		Order("created_at DESC").
		Limit(filter.Limit).Offset(offset).
		Find(&compositions).Error
	return compositions, total, err
}

func (r *compositionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string, approvedBy *string, approvedAt *time.Time) error {
	updates := map[string]interface{}{"status": status}
	if approvedBy != nil {
		updates["approved_by"] = approvedBy
		updates["approved_at"] = approvedAt
	}
	return r.db.WithContext(ctx).Model(&model.Composition{}).
		Where("id = ?", id).Updates(updates).Error
}

func (r *compositionRepo) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *compositionRepo) TransitionStatusTx(tx *gorm.DB, id uuid.UUID, from, to string) (bool, error) {
	res := tx.Model(&model.Composition{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected == 1, res.Error
}

func (r *compositionRepo) ListItemsForUpdateTx(tx *gorm.DB, compositionID uuid.UUID) ([]model.CompositionItem, error) {
	var items []model.CompositionItem
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("PackagingType").
		Where("composition_id = ? AND active = true", compositionID).
		Order("sort_order ASC").
		Find(&items).Error
	return items, err
}

func (r *compositionRepo) UpdateItemDisassembledTx(tx *gorm.DB, itemID uuid.UUID, quantity decimal.Decimal) error {
	return tx.Model(&model.CompositionItem{}).
		Where("id = ?", itemID).
		Update("disassembled_quantity", quantity).Error
}

func (r *compositionRepo) SoftDeleteTx(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Model(&model.Composition{}).
		Where("id = ?", id).Update("active", false).Error; err != nil {
		return err
	}
	return tx.Model(&model.CompositionItem{}).
		Where("composition_id = ?", id).Update("active", false).Error
}

func (r *compositionRepo) DB() *gorm.DB { return r.db }
