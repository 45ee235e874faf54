package repository

import (
	"context"

	"github.com/Joaovenera/wms-sub005/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PackagingRepository is the data access contract for packaging types.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type PackagingRepository interface {
	Create(ctx context.Context, p *model.PackagingType) error
	Update(ctx context.Context, p *model.PackagingType) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PackagingType, error)
	FindActiveByBarcode(ctx context.Context, barcode string) (*model.PackagingType, error)
	ListActiveByProduct(ctx context.Context, productID uuid.UUID) ([]model.PackagingType, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.PackagingType, error)

	// BarcodeInUse reports whether another active type already carries the
	// barcode. excludeID skips the type being updated.
	BarcodeInUse(ctx context.Context, barcode string, excludeID uuid.UUID) (bool, error)

	SoftDelete(ctx context.Context, id uuid.UUID) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type packagingRepo struct{ db *gorm.DB }

func NewPackagingRepository(db *gorm.DB) PackagingRepository { return &packagingRepo{db: db} }

func (r *packagingRepo) Create(ctx context.Context, p *model.PackagingType) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *packagingRepo) Update(ctx context.Context, p *model.PackagingType) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *packagingRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PackagingType, error) {
	var p model.PackagingType
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *packagingRepo) FindActiveByBarcode(ctx context.Context, barcode string) (*model.PackagingType, error) {
	var p model.PackagingType
	err := r.db.WithContext(ctx).Where("barcode = ? AND active = true", barcode).First(&p).Error
	return &p, err
}

func (r *packagingRepo) ListActiveByProduct(ctx context.Context, productID uuid.UUID) ([]model.PackagingType, error) {
	var types []model.PackagingType
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND active = true", productID).
		Order("level ASC").
		Find(&types).Error
	return types, err
}

func (r *packagingRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.PackagingType, error) {
	var types []model.PackagingType
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("level ASC").
		Find(&types).Error
	return types, err
}

func (r *packagingRepo) BarcodeInUse(ctx context.Context, barcode string, excludeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.PackagingType{}).
		Where("barcode = ? AND active = true AND id <> ?", barcode, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *packagingRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.PackagingType{}).
		Where("id = ?", id).Update("active", false).Error
}

func (r *packagingRepo) DB() *gorm.DB { return r.db }
