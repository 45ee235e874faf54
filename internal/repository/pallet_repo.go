package repository

import (
	"context"

	"github.com/Joaovenera/wms-sub005/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PalletRepository is the read-only view onto the pallet catalog.
type PalletRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Pallet, error)
	// ListActive returns active pallets ordered by max weight ascending, the
	// order auto-selection scans in.
	ListActive(ctx context.Context) ([]model.Pallet, error)
}

type palletRepo struct{ db *gorm.DB }

func NewPalletRepository(db *gorm.DB) PalletRepository { return &palletRepo{db: db} }

func (r *palletRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Pallet, error) {
	var p model.Pallet
	err := r.db.WithContext(ctx).Where("id = ? AND active = true", id).First(&p).Error
	return &p, err
}

func (r *palletRepo) ListActive(ctx context.Context) ([]model.Pallet, error) {
	var pallets []model.Pallet
	err := r.db.WithContext(ctx).
		Where("active = true").
		Order("max_weight_kg ASC").
		Find(&pallets).Error
	return pallets, err
}
