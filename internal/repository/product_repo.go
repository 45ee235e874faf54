package repository

import (
	"context"

	"github.com/Joaovenera/wms-sub005/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductRepository is the read-only view onto the product catalog. The
// catalog is owned by the surrounding application; this core only resolves ids.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindActiveByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productRepo) FindActiveByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("id = ? AND active = true", id).First(&p).Error
	return &p, err
}
