package dto

import "github.com/shopspring/decimal"

// CreatePackagingTypeRequest creates one level of a product's hierarchy.
// The hierarchy validator runs before persistence; a violation rejects the
// whole request with no partial writes.
type CreatePackagingTypeRequest struct {
	ProductID         string           `json:"product_id" validate:"required,uuid4"`
	Name              string           `json:"name" validate:"required,min=1,max=120"`
	Barcode           *string          `json:"barcode" validate:"omitempty,min=4,max=64"`
	BaseUnitQuantity  decimal.Decimal  `json:"base_unit_quantity" validate:"required"`
	IsBaseUnit        bool             `json:"is_base_unit"`
	Level             int              `json:"level" validate:"required,min=1"`
	ParentPackagingID *string          `json:"parent_packaging_id" validate:"omitempty,uuid4"`
	LengthCm          *decimal.Decimal `json:"length_cm" validate:"omitempty"`
	WidthCm           *decimal.Decimal `json:"width_cm" validate:"omitempty"`
	HeightCm          *decimal.Decimal `json:"height_cm" validate:"omitempty"`
	WeightKg          *decimal.Decimal `json:"weight_kg" validate:"omitempty"`
}

// UpdatePackagingTypeRequest mutates an existing type. The product binding is
// immutable; everything else is re-validated as if freshly created.
type UpdatePackagingTypeRequest struct {
	Name              string           `json:"name" validate:"required,min=1,max=120"`
	Barcode           *string          `json:"barcode" validate:"omitempty,min=4,max=64"`
	BaseUnitQuantity  decimal.Decimal  `json:"base_unit_quantity" validate:"required"`
	IsBaseUnit        bool             `json:"is_base_unit"`
	Level             int              `json:"level" validate:"required,min=1"`
	ParentPackagingID *string          `json:"parent_packaging_id" validate:"omitempty,uuid4"`
	LengthCm          *decimal.Decimal `json:"length_cm"`
	WidthCm           *decimal.Decimal `json:"width_cm"`
	HeightCm          *decimal.Decimal `json:"height_cm"`
	WeightKg          *decimal.Decimal `json:"weight_kg"`
}

type PackagingTypeResponse struct {
	ID                string           `json:"id"`
	ProductID         string           `json:"product_id"`
	Name              string           `json:"name"`
	Barcode           *string          `json:"barcode"`
	BaseUnitQuantity  decimal.Decimal  `json:"base_unit_quantity"`
	IsBaseUnit        bool             `json:"is_base_unit"`
	Level             int              `json:"level"`
	ParentPackagingID *string          `json:"parent_packaging_id"`
	LengthCm          *decimal.Decimal `json:"length_cm"`
	WidthCm           *decimal.Decimal `json:"width_cm"`
	HeightCm          *decimal.Decimal `json:"height_cm"`
	WeightKg          *decimal.Decimal `json:"weight_kg"`
	Active            bool             `json:"active"`
	CreatedAt         string           `json:"created_at"`
}

type PackagingTypeListResponse struct {
	Data  []PackagingTypeResponse `json:"data"`
	Total int64                   `json:"total"`
}
