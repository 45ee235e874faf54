package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PackagingType is one level of a product's packaging hierarchy.
// Exactly one active type per product is the base unit (BaseUnitQuantity = 1,
// Level = 1); every other level points at its immediate container via
// ParentPackagingID and carries the number of base units one of it holds.
//
// Convention: Level and BaseUnitQuantity strictly increase moving away from
// the base unit toward larger containers.
type PackagingType struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID         uuid.UUID  `gorm:"type:uuid;index;not null"`
	Name              string     `gorm:"not null"`
	Barcode           *string    `gorm:"index"` // unique among active types, enforced by the validator
	BaseUnitQuantity  decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	IsBaseUnit        bool       `gorm:"not null;default:false"`
	Level             int        `gorm:"not null;default:1"`
	ParentPackagingID *uuid.UUID `gorm:"type:uuid;index"`

	// Physical dimensions — optional; cm / kg
	LengthCm *decimal.Decimal `gorm:"type:decimal(10,2)"`
	WidthCm  *decimal.Decimal `gorm:"type:decimal(10,2)"`
	HeightCm *decimal.Decimal `gorm:"type:decimal(10,2)"`
	WeightKg *decimal.Decimal `gorm:"type:decimal(10,3)"`

	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Product *Product       `gorm:"foreignKey:ProductID"`
	Parent  *PackagingType `gorm:"foreignKey:ParentPackagingID"`
}

// HasDimensions reports whether all three footprint dimensions plus weight
// are present — required before the type can participate in a composition.
func (p *PackagingType) HasDimensions() bool {
	return p.LengthCm != nil && p.WidthCm != nil && p.HeightCm != nil && p.WeightKg != nil
}
