package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Pallet is a shipping pallet from the external catalog (read-only here).
// Pallets carry no usable-stack-height field; the stacking ceiling is an
// operational setting, not a pallet attribute.
type Pallet struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string          `gorm:"not null"`
	WidthCm     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	LengthCm    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	HeightCm    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	MaxWeightKg decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Active      bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
