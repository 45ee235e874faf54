package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockRecord is one lot of stock for a product, always expressed in base
// units regardless of the packaging type it was received under.
// PackagingTypeID records how the stock physically arrived; the breakdown
// report never reinterprets a record under a different type.
type StockRecord struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID         uuid.UUID       `gorm:"type:uuid;index;not null"`
	PackagingTypeID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	QuantityBaseUnits decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	LocationCode      string          `gorm:"index;not null"`
	Active            bool            `gorm:"not null;default:true"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	PackagingType *PackagingType `gorm:"foreignKey:PackagingTypeID"`
}

// Stock movement types.
const (
	MovementAssembly    = "assembly"
	MovementDisassembly = "disassembly"
)

// StockMovement is the audit journal row written alongside every stock
// mutation. Created inside the same transaction as the mutation itself.
type StockMovement struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	Type          string          `gorm:"not null"` // assembly | disassembly
	BaseUnits     decimal.Decimal `gorm:"type:decimal(14,3);not null"` // negative = deduction
	BalanceBefore decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	Reason        string
	CompositionID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt     time.Time
}
