package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Composition statuses. Forward-only except disassembly (executed → approved).
const (
	StatusDraft     = "draft"
	StatusValidated = "validated"
	StatusApproved  = "approved"
	StatusExecuted  = "executed"
)

// Composition is a planned arrangement of products on a pallet together with
// its calculated feasibility result. Result and Constraints are point-in-time
// snapshots taken at calculation; reads always return the snapshot — stock is
// only rechecked live at assembly time.
type Composition struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name     string    `gorm:"not null"`
	Status   string    `gorm:"not null;default:'draft';index"`
	PalletID uuid.UUID `gorm:"type:uuid;index;not null"`

	// JSON snapshots of the calculation inputs and output
	Constraints []byte `gorm:"type:jsonb"`
	Result      []byte `gorm:"type:jsonb;not null"`

	CreatedBy  string `gorm:"not null"`
	ApprovedBy *string
	ApprovedAt *time.Time

	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Pallet *Pallet           `gorm:"foreignKey:PalletID"`
	Items  []CompositionItem `gorm:"foreignKey:CompositionID"`
}

// CompositionItem is one product line of a composition. Quantity counts whole
// packages of PackagingTypeID. DisassembledQuantity accumulates across
// disassembly calls and can never exceed Quantity.
type CompositionItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompositionID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID       uuid.UUID       `gorm:"type:uuid;index;not null"`
	PackagingTypeID uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity        decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	Layer           int             `gorm:"not null;default:1"`
	SortOrder       int             `gorm:"not null;default:0"`

	DisassembledQuantity decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0"`

	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	PackagingType *PackagingType `gorm:"foreignKey:PackagingTypeID"`
	Product       *Product       `gorm:"foreignKey:ProductID"`
}
