package model

import (
	"time"

	"github.com/google/uuid"
)

// Product is the catalog entry packaging hierarchies hang off.
// This service only reads products — the catalog is maintained elsewhere.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SKU         string    `gorm:"uniqueIndex;not null"`
	Name        string    `gorm:"index;not null"`
	Description *string
	Active      bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
