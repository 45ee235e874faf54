package dto

import "github.com/shopspring/decimal"

// ConsolidatedStockResponse is the single-pass total across all active stock
// records of a product, always in base units.
type ConsolidatedStockResponse struct {
	ProductID      string          `json:"product_id"`
	TotalBaseUnits decimal.Decimal `json:"total_base_units"`
	LocationCount  int             `json:"location_count"`
	RecordCount    int             `json:"record_count"`
}

// StockBreakdownEntry reports how much of a product is available as whole
// packages of one packaging type. Stock is counted strictly under the type it
// was recorded with — never reinterpreted as another type.
type StockBreakdownEntry struct {
	PackagingTypeID    string          `json:"packaging_type_id"`
	Name               string          `json:"name"`
	BaseUnitQuantity   decimal.Decimal `json:"base_unit_quantity"`
	RecordedBaseUnits  decimal.Decimal `json:"recorded_base_units"`
	AvailablePackages  int64           `json:"available_packages"`
	RemainingBaseUnits decimal.Decimal `json:"remaining_base_units"`
}

type StockBreakdownResponse struct {
	ProductID string                `json:"product_id"`
	Entries   []StockBreakdownEntry `json:"entries"`
}
