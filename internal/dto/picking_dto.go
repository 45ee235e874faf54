package dto

import "github.com/shopspring/decimal"

// OptimizePickingRequest asks for the least-handling combination of whole
// packages covering the requested base-unit quantity.
type OptimizePickingRequest struct {
	ProductID          string          `json:"product_id" validate:"required,uuid4"`
	RequestedBaseUnits decimal.Decimal `json:"requested_base_units"`
}

// PickingPlanLine is one (packaging type, package count) selection.
type PickingPlanLine struct {
	PackagingTypeID  string          `json:"packaging_type_id"`
	Name             string          `json:"name"`
	BaseUnitQuantity decimal.Decimal `json:"base_unit_quantity"`
	Packages         int64           `json:"packages"`
	BaseUnits        decimal.Decimal `json:"base_units"`
}

// PickingPlanResponse is the greedy largest-first plan. CanFulfill is false
// when the remaining quantity could not be covered by available packages.
type PickingPlanResponse struct {
	ProductID             string            `json:"product_id"`
	Plan                  []PickingPlanLine `json:"plan"`
	TotalPlannedBaseUnits decimal.Decimal   `json:"total_planned_base_units"`
	RemainingBaseUnits    decimal.Decimal   `json:"remaining_base_units"`
	CanFulfill            bool              `json:"can_fulfill"`
}
