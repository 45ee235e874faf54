package dto

import "github.com/shopspring/decimal"

// ConvertRequest converts a quantity between two packaging levels of the same
// product. Both ids must belong to the same product.
type ConvertRequest struct {
	Quantity          decimal.Decimal `json:"quantity" validate:"required"`
	FromPackagingType string          `json:"from_packaging_type_id" validate:"required,uuid4"`
	ToPackagingType   string          `json:"to_packaging_type_id" validate:"required,uuid4"`
}

// ConvertResponse carries the real converted value. Rounding is the caller's
// decision: picking floors to whole packages, reporting keeps the fraction.
type ConvertResponse struct {
	ConvertedQuantity decimal.Decimal `json:"converted_quantity"`
	BaseUnits         decimal.Decimal `json:"base_units"`
	IsExact           bool            `json:"is_exact"`
}
