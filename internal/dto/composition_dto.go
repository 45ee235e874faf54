package dto

import (
	"github.com/shopspring/decimal"
)

// CompositionProductInput is one product line requested for a pallet load.
// Quantity counts whole packages of the given packaging type.
type CompositionProductInput struct {
	ProductID       string `json:"product_id" validate:"required,uuid4"`
	PackagingTypeID string `json:"packaging_type_id" validate:"required,uuid4"`
	Quantity        int    `json:"quantity" validate:"required,min=1"`
}

// CompositionConstraints override the pallet-derived limits. A nil field keeps
// the default: pallet max weight, pallet deck × stacking ceiling for volume,
// and the operational ceiling for height.
type CompositionConstraints struct {
	MaxWeightKg *decimal.Decimal `json:"max_weight_kg"`
	MaxVolumeM3 *decimal.Decimal `json:"max_volume_m3"`
	MaxHeightCm *decimal.Decimal `json:"max_height_cm"`
}

// CalculateCompositionRequest runs a stateless feasibility calculation.
// PalletID nil means auto-select the smallest pallet whose max weight covers
// the aggregate weight.
type CalculateCompositionRequest struct {
	Products    []CompositionProductInput `json:"products" validate:"required,min=1,dive"`
	PalletID    *string                   `json:"pallet_id" validate:"omitempty,uuid4"`
	Constraints *CompositionConstraints   `json:"constraints"`
}

// Placement is one package placed by the shelf-packing heuristic. Coordinates
// are centimeters from the pallet's front-left corner; layers count from 1.
type Placement struct {
	ProductID       string          `json:"product_id"`
	PackagingTypeID string          `json:"packaging_type_id"`
	Layer           int             `json:"layer"`
	XCm             decimal.Decimal `json:"x_cm"`
	YCm             decimal.Decimal `json:"y_cm"`
	WidthCm         decimal.Decimal `json:"width_cm"`
	LengthCm        decimal.Decimal `json:"length_cm"`
	HeightCm        decimal.Decimal `json:"height_cm"`
}

// LayerSummary aggregates one layer of the layout. Height is the tallest item
// placed in the layer.
type LayerSummary struct {
	Layer    int             `json:"layer"`
	HeightCm decimal.Decimal `json:"height_cm"`
	Items    int             `json:"items"`
}

// UtilizationRatios are resource usage over limit. Values may exceed 1 —
// anything above 1 is an error-level violation.
type UtilizationRatios struct {
	Weight decimal.Decimal `json:"weight"`
	Volume decimal.Decimal `json:"volume"`
	Height decimal.Decimal `json:"height"`
}

// CompositionLimits are the effective limits after constraint overrides.
type CompositionLimits struct {
	WeightKg decimal.Decimal `json:"weight_kg"`
	VolumeM3 decimal.Decimal `json:"volume_m3"`
	HeightCm decimal.Decimal `json:"height_cm"`
}

// CompositionResult is the persisted point-in-time snapshot of a calculation.
// Reads of a saved composition return this snapshot, never a recomputation.
type CompositionResult struct {
	PalletID        string            `json:"pallet_id"`
	TotalWeightKg   decimal.Decimal   `json:"total_weight_kg"`
	TotalVolumeM3   decimal.Decimal   `json:"total_volume_m3"`
	MaxItemHeightCm decimal.Decimal   `json:"max_item_height_cm"`
	StackHeightCm   decimal.Decimal   `json:"stack_height_cm"`
	Limits          CompositionLimits `json:"limits"`
	Utilization     UtilizationRatios `json:"utilization"`
	Efficiency      decimal.Decimal   `json:"efficiency"`
	LayerCount      int               `json:"layer_count"`
	Layers          []LayerSummary    `json:"layers"`
	Placements      []Placement       `json:"placements"`
	Violations      []string          `json:"violations"`
	Warnings        []string          `json:"warnings"`
	Recommendations []string          `json:"recommendations"`
	CalculatedAt    string            `json:"calculated_at"`
}

// SaveCompositionRequest persists a composition. The calculation re-runs at
// save time so the stored snapshot always matches the stored inputs.
type SaveCompositionRequest struct {
	Name        string                      `json:"name" validate:"required,min=1,max=120"`
	CreatedBy   string                      `json:"created_by" validate:"required"`
	Calculation CalculateCompositionRequest `json:"calculation" validate:"required"`
}

type CompositionItemResponse struct {
	ID                   string          `json:"id"`
	ProductID            string          `json:"product_id"`
	PackagingTypeID      string          `json:"packaging_type_id"`
	Quantity             decimal.Decimal `json:"quantity"`
	Layer                int             `json:"layer"`
	DisassembledQuantity decimal.Decimal `json:"disassembled_quantity"`
}

type CompositionResponse struct {
	ID          string                    `json:"id"`
	Name        string                    `json:"name"`
	Status      string                    `json:"status"`
	PalletID    string                    `json:"pallet_id"`
	CreatedBy   string                    `json:"created_by"`
	ApprovedBy  *string                   `json:"approved_by"`
	ApprovedAt  *string                   `json:"approved_at"`
	Items       []CompositionItemResponse `json:"items"`
	Constraints *CompositionConstraints   `json:"constraints"`
	Result      *CompositionResult        `json:"result"`
	CreatedAt   string                    `json:"created_at"`
}

type CompositionListItem struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Status     string  `json:"status"`
	PalletID   string  `json:"pallet_id"`
	CreatedBy  string  `json:"created_by"`
	ApprovedBy *string `json:"approved_by"`
	ItemCount  int     `json:"item_count"`
	CreatedAt  string  `json:"created_at"`
}

type CompositionListResponse struct {
	Data  []CompositionListItem `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

// CompositionFilter narrows List results.
type CompositionFilter struct {
	Status string `form:"status"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

// UpdateStatusRequest moves a composition along draft → validated → approved.
// executed is reachable only through assembly.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft validated approved"`
	Actor  string `json:"actor" validate:"required"`
}

// AssembleRequest executes an approved composition into a single location.
type AssembleRequest struct {
	TargetLocation string `json:"target_location" validate:"required"`
	Actor          string `json:"actor" validate:"required"`
}

// DisassembleTarget returns part of an executed composition to stock.
type DisassembleTarget struct {
	ProductID string          `json:"product_id" validate:"required,uuid4"`
	Quantity  decimal.Decimal `json:"quantity" validate:"required"`
}

type DisassembleRequest struct {
	Targets        []DisassembleTarget `json:"targets" validate:"required,min=1,dive"`
	TargetLocation string              `json:"target_location" validate:"required"`
	Actor          string              `json:"actor" validate:"required"`
}
