package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Joaovenera/wms-sub005/internal/apperror"
	"github.com/Joaovenera/wms-sub005/internal/dto"
	"github.com/Joaovenera/wms-sub005/internal/model"
	"github.com/Joaovenera/wms-sub005/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Advisory thresholds.
var (
	efficiencyFloor  = decimal.NewFromFloat(0.7) // below: recommend adding products
	weightUtilFloor  = decimal.NewFromFloat(0.5) // below: recommend heavier load
	heightUtilCeil   = decimal.NewFromFloat(0.9) // above: warn
	maxAdvisedLayers = 3                          // more layers: warn
)

var cm3PerM3 = decimal.NewFromInt(1_000_000)

// CompositionCalculator computes whether a set of products fits on a pallet
// and what the arrangement looks like. The layout is a deterministic
// shelf-packing heuristic — reproducible by design, not claimed optimal: items
// go left-to-right along the pallet width, wrap to a new row when the width
// is exceeded, and to a new layer when the accumulated row length exceeds the
// pallet length. No rotation, no reordering.
type CompositionCalculator interface {
	Calculate(ctx context.Context, req dto.CalculateCompositionRequest) (*dto.CompositionResult, error)
	// ValidateConstraints re-checks a result's utilization ratios and returns
	// the error-level violations (any ratio above 1).
	ValidateConstraints(result *dto.CompositionResult) []string
}

type compositionCalculator struct {
	productRepo   repository.ProductRepository
	packagingRepo repository.PackagingRepository
	palletRepo    repository.PalletRepository
	// maxStackHeightCm is the operational ceiling used when no height
	// constraint is given. Pallets carry no usable-stack-height field.
	maxStackHeightCm decimal.Decimal
}

func NewCompositionCalculator(
	productRepo repository.ProductRepository,
	packagingRepo repository.PackagingRepository,
	palletRepo repository.PalletRepository,
	maxStackHeightCm int,
) CompositionCalculator {
	return &compositionCalculator{
		productRepo:      productRepo,
		packagingRepo:    packagingRepo,
		palletRepo:       palletRepo,
		maxStackHeightCm: decimal.NewFromInt(int64(maxStackHeightCm)),
	}
}

// resolvedItem is one product line with its packaging physically resolved.
type resolvedItem struct {
	productID       uuid.UUID
	packagingTypeID uuid.UUID
	quantity        int
	widthCm         decimal.Decimal
	lengthCm        decimal.Decimal
	heightCm        decimal.Decimal
	weightKg        decimal.Decimal
}

func (c *compositionCalculator) Calculate(ctx context.Context, req dto.CalculateCompositionRequest) (*dto.CompositionResult, error) {
	if len(req.Products) == 0 {
		return nil, apperror.Validation("", "composition requires at least one product")
	}

	// 1. Resolve each product+packaging to weight and footprint.
	resolved, err := c.resolveItems(ctx, req.Products)
	if err != nil {
		return nil, err
	}

	totalWeight := decimal.Zero
	totalVolume := decimal.Zero
	maxItemHeight := decimal.Zero
	for _, it := range resolved {
		qty := decimal.NewFromInt(int64(it.quantity))
		totalWeight = totalWeight.Add(it.weightKg.Mul(qty))
		unitVolume := it.lengthCm.Mul(it.widthCm).Mul(it.heightCm).Div(cm3PerM3)
		totalVolume = totalVolume.Add(unitVolume.Mul(qty))
		if it.heightCm.GreaterThan(maxItemHeight) {
			maxItemHeight = it.heightCm
		}
	}

	// 2. Resolve the pallet.
	pallet, err := c.resolvePallet(ctx, req.PalletID, totalWeight)
	if err != nil {
		return nil, err
	}

	// 3. Effective limits after constraint overrides.
	heightLimit := c.maxStackHeightCm
	weightLimit := pallet.MaxWeightKg
	if req.Constraints != nil && req.Constraints.MaxHeightCm != nil {
		heightLimit = *req.Constraints.MaxHeightCm
	}
	if req.Constraints != nil && req.Constraints.MaxWeightKg != nil {
		weightLimit = *req.Constraints.MaxWeightKg
	}
	volumeLimit := pallet.WidthCm.Mul(pallet.LengthCm).Mul(heightLimit).Div(cm3PerM3)
	if req.Constraints != nil && req.Constraints.MaxVolumeM3 != nil {
		volumeLimit = *req.Constraints.MaxVolumeM3
	}
	if weightLimit.Sign() <= 0 || volumeLimit.Sign() <= 0 || heightLimit.Sign() <= 0 {
		return nil, apperror.Validation("", "constraint limits must be positive")
	}

	// 4. Utilization ratios and efficiency.
	weightUtil := totalWeight.Div(weightLimit)
	volumeUtil := totalVolume.Div(volumeLimit)
	heightUtil := maxItemHeight.Div(heightLimit)

	efficiency := weightUtil
	if volumeUtil.LessThan(efficiency) {
		efficiency = volumeUtil
	}
	if efficiency.GreaterThan(decimalOne) {
		efficiency = decimalOne
	}

	// 5. Deterministic shelf-packing layout.
	placements, layers, stackHeight, err := shelfPack(resolved, pallet)
	if err != nil {
		return nil, err
	}

	result := &dto.CompositionResult{
		PalletID:        pallet.ID.String(),
		TotalWeightKg:   totalWeightRounded(totalWeight),
		TotalVolumeM3:   totalVolume.Round(6),
		MaxItemHeightCm: maxItemHeight,
		StackHeightCm:   stackHeight,
		Limits: dto.CompositionLimits{
			WeightKg: weightLimit,
			VolumeM3: volumeLimit.Round(6),
			HeightCm: heightLimit,
		},
		Utilization: dto.UtilizationRatios{
			Weight: weightUtil.Round(4),
			Volume: volumeUtil.Round(4),
			Height: heightUtil.Round(4),
		},
		Efficiency:      efficiency.Round(4),
		LayerCount:      len(layers),
		Layers:          layers,
		Placements:      placements,
		Violations:      []string{},
		Warnings:        []string{},
		Recommendations: []string{},
		CalculatedAt:    time.Now().UTC().Format(time.RFC3339),
	}

	// 6. Error-level violations: any ratio above 1.
	result.Violations = c.ValidateConstraints(result)

	// 7. Advisories.
	if result.Efficiency.LessThan(efficiencyFloor) {
		result.Recommendations = append(result.Recommendations,
			fmt.Sprintf("pallet efficiency is %s; consider adding products to better use the limiting resource", result.Efficiency))
	}
	if result.Utilization.Weight.LessThan(weightUtilFloor) {
		result.Recommendations = append(result.Recommendations,
			fmt.Sprintf("weight capacity utilization is %s; the pallet can carry substantially more weight", result.Utilization.Weight))
	}
	if result.LayerCount > maxAdvisedLayers {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("layout stacks %d layers; loads above %d layers need extra securing", result.LayerCount, maxAdvisedLayers))
	}
	if result.Utilization.Height.GreaterThan(heightUtilCeil) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("height utilization is %s; close to the stacking ceiling", result.Utilization.Height))
	}

	return result, nil
}

func (c *compositionCalculator) ValidateConstraints(result *dto.CompositionResult) []string {
	violations := []string{}
	if result.Utilization.Weight.GreaterThan(decimalOne) {
		violations = append(violations,
			fmt.Sprintf("total weight %s kg exceeds the %s kg limit", result.TotalWeightKg, result.Limits.WeightKg))
	}
	if result.Utilization.Volume.GreaterThan(decimalOne) {
		violations = append(violations,
			fmt.Sprintf("total volume %s m3 exceeds the %s m3 limit", result.TotalVolumeM3, result.Limits.VolumeM3))
	}
	if result.Utilization.Height.GreaterThan(decimalOne) {
		violations = append(violations,
			fmt.Sprintf("item height %s cm exceeds the %s cm ceiling", result.MaxItemHeightCm, result.Limits.HeightCm))
	}
	return violations
}

func (c *compositionCalculator) resolveItems(ctx context.Context, inputs []dto.CompositionProductInput) ([]resolvedItem, error) {
	resolved := make([]resolvedItem, 0, len(inputs))
	for _, in := range inputs {
		productID, err := uuid.Parse(in.ProductID)
		if err != nil {
			return nil, apperror.NotFound("product", in.ProductID)
		}
		packagingID, err := uuid.Parse(in.PackagingTypeID)
		if err != nil {
			return nil, apperror.NotFound("packaging type", in.PackagingTypeID)
		}
		if _, err := c.productRepo.FindActiveByID(ctx, productID); err != nil {
			return nil, apperror.NotFound("product", in.ProductID).Wrap(err)
		}
		pt, err := c.packagingRepo.FindByID(ctx, packagingID)
		if err != nil {
			return nil, apperror.NotFound("packaging type", in.PackagingTypeID).Wrap(err)
		}
		if pt.ProductID != productID {
			return nil, apperror.Validation("", "packaging type does not belong to the product").
				WithDetail("product_id", in.ProductID).
				WithDetail("packaging_type_id", in.PackagingTypeID)
		}
		if !pt.HasDimensions() {
			return nil, apperror.Validation("", "packaging type carries no physical dimensions").
				WithDetail("packaging_type_id", in.PackagingTypeID)
		}
		resolved = append(resolved, resolvedItem{
			productID:       productID,
			packagingTypeID: packagingID,
			quantity:        in.Quantity,
			widthCm:         *pt.WidthCm,
			lengthCm:        *pt.LengthCm,
			heightCm:        *pt.HeightCm,
			weightKg:        *pt.WeightKg,
		})
	}
	return resolved, nil
}

// resolvePallet loads the requested pallet, or auto-selects the smallest
// max-weight pallet that still covers the aggregate weight.
func (c *compositionCalculator) resolvePallet(ctx context.Context, palletID *string, totalWeight decimal.Decimal) (*model.Pallet, error) {
	if palletID != nil {
		id, err := uuid.Parse(*palletID)
		if err != nil {
			return nil, apperror.NotFound("pallet", *palletID)
		}
		pallet, err := c.palletRepo.FindByID(ctx, id)
		if err != nil {
			return nil, apperror.NotFound("pallet", *palletID).Wrap(err)
		}
		return pallet, nil
	}

	pallets, err := c.palletRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	for i := range pallets {
		if pallets[i].MaxWeightKg.GreaterThanOrEqual(totalWeight) {
			return &pallets[i], nil
		}
	}
	return nil, apperror.NoSuitablePallet(totalWeight.String())
}

// shelfPack places every package of every item, in input order, onto shelves.
// Returns the placements, the per-layer summaries, and the total stacked
// height (sum of each layer's tallest item).
func shelfPack(items []resolvedItem, pallet *model.Pallet) ([]dto.Placement, []dto.LayerSummary, decimal.Decimal, error) {
	placements := []dto.Placement{}
	layers := []dto.LayerSummary{}

	layer := 1
	cursorX := decimal.Zero
	cursorY := decimal.Zero
	rowDepth := decimal.Zero    // longest item in the current row
	layerHeight := decimal.Zero // tallest item in the current layer
	layerItems := 0
	stackHeight := decimal.Zero

	closeLayer := func() {
		layers = append(layers, dto.LayerSummary{Layer: layer, HeightCm: layerHeight, Items: layerItems})
		stackHeight = stackHeight.Add(layerHeight)
	}

	for _, it := range items {
		// A package that doesn't fit the deck at all can never be placed.
		if it.widthCm.GreaterThan(pallet.WidthCm) || it.lengthCm.GreaterThan(pallet.LengthCm) {
			return nil, nil, decimal.Zero, apperror.Validation(apperror.ViolationDimensionOverflow,
				"package footprint exceeds the pallet deck").
				WithDetail("packaging_type_id", it.packagingTypeID.String()).
				WithDetail("pallet_width_cm", pallet.WidthCm.String()).
				WithDetail("pallet_length_cm", pallet.LengthCm.String())
		}

		for n := 0; n < it.quantity; n++ {
			// Wrap to a new row when the width is exceeded.
			if cursorX.Add(it.widthCm).GreaterThan(pallet.WidthCm) {
				cursorY = cursorY.Add(rowDepth)
				cursorX = decimal.Zero
				rowDepth = decimal.Zero
			}
			// Wrap to a new layer when the accumulated length is exceeded.
			if cursorY.Add(it.lengthCm).GreaterThan(pallet.LengthCm) {
				closeLayer()
				layer++
				cursorX = decimal.Zero
				cursorY = decimal.Zero
				rowDepth = decimal.Zero
				layerHeight = decimal.Zero
				layerItems = 0
			}

			placements = append(placements, dto.Placement{
				ProductID:       it.productID.String(),
				PackagingTypeID: it.packagingTypeID.String(),
				Layer:           layer,
				XCm:             cursorX,
				YCm:             cursorY,
				WidthCm:         it.widthCm,
				LengthCm:        it.lengthCm,
				HeightCm:        it.heightCm,
			})
			layerItems++

			cursorX = cursorX.Add(it.widthCm)
			if it.lengthCm.GreaterThan(rowDepth) {
				rowDepth = it.lengthCm
			}
			if it.heightCm.GreaterThan(layerHeight) {
				layerHeight = it.heightCm
			}
		}
	}
	if layerItems > 0 {
		closeLayer()
	}

	return placements, layers, stackHeight, nil
}

func totalWeightRounded(w decimal.Decimal) decimal.Decimal { return w.Round(3) }
