package service

import (
	"context"
	"sort"

	"github.com/Joaovenera/wms-sub005/internal/apperror"
	"github.com/Joaovenera/wms-sub005/internal/dto"
	"github.com/Joaovenera/wms-sub005/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PickingService builds a picking plan for a requested base-unit quantity.
// The selection is greedy largest-first over whole packages: it minimizes the
// number of distinct package types touched, not total package count — an
// accepted approximation, not guaranteed globally optimal.
type PickingService interface {
	OptimizePicking(ctx context.Context, req dto.OptimizePickingRequest) (*dto.PickingPlanResponse, error)
}

type pickingService struct {
	packagingRepo repository.PackagingRepository
	stock         StockService
}

func NewPickingService(packagingRepo repository.PackagingRepository, stock StockService) PickingService {
	return &pickingService{packagingRepo: packagingRepo, stock: stock}
}

func (s *pickingService) OptimizePicking(ctx context.Context, req dto.OptimizePickingRequest) (*dto.PickingPlanResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, apperror.NotFound("product", req.ProductID)
	}
	if req.RequestedBaseUnits.IsNegative() {
		return nil, apperror.Validation("", "requested base units must not be negative").
			WithDetail("requested_base_units", req.RequestedBaseUnits.String())
	}

	resp := &dto.PickingPlanResponse{
		ProductID:             req.ProductID,
		Plan:                  []dto.PickingPlanLine{},
		TotalPlannedBaseUnits: decimal.Zero,
		RemainingBaseUnits:    req.RequestedBaseUnits,
		CanFulfill:            true,
	}
	// Nothing requested: empty plan, trivially fulfillable.
	if req.RequestedBaseUnits.IsZero() {
		resp.RemainingBaseUnits = decimal.Zero
		return resp, nil
	}

	types, err := s.packagingRepo.ListActiveByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.stock.GetBreakdown(ctx, productID)
	if err != nil {
		return nil, err
	}
	availableByType := make(map[string]int64, len(breakdown.Entries))
	for _, e := range breakdown.Entries {
		availableByType[e.PackagingTypeID] = e.AvailablePackages
	}

	// Largest packages first.
	sort.Slice(types, func(i, j int) bool {
		return types[i].BaseUnitQuantity.GreaterThan(types[j].BaseUnitQuantity)
	})

	remaining := req.RequestedBaseUnits
	for i := range types {
		t := &types[i]
		if remaining.IsZero() {
			break
		}
		packagesAvailable := availableByType[t.ID.String()]
		packagesNeeded := remaining.Div(t.BaseUnitQuantity).Floor().IntPart()
		take := packagesNeeded
		if packagesAvailable < take {
			take = packagesAvailable
		}
		if take <= 0 {
			continue
		}
		baseUnits := t.BaseUnitQuantity.Mul(decimal.NewFromInt(take))
		resp.Plan = append(resp.Plan, dto.PickingPlanLine{
			PackagingTypeID:  t.ID.String(),
			Name:             t.Name,
			BaseUnitQuantity: t.BaseUnitQuantity,
			Packages:         take,
			BaseUnits:        baseUnits,
		})
		remaining = remaining.Sub(baseUnits)
	}

	resp.RemainingBaseUnits = remaining
	resp.TotalPlannedBaseUnits = req.RequestedBaseUnits.Sub(remaining)
	resp.CanFulfill = remaining.IsZero()
	return resp, nil
}
