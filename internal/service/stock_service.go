package service

import (
	"context"

	"github.com/Joaovenera/wms-sub005/internal/dto"
	"github.com/Joaovenera/wms-sub005/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockService aggregates raw stock records, which are always recorded in
// base units. The breakdown is strictly per recorded packaging type: stock
// received as boxes is never reinterpreted as pallets even when the numeric
// total would allow it.
type StockService interface {
	GetConsolidated(ctx context.Context, productID uuid.UUID) (*dto.ConsolidatedStockResponse, error)
	GetBreakdown(ctx context.Context, productID uuid.UUID) (*dto.StockBreakdownResponse, error)
}

type stockService struct {
	stockRepo     repository.StockRepository
	packagingRepo repository.PackagingRepository
}

func NewStockService(stockRepo repository.StockRepository, packagingRepo repository.PackagingRepository) StockService {
	return &stockService{stockRepo: stockRepo, packagingRepo: packagingRepo}
}

// GetConsolidated sums all active stock of a product in one pass.
func (s *stockService) GetConsolidated(ctx context.Context, productID uuid.UUID) (*dto.ConsolidatedStockResponse, error) {
	records, err := s.stockRepo.ListActiveByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	locations := make(map[string]struct{})
	for i := range records {
		total = total.Add(records[i].QuantityBaseUnits)
		locations[records[i].LocationCode] = struct{}{}
	}

	return &dto.ConsolidatedStockResponse{
		ProductID:      productID.String(),
		TotalBaseUnits: total,
		LocationCount:  len(locations),
		RecordCount:    len(records),
	}, nil
}

// GetBreakdown reports, for every active packaging type, how many whole
// packages the stock recorded under that type amounts to, plus the base-unit
// remainder that doesn't fill a package.
func (s *stockService) GetBreakdown(ctx context.Context, productID uuid.UUID) (*dto.StockBreakdownResponse, error) {
	types, err := s.packagingRepo.ListActiveByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	records, err := s.stockRepo.ListActiveByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	sumByType := make(map[uuid.UUID]decimal.Decimal, len(types))
	for i := range records {
		sumByType[records[i].PackagingTypeID] = sumByType[records[i].PackagingTypeID].Add(records[i].QuantityBaseUnits)
	}

	resp := &dto.StockBreakdownResponse{
		ProductID: productID.String(),
		Entries:   make([]dto.StockBreakdownEntry, 0, len(types)),
	}
	for i := range types {
		t := &types[i]
		recorded := sumByType[t.ID]
		packages := recorded.Div(t.BaseUnitQuantity).Floor()
		remaining := recorded.Mod(t.BaseUnitQuantity)
		resp.Entries = append(resp.Entries, dto.StockBreakdownEntry{
			PackagingTypeID:    t.ID.String(),
			Name:               t.Name,
			BaseUnitQuantity:   t.BaseUnitQuantity,
			RecordedBaseUnits:  recorded,
			AvailablePackages:  packages.IntPart(),
			RemainingBaseUnits: remaining,
		})
	}
	return resp, nil
}
