package service

import (
	"context"

	"github.com/Joaovenera/wms-sub005/internal/apperror"
	"github.com/Joaovenera/wms-sub005/internal/dto"
	"github.com/Joaovenera/wms-sub005/internal/model"
	"github.com/Joaovenera/wms-sub005/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var decimalOne = decimal.NewFromInt(1)

// ConversionService converts quantities between packaging levels of the same
// product. All conversions pivot through the base unit:
//
//	toQty = fromQty * from.baseUnitQuantity / to.baseUnitQuantity
//
// The formula lives in one place (convertBetween); ToBaseUnits/FromBaseUnits
// are single-hop specializations of the same arithmetic. Results are real
// decimals with an IsExact flag — rounding policy belongs to the caller.
type ConversionService interface {
	Convert(ctx context.Context, req dto.ConvertRequest) (*dto.ConvertResponse, error)
	ToBaseUnits(ctx context.Context, packagingTypeID uuid.UUID, quantity decimal.Decimal) (decimal.Decimal, error)
	FromBaseUnits(ctx context.Context, packagingTypeID uuid.UUID, baseUnits decimal.Decimal) (*dto.ConvertResponse, error)

	// BaseUnitsOf is the pure single-hop conversion for an already-loaded
	// type. The composition lifecycle uses it to recompute requirements at
	// assembly time without a second fetch.
	BaseUnitsOf(pt *model.PackagingType, quantity decimal.Decimal) decimal.Decimal
}

type conversionService struct {
	repo repository.PackagingRepository
}

func NewConversionService(repo repository.PackagingRepository) ConversionService {
	return &conversionService{repo: repo}
}

func (s *conversionService) Convert(ctx context.Context, req dto.ConvertRequest) (*dto.ConvertResponse, error) {
	fromID, err := uuid.Parse(req.FromPackagingType)
	if err != nil {
		return nil, apperror.NotFound("packaging type", req.FromPackagingType)
	}
	toID, err := uuid.Parse(req.ToPackagingType)
	if err != nil {
		return nil, apperror.NotFound("packaging type", req.ToPackagingType)
	}

	from, err := s.repo.FindByID(ctx, fromID)
	if err != nil {
		return nil, apperror.NotFound("packaging type", req.FromPackagingType).Wrap(err)
	}
	to, err := s.repo.FindByID(ctx, toID)
	if err != nil {
		return nil, apperror.NotFound("packaging type", req.ToPackagingType).Wrap(err)
	}

	return convertBetween(from, to, req.Quantity)
}

func (s *conversionService) ToBaseUnits(ctx context.Context, packagingTypeID uuid.UUID, quantity decimal.Decimal) (decimal.Decimal, error) {
	pt, err := s.repo.FindByID(ctx, packagingTypeID)
	if err != nil {
		return decimal.Zero, apperror.NotFound("packaging type", packagingTypeID.String()).Wrap(err)
	}
	return s.BaseUnitsOf(pt, quantity), nil
}

func (s *conversionService) FromBaseUnits(ctx context.Context, packagingTypeID uuid.UUID, baseUnits decimal.Decimal) (*dto.ConvertResponse, error) {
	pt, err := s.repo.FindByID(ctx, packagingTypeID)
	if err != nil {
		return nil, apperror.NotFound("packaging type", packagingTypeID.String()).Wrap(err)
	}
	// Same arithmetic as convertBetween with from.baseUnitQuantity = 1.
	result := baseUnits.Div(pt.BaseUnitQuantity)
	return &dto.ConvertResponse{
		ConvertedQuantity: result,
		BaseUnits:         baseUnits,
		IsExact:           baseUnits.Mod(pt.BaseUnitQuantity).IsZero(),
	}, nil
}

func (s *conversionService) BaseUnitsOf(pt *model.PackagingType, quantity decimal.Decimal) decimal.Decimal {
	return quantity.Mul(pt.BaseUnitQuantity)
}

// convertBetween is the one shared conversion formula.
func convertBetween(from, to *model.PackagingType, quantity decimal.Decimal) (*dto.ConvertResponse, error) {
	if from.ProductID != to.ProductID {
		return nil, apperror.Unsupported(apperror.ViolationCrossProductConversion,
			"packaging types belong to different products").
			WithDetail("from_product_id", from.ProductID.String()).
			WithDetail("to_product_id", to.ProductID.String())
	}

	baseUnits := quantity.Mul(from.BaseUnitQuantity)
	result := baseUnits.Div(to.BaseUnitQuantity)

	return &dto.ConvertResponse{
		ConvertedQuantity: result,
		BaseUnits:         baseUnits,
		IsExact:           baseUnits.Mod(to.BaseUnitQuantity).IsZero(),
	}, nil
}
