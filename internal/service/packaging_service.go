package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Joaovenera/wms-sub005/internal/apperror"
	"github.com/Joaovenera/wms-sub005/internal/dto"
	"github.com/Joaovenera/wms-sub005/internal/model"
	"github.com/Joaovenera/wms-sub005/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// PackagingService manages per-product packaging hierarchies. Every write
// runs the full hierarchy validation against the product's active types before
// touching the database; deletes are guarded by an explicit live-stock
// reference query rather than a storage constraint, so the rule stays visible
// and independently testable.
type PackagingService interface {
	Create(ctx context.Context, req dto.CreatePackagingTypeRequest) (*dto.PackagingTypeResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdatePackagingTypeRequest) (*dto.PackagingTypeResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.PackagingTypeResponse, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) (*dto.PackagingTypeListResponse, error)
	FindByBarcode(ctx context.Context, barcode string) (*dto.PackagingTypeResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type packagingService struct {
	repo        repository.PackagingRepository
	productRepo repository.ProductRepository
	stockRepo   repository.StockRepository
	validator   *HierarchyValidator
	rdb         *redis.Client
	cacheTTL    time.Duration
}

func NewPackagingService(
	repo repository.PackagingRepository,
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
	validator *HierarchyValidator,
	rdb *redis.Client,
	cacheTTL time.Duration,
) PackagingService {
	return &packagingService{
		repo:        repo,
		productRepo: productRepo,
		stockRepo:   stockRepo,
		validator:   validator,
		rdb:         rdb,
		cacheTTL:    cacheTTL,
	}
}

func (s *packagingService) Create(ctx context.Context, req dto.CreatePackagingTypeRequest) (*dto.PackagingTypeResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, apperror.NotFound("product", req.ProductID)
	}
	if _, err := s.productRepo.FindActiveByID(ctx, productID); err != nil {
		return nil, apperror.NotFound("product", req.ProductID).Wrap(err)
	}

	candidate := &model.PackagingType{
		ID:               uuid.New(),
		ProductID:        productID,
		Name:             req.Name,
		Barcode:          req.Barcode,
		BaseUnitQuantity: req.BaseUnitQuantity,
		IsBaseUnit:       req.IsBaseUnit,
		Level:            req.Level,
		LengthCm:         req.LengthCm,
		WidthCm:          req.WidthCm,
		HeightCm:         req.HeightCm,
		WeightKg:         req.WeightKg,
		Active:           true,
	}
	if req.ParentPackagingID != nil {
		parentID, err := uuid.Parse(*req.ParentPackagingID)
		if err != nil {
			return nil, apperror.Validation(apperror.ViolationParentNotFound, "parent packaging id is not a valid uuid")
		}
		candidate.ParentPackagingID = &parentID
	}

	if err := s.validateAgainstHierarchy(ctx, candidate); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, candidate); err != nil {
		return nil, err
	}
	s.invalidateBarcodeCache(ctx, candidate.Barcode)
	return packagingToResponse(candidate), nil
}

func (s *packagingService) Update(ctx context.Context, id uuid.UUID, req dto.UpdatePackagingTypeRequest) (*dto.PackagingTypeResponse, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("packaging type", id.String()).Wrap(err)
	}

	oldBarcode := existing.Barcode

	existing.Name = req.Name
	existing.Barcode = req.Barcode
	existing.BaseUnitQuantity = req.BaseUnitQuantity
	existing.IsBaseUnit = req.IsBaseUnit
	existing.Level = req.Level
	existing.LengthCm = req.LengthCm
	existing.WidthCm = req.WidthCm
	existing.HeightCm = req.HeightCm
	existing.WeightKg = req.WeightKg
	existing.ParentPackagingID = nil
	if req.ParentPackagingID != nil {
		parentID, err := uuid.Parse(*req.ParentPackagingID)
		if err != nil {
			return nil, apperror.Validation(apperror.ViolationParentNotFound, "parent packaging id is not a valid uuid")
		}
		existing.ParentPackagingID = &parentID
	}

	if err := s.validateAgainstHierarchy(ctx, existing); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	s.invalidateBarcodeCache(ctx, oldBarcode)
	s.invalidateBarcodeCache(ctx, existing.Barcode)
	return packagingToResponse(existing), nil
}

// validateAgainstHierarchy gathers the validator's inputs and runs it.
func (s *packagingService) validateAgainstHierarchy(ctx context.Context, candidate *model.PackagingType) error {
	siblings, err := s.repo.ListActiveByProduct(ctx, candidate.ProductID)
	if err != nil {
		return err
	}
	barcodeInUse := false
	if candidate.Barcode != nil {
		barcodeInUse, err = s.repo.BarcodeInUse(ctx, *candidate.Barcode, candidate.ID)
		if err != nil {
			return err
		}
	}
	return s.validator.Validate(candidate, siblings, barcodeInUse)
}

func (s *packagingService) Get(ctx context.Context, id uuid.UUID) (*dto.PackagingTypeResponse, error) {
	pt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("packaging type", id.String()).Wrap(err)
	}
	return packagingToResponse(pt), nil
}

func (s *packagingService) ListByProduct(ctx context.Context, productID uuid.UUID) (*dto.PackagingTypeListResponse, error) {
	types, err := s.repo.ListActiveByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	resp := &dto.PackagingTypeListResponse{
		Data:  make([]dto.PackagingTypeResponse, 0, len(types)),
		Total: int64(len(types)),
	}
	for i := range types {
		resp.Data = append(resp.Data, *packagingToResponse(&types[i]))
	}
	return resp, nil
}

// FindByBarcode serves scanner lookups. Results are cached in redis with a
// short TTL and invalidated on every packaging write.
func (s *packagingService) FindByBarcode(ctx context.Context, barcode string) (*dto.PackagingTypeResponse, error) {
	cacheKey := barcodeCacheKey(barcode)
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var resp dto.PackagingTypeResponse
			if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
				return &resp, nil
			}
		}
	}

	pt, err := s.repo.FindActiveByBarcode(ctx, barcode)
	if err != nil {
		return nil, apperror.NotFound("packaging type", barcode).Wrap(err)
	}
	resp := packagingToResponse(pt)

	if s.rdb != nil {
		if b, jsonErr := json.Marshal(resp); jsonErr == nil {
			_ = s.rdb.Set(ctx, cacheKey, b, s.cacheTTL).Err()
		}
	}
	return resp, nil
}

// Delete soft-deletes a packaging type. Refused while live stock still
// references the type (explicit is-referenced query, not a DB cascade).
func (s *packagingService) Delete(ctx context.Context, id uuid.UUID) error {
	pt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return apperror.NotFound("packaging type", id.String()).Wrap(err)
	}
	if !pt.Active {
		return apperror.NotFound("packaging type", id.String())
	}

	inUse, err := s.stockRepo.HasActiveStockForPackaging(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return apperror.Conflict("packaging type is referenced by live stock and cannot be deleted").
			WithDetail("packaging_type_id", id.String())
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidateBarcodeCache(ctx, pt.Barcode)
	return nil
}

func (s *packagingService) invalidateBarcodeCache(ctx context.Context, barcode *string) {
	if s.rdb == nil || barcode == nil {
		return
	}
	_ = s.rdb.Del(ctx, barcodeCacheKey(*barcode)).Err()
}

func barcodeCacheKey(barcode string) string { return "packaging:barcode:" + barcode }

func packagingToResponse(p *model.PackagingType) *dto.PackagingTypeResponse {
	var parentID *string
	if p.ParentPackagingID != nil {
		s := p.ParentPackagingID.String()
		parentID = &s
	}
	return &dto.PackagingTypeResponse{
		ID:                p.ID.String(),
		ProductID:         p.ProductID.String(),
		Name:              p.Name,
		Barcode:           p.Barcode,
		BaseUnitQuantity:  p.BaseUnitQuantity,
		IsBaseUnit:        p.IsBaseUnit,
		Level:             p.Level,
		ParentPackagingID: parentID,
		LengthCm:          p.LengthCm,
		WidthCm:           p.WidthCm,
		HeightCm:          p.HeightCm,
		WeightKg:          p.WeightKg,
		Active:            p.Active,
		CreatedAt:         p.CreatedAt.Format(time.RFC3339),
	}
}
