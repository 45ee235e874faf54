package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Joaovenera/wms-sub005/internal/apperror"
	"github.com/Joaovenera/wms-sub005/internal/dto"
	"github.com/Joaovenera/wms-sub005/internal/model"
	"github.com/Joaovenera/wms-sub005/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReportQueue enqueues asynchronous report jobs. Implemented by the worker
// dispatcher; kept as an interface here so the service never imports the
// worker package.
type ReportQueue interface {
	EnqueueCompositionReport(ctx context.Context, compositionID string) error
}

// CompositionService owns the saved-composition lifecycle:
//
//	draft → validated → approved → executed
//
// with executed → approved reachable only through disassembly. Saved reads
// always return the calculation snapshot persisted at save time; stock is
// rechecked live only inside the assembly transaction.
type CompositionService interface {
	Save(ctx context.Context, req dto.SaveCompositionRequest) (*dto.CompositionResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.CompositionResponse, error)
	List(ctx context.Context, filter dto.CompositionFilter) (*dto.CompositionListResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req dto.UpdateStatusRequest) (*dto.CompositionResponse, error)
	Assemble(ctx context.Context, id uuid.UUID, req dto.AssembleRequest) (*dto.CompositionResponse, error)
	Disassemble(ctx context.Context, id uuid.UUID, req dto.DisassembleRequest) (*dto.CompositionResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error

	GenerateReport(ctx context.Context, id uuid.UUID) error
	ReportPath(id uuid.UUID) string
}

type compositionService struct {
	repo       repository.CompositionRepository
	stockRepo  repository.StockRepository
	calculator CompositionCalculator
	reports    ReportQueue
	pdfDir     string
}

func NewCompositionService(
	repo repository.CompositionRepository,
	stockRepo repository.StockRepository,
	calculator CompositionCalculator,
	reports ReportQueue,
	pdfDir string,
) CompositionService {
	return &compositionService{
		repo:       repo,
		stockRepo:  stockRepo,
		calculator: calculator,
		reports:    reports,
		pdfDir:     pdfDir,
	}
}

// Save recalculates and persists the composition as a draft. The calculation
// re-runs here so the stored snapshot can never drift from the stored inputs.
func (s *compositionService) Save(ctx context.Context, req dto.SaveCompositionRequest) (*dto.CompositionResponse, error) {
	result, err := s.calculator.Calculate(ctx, req.Calculation)
	if err != nil {
		return nil, err
	}

	palletID, err := uuid.Parse(result.PalletID)
	if err != nil {
		return nil, apperror.NotFound("pallet", result.PalletID)
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal composition result: %w", err)
	}
	var constraintsJSON []byte
	if req.Calculation.Constraints != nil {
		constraintsJSON, err = json.Marshal(req.Calculation.Constraints)
		if err != nil {
			return nil, fmt.Errorf("marshal composition constraints: %w", err)
		}
	}

	comp := &model.Composition{
		ID:          uuid.New(),
		Name:        req.Name,
		Status:      model.StatusDraft,
		PalletID:    palletID,
		Constraints: constraintsJSON,
		Result:      resultJSON,
		CreatedBy:   req.CreatedBy,
		Active:      true,
	}
	for i, in := range req.Calculation.Products {
		productID, _ := uuid.Parse(in.ProductID)
		packagingID, _ := uuid.Parse(in.PackagingTypeID)
		comp.Items = append(comp.Items, model.CompositionItem{
			ID:              uuid.New(),
			CompositionID:   comp.ID,
			ProductID:       productID,
			PackagingTypeID: packagingID,
			Quantity:        decimal.NewFromInt(int64(in.Quantity)),
			Layer:           firstLayerOf(result.Placements, in.PackagingTypeID),
			SortOrder:       i,
			Active:          true,
		})
	}

	if err := s.repo.Create(ctx, comp); err != nil {
		return nil, err
	}

	log.Info().
		Str("composition_id", comp.ID.String()).
		Str("pallet_id", result.PalletID).
		Int("items", len(comp.Items)).
		Msg("composition saved")

	return s.toResponse(comp)
}

func (s *compositionService) Get(ctx context.Context, id uuid.UUID) (*dto.CompositionResponse, error) {
	comp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("composition", id.String()).Wrap(err)
	}
	return s.toResponse(comp)
}

func (s *compositionService) List(ctx context.Context, filter dto.CompositionFilter) (*dto.CompositionListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	compositions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := &dto.CompositionListResponse{
		Data:  make([]dto.CompositionListItem, 0, len(compositions)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range compositions {
		c := &compositions[i]
		resp.Data = append(resp.Data, dto.CompositionListItem{
			ID:         c.ID.String(),
			Name:       c.Name,
			Status:     c.Status,
			PalletID:   c.PalletID.String(),
			CreatedBy:  c.CreatedBy,
			ApprovedBy: c.ApprovedBy,
			ItemCount:  len(c.Items),
			CreatedAt:  c.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp, nil
}

// UpdateStatus walks the composition forward. executed is not a permitted
// target here (only assembly reaches it), and an executed composition's
// status is immutable outside disassembly.
func (s *compositionService) UpdateStatus(ctx context.Context, id uuid.UUID, req dto.UpdateStatusRequest) (*dto.CompositionResponse, error) {
	comp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("composition", id.String()).Wrap(err)
	}
	if comp.Status == model.StatusExecuted {
		return nil, apperror.BusinessRule(apperror.ViolationInvalidStatus,
			"an executed composition can only change status through disassembly").
			WithDetail("composition_id", id.String())
	}

	var approvedBy *string
	var approvedAt *time.Time
	if req.Status == model.StatusApproved {
		now := time.Now().UTC()
		approvedBy = &req.Actor
		approvedAt = &now
	}

	if err := s.repo.UpdateStatus(ctx, id, req.Status, approvedBy, approvedAt); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// productRequirement aggregates the base units one product needs across all
// composition items.
type productRequirement struct {
	productID uuid.UUID
	required  decimal.Decimal
	items     []*model.CompositionItem
}

// Assemble executes an approved composition. Inside one transaction it claims
// the approved→executed transition (conditional write; a concurrent assemble
// loses here and aborts before touching stock), locks the product's stock
// rows, verifies every requirement before deducting anything, then deducts
// oldest records first and journals each product's movement.
func (s *compositionService) Assemble(ctx context.Context, id uuid.UUID, req dto.AssembleRequest) (*dto.CompositionResponse, error) {
	comp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("composition", id.String()).Wrap(err)
	}
	if comp.Status != model.StatusApproved {
		return nil, apperror.BusinessRule(apperror.ViolationInvalidStatus,
			"only approved compositions can be assembled").
			WithDetail("composition_id", id.String()).
			WithDetail("status", comp.Status)
	}

	requirements, err := aggregateRequirements(comp)
	if err != nil {
		return nil, err
	}

	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		claimed, err := s.repo.TransitionStatusTx(tx, comp.ID, model.StatusApproved, model.StatusExecuted)
		if err != nil {
			return err
		}
		if !claimed {
			return apperror.BusinessRule(apperror.ViolationInvalidStatus,
				"only approved compositions can be assembled").
				WithDetail("composition_id", id.String())
		}

		type lockedProduct struct {
			req     *productRequirement
			records []model.StockRecord
			balance decimal.Decimal
		}
		locked := make([]lockedProduct, 0, len(requirements))

		// Check everything before deducting anything.
		for i := range requirements {
			r := &requirements[i]
			records, err := s.stockRepo.ListActiveByProductForUpdate(tx, r.productID)
			if err != nil {
				return err
			}
			available := decimal.Zero
			for j := range records {
				available = available.Add(records[j].QuantityBaseUnits)
			}
			if available.LessThan(r.required) {
				return apperror.InsufficientStock(r.productID.String(), r.required.String(), available.String())
			}
			locked = append(locked, lockedProduct{req: r, records: records, balance: available})
		}

		// Deduct oldest first.
		for _, lp := range locked {
			remaining := lp.req.required
			for j := range lp.records {
				if remaining.IsZero() {
					break
				}
				rec := &lp.records[j]
				if rec.QuantityBaseUnits.LessThanOrEqual(remaining) {
					remaining = remaining.Sub(rec.QuantityBaseUnits)
					if err := s.stockRepo.DeactivateTx(tx, rec.ID); err != nil {
						return err
					}
					continue
				}
				if err := s.stockRepo.UpdateQuantityTx(tx, rec.ID, rec.QuantityBaseUnits.Sub(remaining)); err != nil {
					return err
				}
				remaining = decimal.Zero
			}

			mov := &model.StockMovement{
				ID:            uuid.New(),
				ProductID:     lp.req.productID,
				Type:          model.MovementAssembly,
				BaseUnits:     lp.req.required.Neg(),
				BalanceBefore: lp.balance,
				BalanceAfter:  lp.balance.Sub(lp.req.required),
				Reason:        fmt.Sprintf("assembled to %s by %s", req.TargetLocation, req.Actor),
				CompositionID: &comp.ID,
			}
			if err := s.stockRepo.CreateMovementTx(tx, mov); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("composition_id", id.String()).
		Str("target_location", req.TargetLocation).
		Str("actor", req.Actor).
		Msg("composition assembled")

	return s.Get(ctx, id)
}

// Disassemble returns part of an executed composition to stock. Each target's
// quantity counts packages and is capped by what the composition still holds
// (item quantity minus what earlier disassemblies already returned). Returned
// stock lands as new records at the target location, journaled per product,
// and the composition drops back to approved.
func (s *compositionService) Disassemble(ctx context.Context, id uuid.UUID, req dto.DisassembleRequest) (*dto.CompositionResponse, error) {
	comp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("composition", id.String()).Wrap(err)
	}
	if comp.Status != model.StatusExecuted {
		return nil, apperror.BusinessRule(apperror.ViolationInvalidStatus,
			"only executed compositions can be disassembled").
			WithDetail("composition_id", id.String()).
			WithDetail("status", comp.Status)
	}

	// Fast-fail validation against the snapshot. The caps are re-checked
	// inside the transaction against locked rows; this pass rejects malformed
	// targets before opening one.
	itemsByProduct := groupItemsByProduct(comp.Items)
	for _, target := range req.Targets {
		productID, err := uuid.Parse(target.ProductID)
		if err != nil {
			return nil, apperror.NotFound("product", target.ProductID)
		}
		if target.Quantity.Sign() <= 0 {
			return nil, apperror.Validation("", "disassembly quantity must be positive").
				WithDetail("product_id", target.ProductID)
		}
		items, ok := itemsByProduct[productID]
		if !ok {
			return nil, apperror.NotFound("composition item", target.ProductID).
				WithDetail("composition_id", id.String())
		}
		if err := checkDisassemblyCap(target, items); err != nil {
			return nil, err
		}
	}

	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		claimed, err := s.repo.TransitionStatusTx(tx, comp.ID, model.StatusExecuted, model.StatusApproved)
		if err != nil {
			return err
		}
		if !claimed {
			return apperror.BusinessRule(apperror.ViolationInvalidStatus,
				"only executed compositions can be disassembled").
				WithDetail("composition_id", id.String())
		}

		// Locked re-read: the caps written below must be computed from
		// committed values, not the snapshot validated above.
		items, err := s.repo.ListItemsForUpdateTx(tx, comp.ID)
		if err != nil {
			return err
		}
		locked := groupItemsByProduct(items)
		for _, target := range req.Targets {
			productID, _ := uuid.Parse(target.ProductID)
			if err := checkDisassemblyCap(target, locked[productID]); err != nil {
				return err
			}
		}

		for _, target := range req.Targets {
			productID, _ := uuid.Parse(target.ProductID)

			stockRecords, err := s.stockRepo.ListActiveByProductForUpdate(tx, productID)
			if err != nil {
				return err
			}
			balance := decimal.Zero
			for i := range stockRecords {
				balance = balance.Add(stockRecords[i].QuantityBaseUnits)
			}

			remaining := target.Quantity
			returnedBase := decimal.Zero
			for _, item := range locked[productID] {
				if remaining.IsZero() {
					break
				}
				if item.PackagingType == nil {
					return fmt.Errorf("composition item %s has no packaging type loaded", item.ID)
				}
				headroom := item.Quantity.Sub(item.DisassembledQuantity)
				if headroom.Sign() <= 0 {
					continue
				}
				take := remaining
				if headroom.LessThan(take) {
					take = headroom
				}
				newDisassembled := item.DisassembledQuantity.Add(take)
				if err := s.repo.UpdateItemDisassembledTx(tx, item.ID, newDisassembled); err != nil {
					return err
				}
				item.DisassembledQuantity = newDisassembled

				baseUnits := take.Mul(item.PackagingType.BaseUnitQuantity)
				rec := &model.StockRecord{
					ID:                uuid.New(),
					ProductID:         productID,
					PackagingTypeID:   item.PackagingTypeID,
					QuantityBaseUnits: baseUnits,
					LocationCode:      req.TargetLocation,
					Active:            true,
				}
				if err := s.stockRepo.CreateTx(tx, rec); err != nil {
					return err
				}
				returnedBase = returnedBase.Add(baseUnits)
				remaining = remaining.Sub(take)
			}

			mov := &model.StockMovement{
				ID:            uuid.New(),
				ProductID:     productID,
				Type:          model.MovementDisassembly,
				BaseUnits:     returnedBase,
				BalanceBefore: balance,
				BalanceAfter:  balance.Add(returnedBase),
				Reason:        fmt.Sprintf("disassembled to %s by %s", req.TargetLocation, req.Actor),
				CompositionID: &comp.ID,
			}
			if err := s.stockRepo.CreateMovementTx(tx, mov); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("composition_id", id.String()).
		Str("target_location", req.TargetLocation).
		Int("targets", len(req.Targets)).
		Msg("composition disassembled")

	return s.Get(ctx, id)
}

// Delete soft-deletes a composition and its items. Executed compositions
// represent physical pallets and must be disassembled first.
func (s *compositionService) Delete(ctx context.Context, id uuid.UUID) error {
	comp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return apperror.NotFound("composition", id.String()).Wrap(err)
	}
	if comp.Status == model.StatusExecuted {
		return apperror.BusinessRule(apperror.ViolationCompositionExecuted,
			"executed compositions must be disassembled before deletion").
			WithDetail("composition_id", id.String())
	}

	return s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		return s.repo.SoftDeleteTx(tx, id)
	})
}

// GenerateReport queues an asynchronous PDF render for the composition.
func (s *compositionService) GenerateReport(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return apperror.NotFound("composition", id.String()).Wrap(err)
	}
	return s.reports.EnqueueCompositionReport(ctx, id.String())
}

// ReportPath is where the worker writes (and the download handler reads) the
// rendered PDF.
func (s *compositionService) ReportPath(id uuid.UUID) string {
	return filepath.Join(s.pdfDir, fmt.Sprintf("composition-%s.pdf", id))
}

func aggregateRequirements(comp *model.Composition) ([]productRequirement, error) {
	index := make(map[uuid.UUID]int)
	var requirements []productRequirement
	for i := range comp.Items {
		item := &comp.Items[i]
		if item.PackagingType == nil {
			return nil, fmt.Errorf("composition item %s has no packaging type loaded", item.ID)
		}
		required := item.Quantity.Mul(item.PackagingType.BaseUnitQuantity)
		if pos, ok := index[item.ProductID]; ok {
			requirements[pos].required = requirements[pos].required.Add(required)
			requirements[pos].items = append(requirements[pos].items, item)
			continue
		}
		index[item.ProductID] = len(requirements)
		requirements = append(requirements, productRequirement{
			productID: item.ProductID,
			required:  required,
			items:     []*model.CompositionItem{item},
		})
	}
	return requirements, nil
}

func groupItemsByProduct(items []model.CompositionItem) map[uuid.UUID][]*model.CompositionItem {
	byProduct := make(map[uuid.UUID][]*model.CompositionItem, len(items))
	for i := range items {
		item := &items[i]
		byProduct[item.ProductID] = append(byProduct[item.ProductID], item)
	}
	return byProduct
}

// checkDisassemblyCap verifies the target stays within what the items still
// hold: Σ(quantity − already disassembled).
func checkDisassemblyCap(target dto.DisassembleTarget, items []*model.CompositionItem) error {
	allowance := decimal.Zero
	for _, item := range items {
		allowance = allowance.Add(item.Quantity.Sub(item.DisassembledQuantity))
	}
	if target.Quantity.GreaterThan(allowance) {
		return apperror.BusinessRule(apperror.ViolationExcessiveDisassembly,
			"disassembly quantity exceeds what the composition still holds").
			WithDetail("product_id", target.ProductID).
			WithDetail("requested", target.Quantity.String()).
			WithDetail("available", allowance.String())
	}
	return nil
}

// firstLayerOf finds the first layer a packaging type appears in within the
// calculated layout. Layer 1 when the layout carries no placement for it.
func firstLayerOf(placements []dto.Placement, packagingTypeID string) int {
	for i := range placements {
		if placements[i].PackagingTypeID == packagingTypeID {
			return placements[i].Layer
		}
	}
	return 1
}

func (s *compositionService) toResponse(comp *model.Composition) (*dto.CompositionResponse, error) {
	var result dto.CompositionResult
	if err := json.Unmarshal(comp.Result, &result); err != nil {
		return nil, fmt.Errorf("unmarshal composition result: %w", err)
	}
	var constraints *dto.CompositionConstraints
	if len(comp.Constraints) > 0 {
		constraints = &dto.CompositionConstraints{}
		if err := json.Unmarshal(comp.Constraints, constraints); err != nil {
			return nil, fmt.Errorf("unmarshal composition constraints: %w", err)
		}
	}

	resp := &dto.CompositionResponse{
		ID:          comp.ID.String(),
		Name:        comp.Name,
		Status:      comp.Status,
		PalletID:    comp.PalletID.String(),
		CreatedBy:   comp.CreatedBy,
		ApprovedBy:  comp.ApprovedBy,
		Items:       make([]dto.CompositionItemResponse, 0, len(comp.Items)),
		Constraints: constraints,
		Result:      &result,
		CreatedAt:   comp.CreatedAt.Format(time.RFC3339),
	}
	if comp.ApprovedAt != nil {
		at := comp.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &at
	}
	for i := range comp.Items {
		item := &comp.Items[i]
		resp.Items = append(resp.Items, dto.CompositionItemResponse{
			ID:                   item.ID.String(),
			ProductID:            item.ProductID.String(),
			PackagingTypeID:      item.PackagingTypeID.String(),
			Quantity:             item.Quantity,
			Layer:                item.Layer,
			DisassembledQuantity: item.DisassembledQuantity,
		})
	}
	return resp, nil
}
