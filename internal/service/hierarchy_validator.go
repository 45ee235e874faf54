package service

import (
	"fmt"

	"github.com/Joaovenera/wms-sub005/internal/apperror"
	"github.com/Joaovenera/wms-sub005/internal/model"

	"github.com/google/uuid"
)

// HierarchyValidator enforces the structural invariants of a product's
// packaging hierarchy. Pure check, no side effects: the caller gathers the
// product's active types (siblings) plus the barcode uniqueness answer, and
// persists only when Validate returns nil.
//
// Checks run in a fixed order and fail fast on the first violation:
// base-unit uniqueness, parent existence, cycle detection, level ordering,
// quantity ordering, dimensional containment, barcode uniqueness.
//
// Convention: container = parent. Level and BaseUnitQuantity strictly
// increase moving away from the base unit.
type HierarchyValidator struct{}

func NewHierarchyValidator() *HierarchyValidator { return &HierarchyValidator{} }

// Validate checks candidate against its active siblings. On update the
// candidate carries its existing ID, so siblings containing that ID are the
// pre-update row and are skipped where appropriate.
func (v *HierarchyValidator) Validate(candidate *model.PackagingType, siblings []model.PackagingType, barcodeInUse bool) error {
	byID := make(map[uuid.UUID]*model.PackagingType, len(siblings))
	for i := range siblings {
		byID[siblings[i].ID] = &siblings[i]
	}

	// (a) exactly one active base unit per product
	if candidate.IsBaseUnit {
		for i := range siblings {
			if siblings[i].ID != candidate.ID && siblings[i].IsBaseUnit {
				return apperror.Validation(apperror.ViolationDuplicateBaseUnit,
					"product already has an active base unit packaging type").
					WithDetail("product_id", candidate.ProductID.String()).
					WithDetail("existing_base_unit_id", siblings[i].ID.String())
			}
		}
	}

	// (b) parent exists, is active, and belongs to the same product
	var parent *model.PackagingType
	if candidate.ParentPackagingID != nil {
		p, ok := byID[*candidate.ParentPackagingID]
		if !ok || !p.Active || p.ProductID != candidate.ProductID {
			return apperror.Validation(apperror.ViolationParentNotFound,
				"parent packaging type does not exist for this product").
				WithDetail("parent_packaging_id", candidate.ParentPackagingID.String())
		}
		parent = p
	}

	// (c) cycle detection: bounded upward walk from the proposed parent
	if parent != nil {
		visited := make(map[uuid.UUID]bool, len(siblings)+1)
		cursor := parent
		for steps := 0; steps <= len(siblings); steps++ {
			if cursor.ID == candidate.ID {
				return apperror.Validation(apperror.ViolationCircularReference,
					"packaging hierarchy would contain a cycle").
					WithDetail("packaging_type_id", candidate.ID.String())
			}
			if visited[cursor.ID] {
				break
			}
			visited[cursor.ID] = true
			if cursor.ParentPackagingID == nil {
				break
			}
			next, ok := byID[*cursor.ParentPackagingID]
			if !ok {
				break
			}
			cursor = next
		}
	}

	// (d) level ordering: containers sit strictly above their content
	if candidate.IsBaseUnit && candidate.Level != 1 {
		return apperror.Validation(apperror.ViolationLevelInconsistent,
			"base unit must be level 1").
			WithDetail("level", fmt.Sprintf("%d", candidate.Level))
	}
	if parent != nil && parent.Level <= candidate.Level {
		return apperror.Validation(apperror.ViolationLevelInconsistent,
			"parent level must be greater than the child level").
			WithDetail("parent_level", fmt.Sprintf("%d", parent.Level)).
			WithDetail("level", fmt.Sprintf("%d", candidate.Level))
	}
	for i := range siblings {
		child := &siblings[i]
		if child.ID == candidate.ID || !child.Active {
			continue
		}
		if child.ParentPackagingID != nil && *child.ParentPackagingID == candidate.ID && child.Level >= candidate.Level {
			return apperror.Validation(apperror.ViolationLevelInconsistent,
				"child level must be less than the parent level").
				WithDetail("child_id", child.ID.String())
		}
	}

	// (e) base-unit quantity ordering consistent with (d)
	if candidate.BaseUnitQuantity.IsZero() || candidate.BaseUnitQuantity.IsNegative() {
		return apperror.Validation(apperror.ViolationQuantityInconsistent,
			"base unit quantity must be positive")
	}
	one := candidate.BaseUnitQuantity.Equal(decimalOne)
	if candidate.IsBaseUnit && !one {
		return apperror.Validation(apperror.ViolationQuantityInconsistent,
			"base unit must equal exactly one base unit").
			WithDetail("base_unit_quantity", candidate.BaseUnitQuantity.String())
	}
	if parent != nil && parent.BaseUnitQuantity.LessThanOrEqual(candidate.BaseUnitQuantity) {
		return apperror.Validation(apperror.ViolationQuantityInconsistent,
			"parent must hold more base units than the child").
			WithDetail("parent_base_unit_quantity", parent.BaseUnitQuantity.String()).
			WithDetail("base_unit_quantity", candidate.BaseUnitQuantity.String())
	}
	for i := range siblings {
		child := &siblings[i]
		if child.ID == candidate.ID || !child.Active {
			continue
		}
		if child.ParentPackagingID != nil && *child.ParentPackagingID == candidate.ID &&
			child.BaseUnitQuantity.GreaterThanOrEqual(candidate.BaseUnitQuantity) {
			return apperror.Validation(apperror.ViolationQuantityInconsistent,
				"child must hold fewer base units than the parent").
				WithDetail("child_id", child.ID.String())
		}
	}

	// (f) dimensional containment: a child must physically fit its container
	if parent != nil {
		if err := checkContainment(candidate, parent); err != nil {
			return err
		}
	}
	for i := range siblings {
		child := &siblings[i]
		if child.ID == candidate.ID || !child.Active {
			continue
		}
		if child.ParentPackagingID != nil && *child.ParentPackagingID == candidate.ID {
			if err := checkContainment(child, candidate); err != nil {
				return err
			}
		}
	}

	// (g) barcode uniqueness among active types, across all products
	if candidate.Barcode != nil && barcodeInUse {
		return apperror.Validation(apperror.ViolationDuplicateBarcode,
			"barcode already assigned to another active packaging type").
			WithDetail("barcode", *candidate.Barcode)
	}

	return nil
}

// checkContainment compares child against parent dimension by dimension.
// Only runs when both nodes carry full dimensions.
func checkContainment(child, parent *model.PackagingType) error {
	if !child.HasDimensions() || !parent.HasDimensions() {
		return nil
	}
	type dim struct {
		name          string
		child, parent string
		exceeds       bool
	}
	dims := []dim{
		{"length_cm", child.LengthCm.String(), parent.LengthCm.String(), child.LengthCm.GreaterThan(*parent.LengthCm)},
		{"width_cm", child.WidthCm.String(), parent.WidthCm.String(), child.WidthCm.GreaterThan(*parent.WidthCm)},
		{"height_cm", child.HeightCm.String(), parent.HeightCm.String(), child.HeightCm.GreaterThan(*parent.HeightCm)},
		{"weight_kg", child.WeightKg.String(), parent.WeightKg.String(), child.WeightKg.GreaterThan(*parent.WeightKg)},
	}
	for _, d := range dims {
		if d.exceeds {
			return apperror.Validation(apperror.ViolationDimensionOverflow,
				"child dimension exceeds its container").
				WithDetail("dimension", d.name).
				WithDetail("child", d.child).
				WithDetail("parent", d.parent)
		}
	}
	return nil
}
