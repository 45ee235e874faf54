package service_test

import (
	"context"
	"time"

	"github.com/Joaovenera/wms-sub005/internal/dto"
	"github.com/Joaovenera/wms-sub005/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// In-memory repository stubs shared across the service tests.

var errNotFound = gorm.ErrRecordNotFound

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string { return &s }

// ── ProductRepository stub ───────────────────────────────────────────────────

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) add(p *model.Product) *model.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return p
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, errNotFound
	}
	return p, nil
}

func (r *stubProductRepo) FindActiveByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok || !p.Active {
		return nil, errNotFound
	}
	return p, nil
}

// ── PackagingRepository stub ─────────────────────────────────────────────────

type stubPackagingRepo struct {
	types map[uuid.UUID]*model.PackagingType
}

func newStubPackagingRepo() *stubPackagingRepo {
	return &stubPackagingRepo{types: make(map[uuid.UUID]*model.PackagingType)}
}

func (r *stubPackagingRepo) add(p *model.PackagingType) *model.PackagingType {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.types[p.ID] = p
	return p
}

func (r *stubPackagingRepo) Create(_ context.Context, p *model.PackagingType) error {
	r.add(p)
	return nil
}

func (r *stubPackagingRepo) Update(_ context.Context, p *model.PackagingType) error {
	r.types[p.ID] = p
	return nil
}

func (r *stubPackagingRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PackagingType, error) {
	p, ok := r.types[id]
	if !ok {
		return nil, errNotFound
	}
	return p, nil
}

func (r *stubPackagingRepo) FindActiveByBarcode(_ context.Context, barcode string) (*model.PackagingType, error) {
	for _, p := range r.types {
		if p.Active && p.Barcode != nil && *p.Barcode == barcode {
			return p, nil
		}
	}
	return nil, errNotFound
}

func (r *stubPackagingRepo) ListActiveByProduct(_ context.Context, productID uuid.UUID) ([]model.PackagingType, error) {
	var result []model.PackagingType
	// level ascending, matching the real repository's ordering
	for level := 1; level <= len(r.types); level++ {
		for _, p := range r.types {
			if p.ProductID == productID && p.Active && p.Level == level {
				result = append(result, *p)
			}
		}
	}
	return result, nil
}

func (r *stubPackagingRepo) ListByProduct(_ context.Context, productID uuid.UUID) ([]model.PackagingType, error) {
	var result []model.PackagingType
	for _, p := range r.types {
		if p.ProductID == productID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (r *stubPackagingRepo) BarcodeInUse(_ context.Context, barcode string, excludeID uuid.UUID) (bool, error) {
	for _, p := range r.types {
		if p.ID != excludeID && p.Active && p.Barcode != nil && *p.Barcode == barcode {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubPackagingRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	p, ok := r.types[id]
	if !ok {
		return errNotFound
	}
	p.Active = false
	return nil
}

func (r *stubPackagingRepo) DB() *gorm.DB { return nil }

// ── StockRepository stub ─────────────────────────────────────────────────────

type stubStockRepo struct {
	records   map[uuid.UUID]*model.StockRecord
	movements []*model.StockMovement
	order     []uuid.UUID // insertion order stands in for created_at ASC
}

func newStubStockRepo() *stubStockRepo {
	return &stubStockRepo{records: make(map[uuid.UUID]*model.StockRecord)}
}

func (r *stubStockRepo) add(rec *model.StockRecord) *model.StockRecord {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = time.Now()
	r.records[rec.ID] = rec
	r.order = append(r.order, rec.ID)
	return rec
}

func (r *stubStockRepo) ListActiveByProduct(_ context.Context, productID uuid.UUID) ([]model.StockRecord, error) {
	var result []model.StockRecord
	for _, id := range r.order {
		rec := r.records[id]
		if rec.ProductID == productID && rec.Active {
			result = append(result, *rec)
		}
	}
	return result, nil
}

func (r *stubStockRepo) HasActiveStockForPackaging(_ context.Context, packagingTypeID uuid.UUID) (bool, error) {
	for _, rec := range r.records {
		if rec.PackagingTypeID == packagingTypeID && rec.Active && rec.QuantityBaseUnits.Sign() > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubStockRepo) ListActiveByProductForUpdate(_ *gorm.DB, productID uuid.UUID) ([]model.StockRecord, error) {
	return r.ListActiveByProduct(context.Background(), productID)
}

func (r *stubStockRepo) UpdateQuantityTx(_ *gorm.DB, recordID uuid.UUID, quantity decimal.Decimal) error {
	rec, ok := r.records[recordID]
	if !ok {
		return errNotFound
	}
	rec.QuantityBaseUnits = quantity
	return nil
}

func (r *stubStockRepo) DeactivateTx(_ *gorm.DB, recordID uuid.UUID) error {
	rec, ok := r.records[recordID]
	if !ok {
		return errNotFound
	}
	rec.QuantityBaseUnits = decimal.Zero
	rec.Active = false
	return nil
}

func (r *stubStockRepo) CreateTx(_ *gorm.DB, rec *model.StockRecord) error {
	r.add(rec)
	return nil
}

func (r *stubStockRepo) CreateMovementTx(_ *gorm.DB, mov *model.StockMovement) error {
	r.movements = append(r.movements, mov)
	return nil
}

func (r *stubStockRepo) DB() *gorm.DB { return nil }

// ── PalletRepository stub ────────────────────────────────────────────────────

type stubPalletRepo struct {
	pallets []*model.Pallet
}

func (r *stubPalletRepo) add(p *model.Pallet) *model.Pallet {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.pallets = append(r.pallets, p)
	return p
}

func (r *stubPalletRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Pallet, error) {
	for _, p := range r.pallets {
		if p.ID == id && p.Active {
			return p, nil
		}
	}
	return nil, errNotFound
}

func (r *stubPalletRepo) ListActive(_ context.Context) ([]model.Pallet, error) {
	var result []model.Pallet
	for _, p := range r.pallets {
		if p.Active {
			result = append(result, *p)
		}
	}
	// max weight ascending, matching the real repository's ordering
	for i := 1; i < len(result); i++ {
		for j := i; j > 0 && result[j].MaxWeightKg.LessThan(result[j-1].MaxWeightKg); j-- {
			result[j], result[j-1] = result[j-1], result[j]
		}
	}
	return result, nil
}

// ── CompositionRepository stub ───────────────────────────────────────────────

type stubCompositionRepo struct {
	compositions map[uuid.UUID]*model.Composition
}

func newStubCompositionRepo() *stubCompositionRepo {
	return &stubCompositionRepo{compositions: make(map[uuid.UUID]*model.Composition)}
}

func (r *stubCompositionRepo) Create(_ context.Context, c *model.Composition) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	r.compositions[c.ID] = c
	return nil
}

func (r *stubCompositionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Composition, error) {
	c, ok := r.compositions[id]
	if !ok || !c.Active {
		return nil, errNotFound
	}
	return c, nil
}

func (r *stubCompositionRepo) List(_ context.Context, filter dto.CompositionFilter) ([]model.Composition, int64, error) {
	var result []model.Composition
	for _, c := range r.compositions {
		if !c.Active {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		result = append(result, *c)
	}
	return result, int64(len(result)), nil
}

func (r *stubCompositionRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string, approvedBy *string, approvedAt *time.Time) error {
	c, ok := r.compositions[id]
	if !ok {
		return errNotFound
	}
	c.Status = status
	if approvedBy != nil {
		c.ApprovedBy = approvedBy
		c.ApprovedAt = approvedAt
	}
	return nil
}

// Transaction runs fn directly; the stub's *Tx methods ignore the handle.
// Composition state is snapshotted first and restored when fn errors,
// mirroring a database rollback.
func (r *stubCompositionRepo) Transaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	saved := make(map[uuid.UUID]*model.Composition, len(r.compositions))
	for id, c := range r.compositions {
		cp := *c
		cp.Items = append([]model.CompositionItem(nil), c.Items...)
		saved[id] = &cp
	}
	if err := fn(nil); err != nil {
		r.compositions = saved
		return err
	}
	return nil
}

func (r *stubCompositionRepo) TransitionStatusTx(_ *gorm.DB, id uuid.UUID, from, to string) (bool, error) {
	c, ok := r.compositions[id]
	if !ok {
		return false, errNotFound
	}
	if c.Status != from {
		return false, nil
	}
	c.Status = to
	return true, nil
}

func (r *stubCompositionRepo) ListItemsForUpdateTx(_ *gorm.DB, compositionID uuid.UUID) ([]model.CompositionItem, error) {
	c, ok := r.compositions[compositionID]
	if !ok {
		return nil, errNotFound
	}
	var items []model.CompositionItem
	for _, item := range c.Items {
		if item.Active {
			items = append(items, item)
		}
	}
	return items, nil
}

func (r *stubCompositionRepo) UpdateItemDisassembledTx(_ *gorm.DB, itemID uuid.UUID, quantity decimal.Decimal) error {
	for _, c := range r.compositions {
		for i := range c.Items {
			if c.Items[i].ID == itemID {
				c.Items[i].DisassembledQuantity = quantity
				return nil
			}
		}
	}
	return errNotFound
}

func (r *stubCompositionRepo) SoftDeleteTx(_ *gorm.DB, id uuid.UUID) error {
	c, ok := r.compositions[id]
	if !ok {
		return errNotFound
	}
	c.Active = false
	for i := range c.Items {
		c.Items[i].Active = false
	}
	return nil
}

func (r *stubCompositionRepo) DB() *gorm.DB { return nil }

// ── ReportQueue stub ─────────────────────────────────────────────────────────

type stubReportQueue struct {
	enqueued []string
}

func (q *stubReportQueue) EnqueueCompositionReport(_ context.Context, compositionID string) error {
	q.enqueued = append(q.enqueued, compositionID)
	return nil
}

// ── Fixture: Unit(1) / Box(12) / Pallet(144) hierarchy with stock ────────────

type hierarchyFixture struct {
	product *model.Product
	unit    *model.PackagingType
	box     *model.PackagingType
	pallet  *model.PackagingType
}

func seedHierarchy(t require.TestingT, products *stubProductRepo, packaging *stubPackagingRepo) hierarchyFixture {
	product := products.add(&model.Product{SKU: "SKU-1", Name: "Widget", Active: true})

	pallet := packaging.add(&model.PackagingType{
		ProductID:        product.ID,
		Name:             "Pallet",
		BaseUnitQuantity: dec("144"),
		Level:            3,
		LengthCm:         decPtr("120"),
		WidthCm:          decPtr("100"),
		HeightCm:         decPtr("90"),
		WeightKg:         decPtr("80"),
		Active:           true,
	})
	box := packaging.add(&model.PackagingType{
		ProductID:         product.ID,
		Name:              "Box",
		BaseUnitQuantity:  dec("12"),
		Level:             2,
		ParentPackagingID: &pallet.ID,
		LengthCm:          decPtr("40"),
		WidthCm:           decPtr("30"),
		HeightCm:          decPtr("20"),
		WeightKg:          decPtr("6.5"),
		Active:            true,
	})
	unit := packaging.add(&model.PackagingType{
		ProductID:         product.ID,
		Name:              "Unit",
		BaseUnitQuantity:  dec("1"),
		IsBaseUnit:        true,
		Level:             1,
		ParentPackagingID: &box.ID,
		LengthCm:          decPtr("10"),
		WidthCm:           decPtr("10"),
		HeightCm:          decPtr("15"),
		WeightKg:          decPtr("0.5"),
		Active:            true,
	})

	return hierarchyFixture{product: product, unit: unit, box: box, pallet: pallet}
}
