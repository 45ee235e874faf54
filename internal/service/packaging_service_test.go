package service_test

import (
	"context"
	"testing"

	"github.com/Joaovenera/wms-sub005/internal/apperror"
	"github.com/Joaovenera/wms-sub005/internal/dto"
	"github.com/Joaovenera/wms-sub005/internal/model"
	"github.com/Joaovenera/wms-sub005/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type packagingFixture struct {
	products  *stubProductRepo
	packaging *stubPackagingRepo
	stock     *stubStockRepo
	svc       service.PackagingService
	hierarchy hierarchyFixture
}

func newPackagingFixture(t *testing.T) packagingFixture {
	t.Helper()
	products := newStubProductRepo()
	packaging := newStubPackagingRepo()
	stock := newStubStockRepo()
	hierarchy := seedHierarchy(t, products, packaging)

	// rdb nil: the cache is bypassed entirely in unit tests.
	svc := service.NewPackagingService(packaging, products, stock, service.NewHierarchyValidator(), nil, 0)
	return packagingFixture{
		products:  products,
		packaging: packaging,
		stock:     stock,
		svc:       svc,
		hierarchy: hierarchy,
	}
}

func TestPackagingService_Create(t *testing.T) {
	fx := newPackagingFixture(t)
	ctx := context.Background()

	t.Run("valid level above the hierarchy", func(t *testing.T) {
		resp, err := fx.svc.Create(ctx, dto.CreatePackagingTypeRequest{
			ProductID:        fx.hierarchy.product.ID.String(),
			Name:             "Container",
			BaseUnitQuantity: dec("2880"),
			Level:            4,
			LengthCm:         decPtr("240"),
			WidthCm:          decPtr("200"),
			HeightCm:         decPtr("200"),
			WeightKg:         decPtr("1700"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Container", resp.Name)
		assert.Equal(t, 4, resp.Level)
		assert.True(t, resp.Active)

		stored, err := fx.packaging.FindByID(ctx, uuid.MustParse(resp.ID))
		require.NoError(t, err)
		assert.True(t, stored.BaseUnitQuantity.Equal(dec("2880")))
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := fx.svc.Create(ctx, dto.CreatePackagingTypeRequest{
			ProductID:        uuid.NewString(),
			Name:             "Orphan",
			BaseUnitQuantity: dec("1"),
			IsBaseUnit:       true,
			Level:            1,
		})
		require.Error(t, err)
		assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))
	})

	t.Run("second base unit is rejected with no write", func(t *testing.T) {
		before, _ := fx.packaging.ListActiveByProduct(ctx, fx.hierarchy.product.ID)

		_, err := fx.svc.Create(ctx, dto.CreatePackagingTypeRequest{
			ProductID:        fx.hierarchy.product.ID.String(),
			Name:             "Second Unit",
			BaseUnitQuantity: dec("1"),
			IsBaseUnit:       true,
			Level:            1,
		})
		require.Error(t, err)
		assert.True(t, apperror.IsViolation(err, apperror.ViolationDuplicateBaseUnit))

		after, _ := fx.packaging.ListActiveByProduct(ctx, fx.hierarchy.product.ID)
		assert.Len(t, after, len(before))
	})
}

func TestPackagingService_UpdateRevalidatesHierarchy(t *testing.T) {
	fx := newPackagingFixture(t)
	ctx := context.Background()

	parentID := fx.hierarchy.pallet.ID.String()
	req := dto.UpdatePackagingTypeRequest{
		Name:              "Box",
		BaseUnitQuantity:  decimal.NewFromInt(144), // equals the parent pallet's quantity
		Level:             2,
		ParentPackagingID: &parentID,
		LengthCm:          fx.hierarchy.box.LengthCm,
		WidthCm:           fx.hierarchy.box.WidthCm,
		HeightCm:          fx.hierarchy.box.HeightCm,
		WeightKg:          fx.hierarchy.box.WeightKg,
	}
	_, err := fx.svc.Update(ctx, fx.hierarchy.box.ID, req)
	require.Error(t, err)
	assert.True(t, apperror.IsViolation(err, apperror.ViolationQuantityInconsistent))

	req.BaseUnitQuantity = decimal.NewFromInt(24)
	resp, err := fx.svc.Update(ctx, fx.hierarchy.box.ID, req)
	require.NoError(t, err)
	assert.True(t, resp.BaseUnitQuantity.Equal(decimal.NewFromInt(24)))
}

func TestPackagingService_DeleteGuardedByLiveStock(t *testing.T) {
	fx := newPackagingFixture(t)
	ctx := context.Background()

	fx.stock.add(&model.StockRecord{
		ProductID:         fx.hierarchy.product.ID,
		PackagingTypeID:   fx.hierarchy.box.ID,
		QuantityBaseUnits: dec("120"),
		LocationCode:      "A-01-02",
		Active:            true,
	})

	err := fx.svc.Delete(ctx, fx.hierarchy.box.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeConflict))

	// The pallet level carries no stock and can go.
	require.NoError(t, fx.svc.Delete(ctx, fx.hierarchy.pallet.ID))
	types, err := fx.svc.ListByProduct(ctx, fx.hierarchy.product.ID)
	require.NoError(t, err)
	assert.Len(t, types.Data, 2)

	// Deleting twice reports not found: soft-deleted rows are invisible.
	err = fx.svc.Delete(ctx, fx.hierarchy.pallet.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))
}

func TestPackagingService_FindByBarcode(t *testing.T) {
	fx := newPackagingFixture(t)
	ctx := context.Background()

	barcode := "7790000000024"
	fx.hierarchy.box.Barcode = &barcode

	resp, err := fx.svc.FindByBarcode(ctx, barcode)
	require.NoError(t, err)
	assert.Equal(t, fx.hierarchy.box.ID.String(), resp.ID)

	_, err = fx.svc.FindByBarcode(ctx, "0000000000000")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))
}
