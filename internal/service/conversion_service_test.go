package service_test

import (
	"context"
	"testing"

	"github.com/Joaovenera/wms-sub005/internal/apperror"
	"github.com/Joaovenera/wms-sub005/internal/dto"
	"github.com/Joaovenera/wms-sub005/internal/model"
	"github.com/Joaovenera/wms-sub005/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Unit(1) / Box(2) / Master(10) of the same product.
func seedConversionTypes(packaging *stubPackagingRepo) (unit, box, master *model.PackagingType) {
	productID := uuid.New()
	unit = packaging.add(&model.PackagingType{
		ProductID: productID, Name: "Unit", BaseUnitQuantity: dec("1"), IsBaseUnit: true, Level: 1, Active: true,
	})
	box = packaging.add(&model.PackagingType{
		ProductID: productID, Name: "Box", BaseUnitQuantity: dec("2"), Level: 2, Active: true,
	})
	master = packaging.add(&model.PackagingType{
		ProductID: productID, Name: "Master", BaseUnitQuantity: dec("10"), Level: 3, Active: true,
	})
	return unit, box, master
}

func TestConversionService_Convert(t *testing.T) {
	packaging := newStubPackagingRepo()
	unit, box, master := seedConversionTypes(packaging)
	svc := service.NewConversionService(packaging)
	ctx := context.Background()

	convert := func(qty string, from, to *model.PackagingType) *dto.ConvertResponse {
		resp, err := svc.Convert(ctx, dto.ConvertRequest{
			Quantity:          dec(qty),
			FromPackagingType: from.ID.String(),
			ToPackagingType:   to.ID.String(),
		})
		require.NoError(t, err)
		return resp
	}

	t.Run("one master is ten units", func(t *testing.T) {
		resp := convert("1", master, unit)
		assert.True(t, resp.ConvertedQuantity.Equal(dec("10")))
		assert.True(t, resp.BaseUnits.Equal(dec("10")))
		assert.True(t, resp.IsExact)
	})

	t.Run("five boxes are one master", func(t *testing.T) {
		resp := convert("5", box, master)
		assert.True(t, resp.ConvertedQuantity.Equal(dec("1")))
		assert.True(t, resp.IsExact)
	})

	t.Run("three units are one and a half boxes, inexact", func(t *testing.T) {
		resp := convert("3", unit, box)
		assert.True(t, resp.ConvertedQuantity.Equal(dec("1.5")))
		assert.False(t, resp.IsExact)
	})

	t.Run("round trip preserves quantity", func(t *testing.T) {
		up := convert("7", unit, master)
		down := convert(up.ConvertedQuantity.String(), master, unit)
		assert.True(t, down.ConvertedQuantity.Equal(dec("7")))
	})

	t.Run("zero converts to zero, exactly", func(t *testing.T) {
		resp := convert("0", box, master)
		assert.True(t, resp.ConvertedQuantity.IsZero())
		assert.True(t, resp.IsExact)
	})
}

func TestConversionService_CrossProductRefused(t *testing.T) {
	packaging := newStubPackagingRepo()
	unit, _, _ := seedConversionTypes(packaging)
	other := packaging.add(&model.PackagingType{
		ProductID: uuid.New(), Name: "Other Unit", BaseUnitQuantity: dec("1"), IsBaseUnit: true, Level: 1, Active: true,
	})
	svc := service.NewConversionService(packaging)

	_, err := svc.Convert(context.Background(), dto.ConvertRequest{
		Quantity:          dec("1"),
		FromPackagingType: unit.ID.String(),
		ToPackagingType:   other.ID.String(),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeUnsupported))
	assert.True(t, apperror.IsViolation(err, apperror.ViolationCrossProductConversion))
}

func TestConversionService_UnknownType(t *testing.T) {
	packaging := newStubPackagingRepo()
	unit, _, _ := seedConversionTypes(packaging)
	svc := service.NewConversionService(packaging)

	_, err := svc.Convert(context.Background(), dto.ConvertRequest{
		Quantity:          dec("1"),
		FromPackagingType: unit.ID.String(),
		ToPackagingType:   uuid.NewString(),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))
}

func TestConversionService_BaseUnitHelpers(t *testing.T) {
	packaging := newStubPackagingRepo()
	_, box, master := seedConversionTypes(packaging)
	svc := service.NewConversionService(packaging)
	ctx := context.Background()

	base, err := svc.ToBaseUnits(ctx, box.ID, dec("4"))
	require.NoError(t, err)
	assert.True(t, base.Equal(dec("8")))

	resp, err := svc.FromBaseUnits(ctx, master.ID, dec("25"))
	require.NoError(t, err)
	assert.True(t, resp.ConvertedQuantity.Equal(dec("2.5")))
	assert.False(t, resp.IsExact)

	assert.True(t, svc.BaseUnitsOf(box, dec("3")).Equal(dec("6")))
}
