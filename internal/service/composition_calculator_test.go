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

const testStackCeilingCm = 180

type calculatorFixture struct {
	calc       service.CompositionCalculator
	hierarchy  hierarchyFixture
	smallPall  *model.Pallet // EUR: 80x120, max 600 kg
	bigPall    *model.Pallet // Industrial: 100x120, max 1200 kg
	products   *stubProductRepo
	packaging  *stubPackagingRepo
	palletRepo *stubPalletRepo
}

func newCalculatorFixture(t *testing.T) calculatorFixture {
	products := newStubProductRepo()
	packaging := newStubPackagingRepo()
	pallets := &stubPalletRepo{}
	fx := seedHierarchy(t, products, packaging)

	small := pallets.add(&model.Pallet{
		Name: "EUR-1", WidthCm: dec("80"), LengthCm: dec("120"), HeightCm: dec("14.4"), MaxWeightKg: dec("600"), Active: true,
	})
	big := pallets.add(&model.Pallet{
		Name: "Industrial", WidthCm: dec("100"), LengthCm: dec("120"), HeightCm: dec("15"), MaxWeightKg: dec("1200"), Active: true,
	})

	calc := service.NewCompositionCalculator(products, packaging, pallets, testStackCeilingCm)
	return calculatorFixture{
		calc: calc, hierarchy: fx, smallPall: small, bigPall: big,
		products: products, packaging: packaging, palletRepo: pallets,
	}
}

func boxesRequest(fx calculatorFixture, qty int) dto.CalculateCompositionRequest {
	return dto.CalculateCompositionRequest{
		Products: []dto.CompositionProductInput{{
			ProductID:       fx.hierarchy.product.ID.String(),
			PackagingTypeID: fx.hierarchy.box.ID.String(),
			Quantity:        qty,
		}},
	}
}

func TestCompositionCalculator_RejectsEmptyAndUnknownInputs(t *testing.T) {
	fx := newCalculatorFixture(t)
	ctx := context.Background()

	_, err := fx.calc.Calculate(ctx, dto.CalculateCompositionRequest{})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidationViolation))

	req := boxesRequest(fx, 1)
	req.Products[0].ProductID = uuid.NewString()
	_, err = fx.calc.Calculate(ctx, req)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))

	// Packaging of another product cannot be combined with this product.
	other := fx.packaging.add(&model.PackagingType{
		ProductID: uuid.New(), Name: "Foreign Box", BaseUnitQuantity: dec("12"), Level: 2,
		LengthCm: decPtr("40"), WidthCm: decPtr("30"), HeightCm: decPtr("20"), WeightKg: decPtr("6"), Active: true,
	})
	req = boxesRequest(fx, 1)
	req.Products[0].PackagingTypeID = other.ID.String()
	_, err = fx.calc.Calculate(ctx, req)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidationViolation))

	// Packaging without physical dimensions cannot be placed.
	bare := fx.packaging.add(&model.PackagingType{
		ProductID: fx.hierarchy.product.ID, Name: "Bare", BaseUnitQuantity: dec("3"), Level: 2, Active: true,
	})
	req = boxesRequest(fx, 1)
	req.Products[0].PackagingTypeID = bare.ID.String()
	_, err = fx.calc.Calculate(ctx, req)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidationViolation))
}

// Auto-selection picks the smallest pallet whose max weight covers the load.
func TestCompositionCalculator_PalletAutoSelection(t *testing.T) {
	fx := newCalculatorFixture(t)
	ctx := context.Background()

	// 10 boxes, 65 kg: the 600 kg pallet is enough.
	result, err := fx.calc.Calculate(ctx, boxesRequest(fx, 10))
	require.NoError(t, err)
	assert.Equal(t, fx.smallPall.ID.String(), result.PalletID)

	// 100 boxes, 650 kg: skips the 600 kg pallet.
	result, err = fx.calc.Calculate(ctx, boxesRequest(fx, 100))
	require.NoError(t, err)
	assert.Equal(t, fx.bigPall.ID.String(), result.PalletID)

	// 200 boxes, 1300 kg: nothing fits.
	_, err = fx.calc.Calculate(ctx, boxesRequest(fx, 200))
	require.Error(t, err)
	assert.True(t, apperror.IsViolation(err, apperror.ViolationNoSuitablePallet))
}

func TestCompositionCalculator_ExplicitPallet(t *testing.T) {
	fx := newCalculatorFixture(t)

	req := boxesRequest(fx, 10)
	id := fx.bigPall.ID.String()
	req.PalletID = &id
	result, err := fx.calc.Calculate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, id, result.PalletID)

	ghost := uuid.NewString()
	req.PalletID = &ghost
	_, err = fx.calc.Calculate(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))
}

// 10 boxes of 40x30x20 on the 80x120 pallet: two per row across the width,
// three rows per layer, so six per layer — the layout is fully determined by
// the input order.
func TestCompositionCalculator_ShelfLayoutDeterministic(t *testing.T) {
	fx := newCalculatorFixture(t)
	ctx := context.Background()

	first, err := fx.calc.Calculate(ctx, boxesRequest(fx, 10))
	require.NoError(t, err)
	second, err := fx.calc.Calculate(ctx, boxesRequest(fx, 10))
	require.NoError(t, err)

	require.Len(t, first.Placements, 10)
	assert.Equal(t, first.Placements, second.Placements)
	assert.Equal(t, first.Layers, second.Layers)

	assert.Equal(t, 2, first.LayerCount)
	require.Len(t, first.Layers, 2)
	assert.Equal(t, 6, first.Layers[0].Items)
	assert.Equal(t, 4, first.Layers[1].Items)

	// First two placements share layer 1, row y=0.
	p0, p1, p2 := first.Placements[0], first.Placements[1], first.Placements[2]
	assert.True(t, p0.XCm.IsZero())
	assert.True(t, p1.XCm.Equal(dec("30")))
	assert.True(t, p0.YCm.IsZero() && p1.YCm.IsZero())
	// Third wraps to the next row.
	assert.True(t, p2.XCm.IsZero())
	assert.True(t, p2.YCm.Equal(dec("40")))

	// Two layers of 20 cm boxes stack to 40 cm.
	assert.True(t, first.StackHeightCm.Equal(dec("40")))
	assert.True(t, first.MaxItemHeightCm.Equal(dec("20")))
}

func TestCompositionCalculator_TotalsAndUtilization(t *testing.T) {
	fx := newCalculatorFixture(t)

	result, err := fx.calc.Calculate(context.Background(), boxesRequest(fx, 10))
	require.NoError(t, err)

	assert.True(t, result.TotalWeightKg.Equal(dec("65")))
	// 10 × 0.024 m³
	assert.True(t, result.TotalVolumeM3.Equal(dec("0.24")))
	assert.True(t, result.Limits.WeightKg.Equal(dec("600")))
	// 80 × 120 × 180 cm = 1.728 m³
	assert.True(t, result.Limits.VolumeM3.Equal(dec("1.728")))
	assert.True(t, result.Limits.HeightCm.Equal(decimal.NewFromInt(testStackCeilingCm)))

	assert.True(t, result.Utilization.Weight.Equal(dec("0.1083")))
	assert.True(t, result.Utilization.Volume.Equal(dec("0.1389")))
	assert.True(t, result.Utilization.Height.Equal(dec("0.1111")))
	assert.True(t, result.Efficiency.Equal(dec("0.1083")))
	assert.Empty(t, result.Violations)
}

func TestCompositionCalculator_ConstraintOverridesAndViolations(t *testing.T) {
	fx := newCalculatorFixture(t)

	req := boxesRequest(fx, 10)
	req.Constraints = &dto.CompositionConstraints{
		MaxWeightKg: decPtr("10"),  // 65 kg load: utilization 6.5
		MaxVolumeM3: decPtr("0.1"), // 0.24 m³ load: utilization 2.4
	}
	result, err := fx.calc.Calculate(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, result.Utilization.Weight.Equal(dec("6.5")))
	assert.True(t, result.Utilization.Volume.Equal(dec("2.4")))
	require.Len(t, result.Violations, 2)

	// Efficiency is a ratio of usable capacity: capped at 1 even when the
	// load overflows the limits.
	assert.True(t, result.Efficiency.Equal(dec("1")))
}

func TestCompositionCalculator_Advisories(t *testing.T) {
	fx := newCalculatorFixture(t)
	ctx := context.Background()

	t.Run("underloaded pallet draws recommendations", func(t *testing.T) {
		result, err := fx.calc.Calculate(ctx, boxesRequest(fx, 10))
		require.NoError(t, err)
		// efficiency 0.1083 < 0.7 and weight utilization 0.1083 < 0.5
		assert.Len(t, result.Recommendations, 2)
		assert.Empty(t, result.Warnings)
	})

	t.Run("more than three layers warns", func(t *testing.T) {
		// 20 boxes at six per layer: four layers.
		result, err := fx.calc.Calculate(ctx, boxesRequest(fx, 20))
		require.NoError(t, err)
		assert.Equal(t, 4, result.LayerCount)
		require.NotEmpty(t, result.Warnings)
	})

	t.Run("height near the ceiling warns", func(t *testing.T) {
		tall := fx.packaging.add(&model.PackagingType{
			ProductID: fx.hierarchy.product.ID, Name: "Tall Crate",
			BaseUnitQuantity: dec("48"), Level: 2,
			LengthCm: decPtr("60"), WidthCm: decPtr("60"), HeightCm: decPtr("170"), WeightKg: decPtr("30"),
			Active: true,
		})
		req := dto.CalculateCompositionRequest{
			Products: []dto.CompositionProductInput{{
				ProductID:       fx.hierarchy.product.ID.String(),
				PackagingTypeID: tall.ID.String(),
				Quantity:        1,
			}},
		}
		result, err := fx.calc.Calculate(ctx, req)
		require.NoError(t, err)
		// 170/180 ≈ 0.944 > 0.9
		require.NotEmpty(t, result.Warnings)
		assert.Empty(t, result.Violations)
	})
}

func TestCompositionCalculator_FootprintExceedsDeck(t *testing.T) {
	fx := newCalculatorFixture(t)

	wide := fx.packaging.add(&model.PackagingType{
		ProductID: fx.hierarchy.product.ID, Name: "Wide Crate",
		BaseUnitQuantity: dec("60"), Level: 2,
		LengthCm: decPtr("130"), WidthCm: decPtr("90"), HeightCm: decPtr("50"), WeightKg: decPtr("40"),
		Active: true,
	})
	req := dto.CalculateCompositionRequest{
		Products: []dto.CompositionProductInput{{
			ProductID:       fx.hierarchy.product.ID.String(),
			PackagingTypeID: wide.ID.String(),
			Quantity:        1,
		}},
	}
	_, err := fx.calc.Calculate(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperror.IsViolation(err, apperror.ViolationDimensionOverflow))
}
