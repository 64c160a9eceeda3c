package inventory_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-release/internal/domain"
	"github.com/jhoicas/stock-release/internal/domain/entity"
	"github.com/jhoicas/stock-release/internal/domain/inventory"
)

func handle(loc string, qty int) entity.StockHandle {
	return entity.StockHandle{
		Ref:          entity.RecordRef{PartitionID: loc, RecordID: "P-1"},
		Shape:        entity.ShapePlainBase,
		VariantIndex: -1,
		Quantity:     qty,
		Location:     loc,
	}
}

func sum(allocs []inventory.Allocation) int {
	total := 0
	for _, a := range allocs {
		total += a.Amount
	}
	return total
}

func TestPlan_TomaPrimeroLaUbicacionConMasStock(t *testing.T) {
	handles := []entity.StockHandle{handle("unit_01", 30), handle("unit_02", 10), handle("unit_03", 50)}

	allocs, err := inventory.Plan(40, handles, false)
	require.NoError(t, err)
	require.Len(t, allocs, 1, "40 unidades caben completas en la ubicación de 50")
	assert.Equal(t, "unit_03", allocs[0].Handle.Location)
	assert.Equal(t, 40, allocs[0].Amount)
}

func TestPlan_RepartoEntreVariasUbicaciones(t *testing.T) {
	handles := []entity.StockHandle{handle("unit_01", 30), handle("unit_02", 10), handle("unit_03", 50)}

	allocs, err := inventory.Plan(85, handles, false)
	require.NoError(t, err)
	require.Len(t, allocs, 3)
	assert.Equal(t, []int{50, 30, 5}, []int{allocs[0].Amount, allocs[1].Amount, allocs[2].Amount})
	assert.Equal(t, 85, sum(allocs))
}

func TestPlan_NoModificaLosHandlesRecibidos(t *testing.T) {
	handles := []entity.StockHandle{handle("unit_01", 5), handle("unit_02", 9)}

	_, err := inventory.Plan(3, handles, false)
	require.NoError(t, err)
	assert.Equal(t, "unit_01", handles[0].Location, "el orden original del llamador se conserva")
}

func TestPlan_StockInsuficiente_DesglosePorUbicacion(t *testing.T) {
	handles := []entity.StockHandle{handle("unit_01", 5), handle("unit_02", 3)}

	allocs, err := inventory.Plan(10, handles, false)
	assert.Nil(t, allocs)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var se *domain.StockError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 10, se.Requested)
	assert.Equal(t, 8, se.Available)
	assert.Equal(t, 2, se.Shortfall)
	assert.Equal(t, []domain.LocationQuantity{
		{Location: "unit_01", Quantity: 5},
		{Location: "unit_02", Quantity: 3},
	}, se.Locations)
	assert.Contains(t, err.Error(), "faltante 2")
}

func TestPlan_SinStockEnNingunaUbicacion_Agotado(t *testing.T) {
	handles := []entity.StockHandle{handle("unit_01", 0), handle("unit_02", 0)}

	_, err := inventory.Plan(1, handles, false)
	assert.ErrorIs(t, err, domain.ErrOutOfStock)
	assert.NotErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestPlan_CantidadesNegativasNoSumanDisponible(t *testing.T) {
	handles := []entity.StockHandle{handle("unit_01", -4), handle("unit_02", 6)}

	_, err := inventory.Plan(5, handles, false)
	require.NoError(t, err)

	_, err = inventory.Plan(7, handles, false)
	var se *domain.StockError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 6, se.Available)
}

func TestPlan_Cotizacion_RemanenteVaALaUltimaUbicacion(t *testing.T) {
	handles := []entity.StockHandle{handle("unit_01", 5), handle("unit_02", 3)}

	allocs, err := inventory.Plan(10, handles, true)
	require.NoError(t, err)
	require.Len(t, allocs, 2)
	assert.Equal(t, 5, allocs[0].Amount)
	assert.Equal(t, 5, allocs[1].Amount, "3 disponibles más el remanente de 2")
	assert.Equal(t, 10, sum(allocs))
}

func TestPlan_Cotizacion_SinStockAsignaTodoALaPrimera(t *testing.T) {
	handles := []entity.StockHandle{handle("unit_01", 0)}

	allocs, err := inventory.Plan(4, handles, true)
	require.NoError(t, err)
	require.Len(t, allocs, 1)
	assert.Equal(t, 4, allocs[0].Amount)
}

func TestPlan_EntradasInvalidas(t *testing.T) {
	_, err := inventory.Plan(0, []entity.StockHandle{handle("unit_01", 5)}, false)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = inventory.Plan(3, nil, false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestComputeDeduction(t *testing.T) {
	next, err := inventory.ComputeDeduction(5, 3, false)
	require.NoError(t, err)
	assert.Equal(t, 2, next)

	next, err = inventory.ComputeDeduction(3, 3, false)
	require.NoError(t, err)
	assert.Equal(t, 0, next)

	_, err = inventory.ComputeDeduction(2, 3, false)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	next, err = inventory.ComputeDeduction(2, 3, true)
	require.NoError(t, err)
	assert.Equal(t, -1, next, "clase cotización puede quedar en negativo")

	_, err = inventory.ComputeDeduction(2, 0, true)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
