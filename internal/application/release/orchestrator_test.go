package release_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-release/internal/application/inventory"
	"github.com/jhoicas/stock-release/internal/application/release"
	"github.com/jhoicas/stock-release/internal/domain"
	"github.com/jhoicas/stock-release/internal/domain/entity"
	"github.com/jhoicas/stock-release/internal/infrastructure/memory"
	"github.com/jhoicas/stock-release/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var actor = entity.Actor{UID: "u-1", DisplayName: "Laura Bodega"}

type capturePublisher struct {
	mu     sync.Mutex
	events []inventory.Event
}

func (p *capturePublisher) Publish(_ context.Context, _ string, e inventory.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *capturePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// failingDeductor deja pasar las primeras n llamadas y luego falla.
type failingDeductor struct {
	next  release.Deductor
	n     int
	calls int
}

func (d *failingDeductor) Apply(ctx context.Context, h entity.StockHandle, amount int, opts inventory.DeductionOptions) (*inventory.DeductionResult, error) {
	d.calls++
	if d.calls > d.n {
		return nil, errors.New("timeout del almacén")
	}
	return d.next.Apply(ctx, h, amount, opts)
}

type fixture struct {
	store    *memory.Store
	pub      *capturePublisher
	resolver *inventory.LocationResolver
	executor *inventory.DeductionExecutor
	uc       *release.ReleaseUseCase
}

func newFixture(partitions ...string) *fixture {
	s := memory.NewStore()
	for _, p := range partitions {
		s.AddPartition(entity.StoragePartition{ID: p, Name: p})
	}
	log := logger.Nop()
	pub := &capturePublisher{}
	notifier := inventory.NewRestockNotifier(s.RestockRepo(), s.NotificationRepo(), pub, inventory.DefaultNotifierConfig(), log)
	f := &fixture{
		store:    s,
		pub:      pub,
		resolver: inventory.NewLocationResolver(s.Records(), nil, log),
		executor: inventory.NewDeductionExecutor(s.TxRunner(), notifier, log),
	}
	f.uc = f.useCase(f.executor)
	return f
}

func (f *fixture) useCase(d release.Deductor) *release.ReleaseUseCase {
	return release.NewReleaseUseCase(release.Repos{
		Releases:      f.store.Releases(),
		Logs:          f.store.ReleaseLogRepo(),
		Movements:     f.store.MovementRepo(),
		Notifications: f.store.NotificationRepo(),
	}, f.resolver, d, f.pub, []string{entity.RoleAdmin}, logger.Nop())
}

func plain(partition, productID string, qty int) *entity.StockRecord {
	return &entity.StockRecord{
		PartitionID: partition,
		RecordID:    productID,
		ProductID:   productID,
		Name:        "Producto " + productID,
		Quantity:    qty,
	}
}

func line(productID string, qty int) entity.ReleaseLineItem {
	return entity.ReleaseLineItem{ProductID: productID, Name: "Producto " + productID, Quantity: qty, UnitPrice: decimal.NewFromInt(1000)}
}

func ref(partition, record string) entity.RecordRef {
	return entity.RecordRef{PartitionID: partition, RecordID: record}
}

func intPtr(v int) *int { return &v }

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios de punta a punta
// ──────────────────────────────────────────────────────────────────────────────

func TestRelease_EscenarioA_DescuentoConReposicionNormal(t *testing.T) {
	f := newFixture("unit_01")
	rec := plain("unit_01", "P-1", 20)
	rec.RestockLevel = intPtr(10)
	f.store.PutRecord(rec)
	f.store.PutRelease(&entity.Release{ID: "R-A", Reference: "VENTA-001", Items: []entity.ReleaseLineItem{line("P-1", 15)}})

	result, err := f.uc.Release(context.Background(), "R-A", actor)
	require.NoError(t, err)
	assert.Equal(t, release.PhaseCompleted, result.Phase)
	require.Len(t, result.Succeeded, 1)
	assert.Equal(t, 15, result.Succeeded[0].Released())

	assert.Equal(t, 5, f.store.Record(ref("unit_01", "P-1")).Quantity)

	restocks := f.store.RestockingRequests()
	require.Len(t, restocks, 1)
	assert.Equal(t, entity.RestockPriorityNormal, restocks[0].Priority)
	assert.Equal(t, 95, restocks[0].SuggestedOrderQuantity)
	assert.Equal(t, "R-A", restocks[0].ReleaseID)
	assert.Equal(t, actor.UID, restocks[0].RequestedBy)
	assert.Len(t, result.Restocks(), 1)

	rel := f.store.Release("R-A")
	assert.Equal(t, entity.ReleaseStatusReleased, rel.Status)
	assert.Equal(t, actor.UID, rel.ReleasedBy)
	require.NotNil(t, rel.ReleasedAt)
	require.Len(t, rel.ReleasedItems, 1)
	assert.True(t, decimal.NewFromInt(15000).Equal(rel.ReleasedItems[0].TotalValue))

	logs := f.store.ReleaseLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, 15, logs[0].TotalUnits)

	movs := f.store.StockMovements()
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeOutbound, movs[0].Type)
	assert.Equal(t, "R-A", movs[0].ReleaseID)
	assert.Equal(t, 15, movs[0].Quantity)

	var types []string
	for _, n := range f.store.Notifications() {
		types = append(types, n.Type)
	}
	assert.ElementsMatch(t, []string{entity.NotificationTypeRestockRequest, entity.NotificationTypeReleaseComplete}, types)
	assert.Equal(t, []string{inventory.EventRestockRequested, inventory.EventReleaseCompleted}, f.pub.types())
}

func TestRelease_EscenarioB_SeTomaTodoDeLaUbicacionMayor(t *testing.T) {
	f := newFixture("unit_01", "unit_02")
	f.store.PutRecord(plain("unit_01", "P-1", 5))
	f.store.PutRecord(plain("unit_02", "P-1", 12))
	f.store.PutRelease(&entity.Release{ID: "R-B", Items: []entity.ReleaseLineItem{line("P-1", 10)}})

	result, err := f.uc.Release(context.Background(), "R-B", actor)
	require.NoError(t, err)
	require.Len(t, result.Succeeded[0].Deductions, 1)

	assert.Equal(t, 5, f.store.Record(ref("unit_01", "P-1")).Quantity, "la ubicación de 5 no se toca")
	assert.Equal(t, 2, f.store.Record(ref("unit_02", "P-1")).Quantity)
}

func TestRelease_EscenarioC_VariantePlanaAgotada(t *testing.T) {
	f := newFixture("unit_01")
	f.store.PutRecord(&entity.StockRecord{
		PartitionID: "unit_01",
		RecordID:    "V-RED",
		ProductID:   "P-1",
		VariantID:   "V-RED",
		IsVariant:   true,
		Shelf:       "Estante C",
		Quantity:    0,
	})
	item := line("P-1", 1)
	item.VariantID = "V-RED"
	f.store.PutRelease(&entity.Release{ID: "R-C", Items: []entity.ReleaseLineItem{item}})

	result, err := f.uc.Release(context.Background(), "R-C", actor)
	require.ErrorIs(t, err, domain.ErrOutOfStock)
	assert.Contains(t, err.Error(), "unit_01 / Estante C", "el error nombra la ubicación exacta")

	var relErr *release.ReleaseError
	require.ErrorAs(t, err, &relErr)
	assert.Same(t, result, relErr.Result)
	assert.Equal(t, release.PhaseFailed, result.Phase)
	assert.False(t, result.Committed())
	require.Len(t, result.Failed, 1)
	assert.Empty(t, result.Failed[0].Deductions)

	assert.Equal(t, entity.ReleaseStatusPending, f.store.Release("R-C").Status)
	assert.Empty(t, f.store.StockMovements())
	assert.Empty(t, f.store.ReleaseLogs())
}

func TestRelease_EscenarioD_VarianteEmbebidaInexistente(t *testing.T) {
	f := newFixture("unit_01")
	f.store.PutRecord(&entity.StockRecord{
		PartitionID: "unit_01",
		RecordID:    "CAMISA",
		ProductID:   "CAMISA",
		HasVariants: true,
		Quantity:    30,
		Variants:    []entity.Variant{{ID: "AZUL-M", Quantity: 10}},
	})
	item := line("CAMISA", 2)
	item.VariantID = "VERDE-XL"
	f.store.PutRelease(&entity.Release{ID: "R-D", Items: []entity.ReleaseLineItem{item}})

	_, err := f.uc.Release(context.Background(), "R-D", actor)
	require.ErrorIs(t, err, domain.ErrNotFound)

	var se *domain.StockError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Checked, "unit_01/CAMISA (variante no coincide)")
	assert.Equal(t, 30, f.store.Record(ref("unit_01", "CAMISA")).Quantity, "no se usa la cantidad base como respaldo")
}

func TestRelease_VarianteEmbebidaHermanaNoSeUsaComoRespaldo(t *testing.T) {
	f := newFixture("unit_01")
	f.store.PutRecord(&entity.StockRecord{
		PartitionID: "unit_01",
		RecordID:    "P1",
		ProductID:   "P1",
		HasVariants: true,
		Variants:    []entity.Variant{{ID: "V-RED", Quantity: 10}},
	})
	item := line("P1", 3)
	item.VariantID = "V-GREEN"
	f.store.PutRelease(&entity.Release{ID: "R-G", Items: []entity.ReleaseLineItem{item}})

	_, err := f.uc.Release(context.Background(), "R-G", actor)
	require.ErrorIs(t, err, domain.ErrNotFound)

	var se *domain.StockError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Checked, "unit_01/P1 (variante no coincide)")
	assert.Equal(t, 10, f.store.Record(ref("unit_01", "P1")).Variants[0].Quantity, "V-RED no se toca")
	assert.Equal(t, entity.ReleaseStatusPending, f.store.Release("R-G").Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Resultado parcial (sin compensación)
// ──────────────────────────────────────────────────────────────────────────────

func TestRelease_FalloEnRenglonPosteriorDejaLoConfirmado(t *testing.T) {
	f := newFixture("unit_01")
	f.store.PutRecord(plain("unit_01", "P-1", 40))
	f.store.PutRecord(plain("unit_01", "P-2", 2))
	f.store.PutRecord(plain("unit_01", "P-3", 9))
	f.store.PutRelease(&entity.Release{ID: "R-P", Items: []entity.ReleaseLineItem{
		line("P-1", 5),
		line("P-2", 5),
		line("P-3", 1),
	}})

	result, err := f.uc.Release(context.Background(), "R-P", actor)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var relErr *release.ReleaseError
	require.ErrorAs(t, err, &relErr)
	assert.Equal(t, 1, relErr.Index)
	assert.Contains(t, err.Error(), "sin reversión")

	assert.True(t, result.Committed())
	require.Len(t, result.Succeeded, 1)
	require.Len(t, result.Failed, 1)
	require.Len(t, result.NotAttempted, 1)
	assert.Equal(t, "P-3", result.NotAttempted[0].Item.ProductID)

	assert.Equal(t, 35, f.store.Record(ref("unit_01", "P-1")).Quantity, "el primer renglón queda aplicado")
	assert.Equal(t, 2, f.store.Record(ref("unit_01", "P-2")).Quantity)
	assert.Equal(t, 9, f.store.Record(ref("unit_01", "P-3")).Quantity)

	rel := f.store.Release("R-P")
	assert.Equal(t, entity.ReleaseStatusPartiallyReleased, rel.Status)
	require.Len(t, rel.ReleasedItems, 1)
	assert.Equal(t, "P-1", rel.ReleasedItems[0].ProductID)
	assert.Empty(t, f.store.StockMovements(), "los movimientos solo se escriben al completar")
}

func TestRelease_FalloEntreUbicacionesDelMismoRenglon(t *testing.T) {
	f := newFixture("unit_01", "unit_02")
	f.store.PutRecord(plain("unit_01", "P-1", 6))
	f.store.PutRecord(plain("unit_02", "P-1", 4))
	f.store.PutRelease(&entity.Release{ID: "R-X", Items: []entity.ReleaseLineItem{line("P-1", 8)}})

	uc := f.useCase(&failingDeductor{next: f.executor, n: 1})
	result, err := uc.Release(context.Background(), "R-X", actor)
	require.Error(t, err)

	require.Len(t, result.Failed, 1)
	failed := result.Failed[0]
	require.Len(t, failed.Deductions, 1, "la primera ubicación ya quedó confirmada")
	assert.Equal(t, 6, failed.Released())
	assert.True(t, result.Committed())
	assert.Equal(t, 0, f.store.Record(ref("unit_01", "P-1")).Quantity)
	assert.Equal(t, 4, f.store.Record(ref("unit_02", "P-1")).Quantity)
	assert.Equal(t, entity.ReleaseStatusPartiallyReleased, f.store.Release("R-X").Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cotizaciones, validaciones y estados
// ──────────────────────────────────────────────────────────────────────────────

func TestRelease_CotizacionPermiteInventarioNegativo(t *testing.T) {
	f := newFixture("unit_01")
	f.store.PutRecord(plain("unit_01", "Q-1", 1))
	item := line("Q-1", 3)
	item.Quotation = true
	f.store.PutRelease(&entity.Release{ID: "R-Q", Items: []entity.ReleaseLineItem{item}})

	result, err := f.uc.Release(context.Background(), "R-Q", actor)
	require.NoError(t, err)
	assert.Equal(t, release.PhaseCompleted, result.Phase)
	assert.Equal(t, -2, f.store.Record(ref("unit_01", "Q-1")).Quantity)

	restocks := f.store.RestockingRequests()
	require.Len(t, restocks, 1)
	assert.Equal(t, entity.RestockPriorityUrgent, restocks[0].Priority)
}

func TestRelease_ValidaRenglones(t *testing.T) {
	f := newFixture("unit_01")
	f.store.PutRelease(&entity.Release{ID: "R-V0"})
	f.store.PutRelease(&entity.Release{ID: "R-V1", Items: []entity.ReleaseLineItem{line("P-1", 0)}})
	f.store.PutRelease(&entity.Release{ID: "R-V2", Items: []entity.ReleaseLineItem{{Name: "sin id", Quantity: 1}}})

	for _, id := range []string{"R-V0", "R-V1", "R-V2"} {
		result, err := f.uc.Release(context.Background(), id, actor)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, id)
		require.NotNil(t, result)
		assert.Equal(t, release.PhaseFailed, result.Phase)
		assert.Equal(t, entity.ReleaseStatusPending, f.store.Release(id).Status, "una salida inválida vuelve a pendiente")
	}
}

func TestRelease_SalidaInexistente(t *testing.T) {
	f := newFixture("unit_01")

	result, err := f.uc.Release(context.Background(), "NADA", actor)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRelease_NoSeLiberaDosVeces(t *testing.T) {
	f := newFixture("unit_01")
	f.store.PutRecord(plain("unit_01", "P-1", 20))
	f.store.PutRelease(&entity.Release{ID: "R-2", Items: []entity.ReleaseLineItem{line("P-1", 1)}})

	_, err := f.uc.Release(context.Background(), "R-2", actor)
	require.NoError(t, err)

	_, err = f.uc.Release(context.Background(), "R-2", actor)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 19, f.store.Record(ref("unit_01", "P-1")).Quantity)
}

func TestRelease_LlamadasSimultaneasDescuentanUnaSolaVez(t *testing.T) {
	f := newFixture("unit_01")
	var items []entity.ReleaseLineItem
	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("P%03d", i)
		f.store.PutRecord(plain("unit_01", id, 100))
		items = append(items, line(id, 1))
	}
	f.store.PutRelease(&entity.Release{ID: "R-C1", Items: items})

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.uc.Release(context.Background(), "R-C1", actor)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrConflict):
				conflicts++
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, callers-1, conflicts)
	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("P%03d", i)
		assert.Equal(t, 99, f.store.Record(ref("unit_01", id)).Quantity, id)
	}
	assert.Equal(t, entity.ReleaseStatusReleased, f.store.Release("R-C1").Status)
	assert.Len(t, f.store.ReleaseLogs(), 1)
}
