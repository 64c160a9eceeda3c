package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-release/internal/application/dto"
	"github.com/jhoicas/stock-release/internal/application/inventory"
	"github.com/jhoicas/stock-release/internal/application/release"
	"github.com/jhoicas/stock-release/internal/application/usecase"
	"github.com/jhoicas/stock-release/internal/domain/entity"
	"github.com/jhoicas/stock-release/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/stock-release/internal/interfaces/http"
	"github.com/jhoicas/stock-release/pkg/logger"
)

// buildAPI arma el router completo sobre el almacén en memoria con stock sembrado.
func buildAPI(t *testing.T) (*fiber.App, *memory.Store) {
	t.Helper()
	s := memory.NewStore()
	s.AddPartition(entity.StoragePartition{ID: "unit_01", Name: "Unidad 1"})
	s.AddPartition(entity.StoragePartition{ID: "unit_02", Name: "Unidad 2"})
	s.PutRecord(&entity.StockRecord{PartitionID: "unit_01", RecordID: "P-1", ProductID: "P-1", Name: "Taladro", Quantity: 30})
	s.PutRecord(&entity.StockRecord{PartitionID: "unit_02", RecordID: "P-1", ProductID: "P-1", Name: "Taladro", Quantity: 8})
	s.PutRecord(&entity.StockRecord{PartitionID: "unit_01", RecordID: "P-2", ProductID: "P-2", Name: "Broca", Quantity: 1})

	log := logger.Nop()
	resolver := inventory.NewLocationResolver(s.Records(), nil, log)
	notifier := inventory.NewRestockNotifier(s.RestockRepo(), s.NotificationRepo(), nil, inventory.DefaultNotifierConfig(), log)
	executor := inventory.NewDeductionExecutor(s.TxRunner(), notifier, log)
	releaseUC := release.NewReleaseUseCase(release.Repos{
		Releases:      s.Releases(),
		Logs:          s.ReleaseLogRepo(),
		Movements:     s.MovementRepo(),
		Notifications: s.NotificationRepo(),
	}, resolver, executor, nil, []string{entity.RoleAdmin, entity.RoleSeller}, log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ReleaseUC:      releaseUC,
		Resolver:       resolver,
		NotificationUC: usecase.NewNotificationUseCase(s.NotificationRepo()),
		JWTSecret:      testJWTSecret,
	})
	return app, s
}

func call(t *testing.T, app *fiber.App, method, path, role string, out any) int {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func salida(id string, items ...entity.ReleaseLineItem) *entity.Release {
	return &entity.Release{ID: id, Reference: "VENTA-" + id, Items: items}
}

func renglon(productID string, qty int) entity.ReleaseLineItem {
	return entity.ReleaseLineItem{ProductID: productID, Name: productID, Quantity: qty, UnitPrice: decimal.NewFromInt(250)}
}

// ──────────────────────────────────────────────────────────────────────────────
// POST /api/releases/:id/release
// ──────────────────────────────────────────────────────────────────────────────

func TestReleaseHandler_Completada(t *testing.T) {
	app, s := buildAPI(t)
	s.PutRelease(salida("R-1", renglon("P-1", 12)))

	var body dto.ReleaseResponse
	status := call(t, app, http.MethodPost, "/api/releases/R-1/release", entity.RoleSeller, &body)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, "R-1", body.ReleaseID)
	assert.Equal(t, string(release.PhaseCompleted), body.Phase)
	assert.True(t, body.Committed)
	require.Len(t, body.Succeeded, 1)
	assert.Equal(t, 12, body.Succeeded[0].Released)
	require.Len(t, body.Succeeded[0].Deductions, 1)
	assert.Equal(t, "unit_01", body.Succeeded[0].Deductions[0].PartitionID)
	assert.Equal(t, 18, body.Succeeded[0].Deductions[0].NewQuantity)

	assert.Equal(t, entity.ReleaseStatusReleased, s.Release("R-1").Status)
}

func TestReleaseHandler_StockInsuficienteDevuelve409ConDetalle(t *testing.T) {
	app, s := buildAPI(t)
	s.PutRelease(salida("R-2", renglon("P-1", 2), renglon("P-2", 3)))

	var body dto.ReleaseErrorResponse
	status := call(t, app, http.MethodPost, "/api/releases/R-2/release", entity.RoleInventoryManager, &body)
	require.Equal(t, http.StatusConflict, status)

	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	require.NotNil(t, body.Detail)
	assert.Equal(t, 3, body.Detail.Requested)
	assert.Equal(t, 1, body.Detail.Available)
	assert.Equal(t, 2, body.Detail.Shortfall)

	require.NotNil(t, body.Result, "el resultado parcial viaja en la respuesta")
	assert.True(t, body.Result.Committed)
	assert.Len(t, body.Result.Succeeded, 1)
	assert.Len(t, body.Result.Failed, 1)
	assert.Equal(t, entity.ReleaseStatusPartiallyReleased, s.Release("R-2").Status)
}

func TestReleaseHandler_SalidaInexistente404(t *testing.T) {
	app, _ := buildAPI(t)

	var body dto.ErrorResponse
	status := call(t, app, http.MethodPost, "/api/releases/NADA/release", entity.RoleAdmin, &body)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body.Code)
}

func TestReleaseHandler_SegundaLiberacion409(t *testing.T) {
	app, s := buildAPI(t)
	s.PutRelease(salida("R-3", renglon("P-1", 1)))

	require.Equal(t, http.StatusOK, call(t, app, http.MethodPost, "/api/releases/R-3/release", entity.RoleAdmin, nil))

	var body dto.ReleaseErrorResponse
	status := call(t, app, http.MethodPost, "/api/releases/R-3/release", entity.RoleAdmin, &body)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", body.Code)
}

func TestReleaseHandler_RolSinPermiso403(t *testing.T) {
	app, s := buildAPI(t)
	s.PutRelease(salida("R-4", renglon("P-1", 1)))

	status := call(t, app, http.MethodPost, "/api/releases/R-4/release", "auditor", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, entity.ReleaseStatusPending, s.Release("R-4").Status)
}

func TestReleaseHandler_SinToken401(t *testing.T) {
	app, _ := buildAPI(t)

	status := call(t, app, http.MethodPost, "/api/releases/R-1/release", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

// ──────────────────────────────────────────────────────────────────────────────
// GET /api/stock/locate
// ──────────────────────────────────────────────────────────────────────────────

func TestStockHandler_Locate(t *testing.T) {
	app, _ := buildAPI(t)

	var body dto.LocateResponse
	status := call(t, app, http.MethodGet, "/api/stock/locate?product_id=P-1", entity.RoleSeller, &body)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, inventory.StrategyScan, body.Strategy)
	assert.Equal(t, 38, body.Total)
	require.Len(t, body.Handles, 2)
	assert.Equal(t, 30, body.Handles[0].Quantity)
}

func TestStockHandler_LocateSinIdentificador400(t *testing.T) {
	app, _ := buildAPI(t)

	var body dto.ErrorResponse
	status := call(t, app, http.MethodGet, "/api/stock/locate?location=unit_01", entity.RoleSeller, &body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body.Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// /api/notifications
// ──────────────────────────────────────────────────────────────────────────────

func TestNotificationHandler_ListarYMarcarLeida(t *testing.T) {
	app, s := buildAPI(t)
	s.PutRelease(salida("R-5", renglon("P-1", 25)))
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPost, "/api/releases/R-5/release", entity.RoleSeller, nil))

	var list dto.NotificationListResponse
	status := call(t, app, http.MethodGet, "/api/notifications", entity.RoleInventoryManager, &list)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list.Items, 1, "solo la solicitud de reposición va al inventory_manager")
	assert.Equal(t, entity.NotificationTypeRestockRequest, list.Items[0].Type)

	status = call(t, app, http.MethodGet, "/api/notifications?role=seller&limit=5", entity.RoleAdmin, &list)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list.Items, 1)
	assert.Equal(t, entity.NotificationTypeReleaseComplete, list.Items[0].Type)
	assert.Equal(t, "seller", list.Role)
	assert.Equal(t, 5, list.Page.Limit)
	assert.Equal(t, 1, list.Page.Returned)

	status = call(t, app, http.MethodPatch, "/api/notifications/"+list.Items[0].ID+"/read", entity.RoleSeller, nil)
	assert.Equal(t, http.StatusNoContent, status)

	var after dto.NotificationListResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/notifications", entity.RoleSeller, &after))
	assert.Empty(t, after.Items)
}

func TestNotificationHandler_LimiteSeAcotaAlMaximo(t *testing.T) {
	app, _ := buildAPI(t)

	var list dto.NotificationListResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/notifications?limit=500&offset=-3", entity.RoleAdmin, &list))
	assert.Equal(t, entity.RoleAdmin, list.Role, "sin role se usa el del token")
	assert.Equal(t, dto.MaxNotificationLimit, list.Page.Limit)
	assert.Equal(t, 0, list.Page.Offset)
	assert.Equal(t, 0, list.Page.Returned)
	assert.NotNil(t, list.Items)
}

func TestNotificationHandler_SoloAdminConsultaOtroRol(t *testing.T) {
	app, _ := buildAPI(t)

	var body dto.ErrorResponse
	status := call(t, app, http.MethodGet, "/api/notifications?role=admin", entity.RoleSeller, &body)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body.Code)
}

func TestNotificationHandler_MarcarInexistente404(t *testing.T) {
	app, _ := buildAPI(t)

	status := call(t, app, http.MethodPatch, "/api/notifications/nada/read", entity.RoleAdmin, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
