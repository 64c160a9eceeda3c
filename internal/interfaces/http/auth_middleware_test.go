package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-release/internal/application/dto"
	"github.com/jhoicas/stock-release/internal/domain/entity"
	apphttp "github.com/jhoicas/stock-release/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/stock-release/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testUserName  = "Laura Bodega"
	testIssuer    = "stock-release-test"
	testExpMin    = 60
)

func identity(role string) pkgjwt.Identity {
	return pkgjwt.Identity{UserID: testUserID, Name: testUserName, Role: role}
}

// tokenForRole header Authorization listo para usar con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	return bearer(t, identity(role))
}

func bearer(t *testing.T, id pkgjwt.Identity) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, id, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

type actorBody struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// actorApp ruta de salida mínima: auth + RBAC de salidas, responde con el actor extraído.
func actorApp() *fiber.App {
	app := fiber.New()
	app.Post("/releases/:id/release",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(entity.RoleAdmin, entity.RoleInventoryManager, entity.RoleSeller),
		func(c *fiber.Ctx) error {
			a := apphttp.GetActor(c)
			return c.JSON(actorBody{UID: a.UID, Name: a.DisplayName, Role: apphttp.GetRole(c)})
		},
	)
	return app
}

func send(t *testing.T, app *fiber.App, authHeader string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/releases/R-1/release", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var raw json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	return resp.StatusCode, raw
}

func TestAuthMiddleware_ActorDeLaSalidaSaleDelToken(t *testing.T) {
	app := actorApp()

	status, raw := send(t, app, tokenForRole(t, entity.RoleSeller))
	require.Equal(t, http.StatusOK, status)

	var body actorBody
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, actorBody{UID: testUserID, Name: testUserName, Role: entity.RoleSeller}, body)
}

func TestAuthMiddleware_TokenSinNombreDejaSoloElUID(t *testing.T) {
	app := actorApp()

	status, raw := send(t, app, bearer(t, pkgjwt.Identity{UserID: "u-77", Role: entity.RoleInventoryManager}))
	require.Equal(t, http.StatusOK, status)

	var body actorBody
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "u-77", body.UID)
	assert.Empty(t, body.Name)
}

func TestAuthMiddleware_RolesDeSalida(t *testing.T) {
	app := actorApp()
	tests := []struct {
		role   string
		status int
		code   string
	}{
		{entity.RoleAdmin, http.StatusOK, ""},
		{entity.RoleInventoryManager, http.StatusOK, ""},
		{entity.RoleSeller, http.StatusOK, ""},
		{"auditor", http.StatusForbidden, "FORBIDDEN"},
		{"", http.StatusUnauthorized, "MISSING_ROLE"},
	}
	for _, tt := range tests {
		t.Run("rol="+tt.role, func(t *testing.T) {
			status, raw := send(t, app, tokenForRole(t, tt.role))
			assert.Equal(t, tt.status, status)
			if tt.code != "" {
				var e dto.ErrorResponse
				require.NoError(t, json.Unmarshal(raw, &e))
				assert.Equal(t, tt.code, e.Code)
			}
		})
	}
}

func TestAuthMiddleware_HeaderInvalido(t *testing.T) {
	app := actorApp()
	valid := tokenForRole(t, entity.RoleAdmin)

	otherSecret, err := pkgjwt.Generate("otro-secret", identity(entity.RoleAdmin), testIssuer, testExpMin)
	require.NoError(t, err)
	expired, err := pkgjwt.Generate(testJWTSecret, identity(entity.RoleAdmin), testIssuer, -1)
	require.NoError(t, err)
	unsigned, err := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, pkgjwt.Claims{UserID: testUserID, Role: entity.RoleAdmin}).
		SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"sin header", "", "MISSING_TOKEN"},
		{"esquema basic", "Basic dXNlcjpwYXNz", "INVALID_TOKEN"},
		{"firma de otro secreto", "Bearer " + otherSecret, "INVALID_TOKEN"},
		{"expirado", "Bearer " + expired, "INVALID_TOKEN"},
		{"alg none", "Bearer " + unsigned, "INVALID_TOKEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, raw := send(t, app, tt.header)
			assert.Equal(t, http.StatusUnauthorized, status)
			var e dto.ErrorResponse
			require.NoError(t, json.Unmarshal(raw, &e))
			assert.Equal(t, tt.code, e.Code)
		})
	}

	// el esquema no distingue mayúsculas
	status, _ := send(t, app, "bearer "+valid[len("Bearer "):])
	assert.Equal(t, http.StatusOK, status)
}

func TestJWT_IdentidadCompletaIdaYVuelta(t *testing.T) {
	id := pkgjwt.Identity{UserID: "u-9", Name: "Marta Caja", Role: entity.RoleInventoryManager}
	tok, err := pkgjwt.Generate(testJWTSecret, id, testIssuer, testExpMin)
	require.NoError(t, err)

	got, err := pkgjwt.Parse(testJWTSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = pkgjwt.Generate("", id, testIssuer, testExpMin)
	assert.Error(t, err, "sin secreto no se firma")
}
