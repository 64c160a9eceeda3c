package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-release/internal/application/inventory"
	"github.com/jhoicas/stock-release/internal/application/release"
	"github.com/jhoicas/stock-release/internal/application/usecase"
	"github.com/jhoicas/stock-release/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ReleaseUC      *release.ReleaseUseCase
	Resolver       *inventory.LocationResolver
	NotificationUC *usecase.NotificationUseCase
	JWTSecret      string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Salidas: cualquier rol operativo puede liberar una venta.
	releases := api.Group("/releases")
	releaseHandler := NewReleaseHandler(deps.ReleaseUC)
	releases.Post("/:id/release",
		RequireRole(entity.RoleAdmin, entity.RoleInventoryManager, entity.RoleSeller),
		releaseHandler.Release)

	// Stock (solo lectura)
	stock := api.Group("/stock")
	stockHandler := NewStockHandler(deps.Resolver)
	stock.Get("/locate", stockHandler.Locate)

	// Notificaciones
	notifications := api.Group("/notifications")
	notificationHandler := NewNotificationHandler(deps.NotificationUC)
	notifications.Get("/", notificationHandler.List)
	notifications.Patch("/:id/read", notificationHandler.MarkRead)
}
