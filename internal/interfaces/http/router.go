package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/almacen-api/internal/application/alerts"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RegisterMovement *inventory.RegisterMovementUseCase
	Detector         *alerts.Detector
	Movimientos      repository.MovimientoRepository
	Alertas          repository.AlertaRepository
	Eventos          repository.EventoRepository
	Cola             repository.CorreoRepository
	Log              *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	movHandler := NewMovimientoHandler(deps.RegisterMovement, deps.Detector, deps.Log)
	api.Post("/movimientos", movHandler.Register)
	api.Get("/productos/:productoId/movimientos", func(c *fiber.Ctx) error {
		limit, offset := pagination(c)
		list, err := deps.Movimientos.ListByProducto(c.Context(), c.Params("productoId"), limit, offset)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(errorBody("INTERNAL", err.Error()))
		}
		return c.JSON(fiber.Map{"movimientos": list})
	})

	alertaHandler := NewAlertaHandler(deps.Alertas, deps.Eventos, deps.Cola)
	api.Get("/alertas", alertaHandler.ListActivas)
	api.Get("/productos/:productoId/eventos", alertaHandler.ListEventos)
	api.Get("/cola-correos", alertaHandler.ListCola)
}
