package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// AlertaHandler vistas de solo lectura del pipeline de alertas: alertas
// activas, bitácora por producto y el outbox de correos (incluidas las
// entradas que agotaron sus intentos, para inspección del operador).
type AlertaHandler struct {
	alertas repository.AlertaRepository
	eventos repository.EventoRepository
	cola    repository.CorreoRepository
}

// NewAlertaHandler construye el handler.
func NewAlertaHandler(alertas repository.AlertaRepository, eventos repository.EventoRepository, cola repository.CorreoRepository) *AlertaHandler {
	return &AlertaHandler{alertas: alertas, eventos: eventos, cola: cola}
}

// ListActivas lista las alertas de stock bajo activas.
func (h *AlertaHandler) ListActivas(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	list, err := h.alertas.ListActivas(c.Context(), limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorBody("INTERNAL", err.Error()))
	}
	return c.JSON(fiber.Map{"alertas": list})
}

// ListEventos lista la bitácora de un producto.
func (h *AlertaHandler) ListEventos(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	list, err := h.eventos.ListByProducto(c.Context(), c.Params("productoId"), limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorBody("INTERNAL", err.Error()))
	}
	return c.JSON(fiber.Map{"eventos": list})
}

// ListCola lista el outbox de correos, más recientes primero.
func (h *AlertaHandler) ListCola(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	list, err := h.cola.List(c.Context(), limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorBody("INTERNAL", err.Error()))
	}
	return c.JSON(fiber.Map{"correos": list})
}

func pagination(c *fiber.Ctx) (limit, offset int) {
	limit = c.QueryInt("limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset = c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
