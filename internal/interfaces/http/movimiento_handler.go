package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/almacen-api/internal/application/alerts"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

// MovimientoHandler maneja las peticiones HTTP del libro de movimientos.
type MovimientoHandler struct {
	uc       *inventory.RegisterMovementUseCase
	detector *alerts.Detector
	log      *logger.Logger
}

// NewMovimientoHandler construye el handler.
func NewMovimientoHandler(uc *inventory.RegisterMovementUseCase, detector *alerts.Detector, log *logger.Logger) *MovimientoHandler {
	return &MovimientoHandler{uc: uc, detector: detector, log: log}
}

// RegisterMovementRequest cuerpo de POST /api/v1/movimientos.
type RegisterMovementRequest struct {
	Tipo        string  `json:"tipo"`
	Clave       string  `json:"clave"`
	Cantidad    int     `json:"cantidad"`
	Documento   string  `json:"documento"`
	Responsable string  `json:"responsable"`
	ProveedorID *string `json:"proveedor_id"`
	ClienteID   *string `json:"cliente_id"`
}

// Register registra un movimiento de stock. Tras el commit dispara la revisión
// de alertas del producto en segundo plano: su fallo se loguea y jamás afecta
// el resultado del movimiento.
func (h *MovimientoHandler) Register(c *fiber.Ctx) error {
	var in RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorBody("INVALID_BODY", "cuerpo inválido"))
	}

	result, err := h.uc.RegisterMovement(c.Context(), inventory.MovementInput{
		Tipo:        in.Tipo,
		Clave:       in.Clave,
		Cantidad:    in.Cantidad,
		Documento:   in.Documento,
		Responsable: in.Responsable,
		ProveedorID: in.ProveedorID,
		ClienteID:   in.ClienteID,
	})
	if err != nil {
		return movementError(c, err)
	}

	// Fire-and-forget: revisión de stock bajo fuera de la transacción del movimiento.
	productoID := result.Producto.ID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := h.detector.CheckProducto(ctx, productoID); err != nil {
			h.log.Error().Err(err).Str("producto_id", productoID).Msg("revisión de alerta post-movimiento")
		}
	}()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"movimiento": fiber.Map{
			"id":       result.Movimiento.ID,
			"tipo":     result.Movimiento.Tipo,
			"cantidad": result.Movimiento.Cantidad,
			"fecha":    result.Movimiento.Fecha,
		},
		"producto": fiber.Map{
			"id":           result.Producto.ID,
			"clave":        result.Producto.Clave,
			"stock_actual": result.Producto.StockActual,
			"stock_minimo": result.Producto.StockMinimo,
		},
	})
}

func movementError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrEntradaInvalida), errors.Is(err, domain.ErrRestriccion):
		return c.Status(fiber.StatusBadRequest).JSON(errorBody("VALIDATION", err.Error()))
	case errors.Is(err, domain.ErrProductoNoEncontrado),
		errors.Is(err, domain.ErrClienteNoEncontrado),
		errors.Is(err, domain.ErrProveedorNoEncontrado),
		errors.Is(err, domain.ErrNoEncontrado):
		return c.Status(fiber.StatusNotFound).JSON(errorBody("NOT_FOUND", err.Error()))
	case errors.Is(err, domain.ErrStockInsuficiente):
		return c.Status(fiber.StatusConflict).JSON(errorBody("INSUFFICIENT_STOCK", err.Error()))
	case errors.Is(err, domain.ErrClaveForanea):
		return c.Status(fiber.StatusBadRequest).JSON(errorBody("FOREIGN_KEY", err.Error()))
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(errorBody("INTERNAL", err.Error()))
	}
}

func errorBody(code, message string) fiber.Map {
	return fiber.Map{"code": code, "message": message}
}
