package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// RegisterMovementUseCase registra movimientos de stock (ENTRADA/SALIDA) de
// forma transaccional con bloqueo de fila (SELECT FOR UPDATE) y Commit/Rollback.
// Dos salidas concurrentes sobre el mismo producto se serializan por el lock:
// la verificación de stock y la escritura ocurren bajo el mismo bloqueo, por lo
// que el stock nunca queda negativo.
type RegisterMovementUseCase struct {
	txRunner TxRunner
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(txRunner TxRunner) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{txRunner: txRunner}
}

// MovementInput entrada para registrar un movimiento.
// SALIDA exige ClienteID y prohíbe ProveedorID; ENTRADA admite ProveedorID
// opcional y prohíbe ClienteID. Fecha nil usa el reloj del servidor.
type MovementInput struct {
	Tipo        string // ENTRADA | SALIDA
	Clave       string // clave del producto, match case-insensitive
	Cantidad    int    // entero positivo
	Documento   string
	Responsable string
	ProveedorID *string
	ClienteID   *string
	Fecha       *time.Time
}

// MovementResult movimiento registrado y producto con el stock ya actualizado.
type MovementResult struct {
	Movimiento *entity.Movimiento
	Producto   *entity.Producto
}

// RegisterMovement aplica un movimiento dentro de una sola transacción:
//  1. carga y bloquea la fila del producto por clave,
//  2. valida la contraparte referenciada,
//  3. calcula el nuevo stock (la salida que lo dejaría negativo falla con
//     ErrStockInsuficiente),
//  4. persiste el stock y agrega el movimiento al libro,
//  5. commit. Cualquier fallo revierte la transacción completa.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, input MovementInput) (*MovementResult, error) {
	if err := validarInput(input); err != nil {
		return nil, err
	}

	ahora := time.Now()
	fecha := ahora
	if input.Fecha != nil {
		fecha = *input.Fecha
	}

	var result *MovementResult
	err := uc.txRunner.Run(ctx, func(
		productos repository.ProductoRepository,
		movimientos repository.MovimientoRepository,
		clientes repository.ClienteRepository,
		proveedores repository.ProveedorRepository,
	) error {
		// Bloquea la fila del producto por el resto de la transacción
		producto, err := productos.GetByClaveForUpdate(ctx, input.Clave)
		if err != nil {
			return err
		}
		if producto == nil {
			return domain.ErrProductoNoEncontrado
		}

		if err := validarContraparte(ctx, input, clientes, proveedores); err != nil {
			return err
		}

		nuevoStock := producto.StockActual
		switch input.Tipo {
		case entity.MovimientoEntrada:
			nuevoStock += input.Cantidad
		case entity.MovimientoSalida:
			nuevoStock -= input.Cantidad
			if nuevoStock < 0 {
				return domain.ErrStockInsuficiente
			}
		}

		if err := productos.UpdateStock(ctx, producto.ID, nuevoStock); err != nil {
			return err
		}

		mov := &entity.Movimiento{
			ID:          uuid.New().String(),
			Tipo:        input.Tipo,
			ProductoID:  producto.ID,
			Cantidad:    input.Cantidad,
			Documento:   input.Documento,
			Responsable: input.Responsable,
			ProveedorID: input.ProveedorID,
			ClienteID:   input.ClienteID,
			Fecha:       fecha,
			CreatedAt:   ahora,
		}
		if err := movimientos.Create(ctx, mov); err != nil {
			return err
		}

		producto.StockActual = nuevoStock
		producto.UpdatedAt = ahora
		result = &MovementResult{Movimiento: mov, Producto: producto}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// validarInput valida lo que no requiere tocar la BD.
func validarInput(input MovementInput) error {
	if input.Clave == "" || input.Cantidad <= 0 {
		return domain.ErrEntradaInvalida
	}
	switch input.Tipo {
	case entity.MovimientoEntrada:
		if input.ClienteID != nil {
			return domain.ErrEntradaInvalida
		}
	case entity.MovimientoSalida:
		if input.ClienteID == nil || input.ProveedorID != nil {
			return domain.ErrEntradaInvalida
		}
	default:
		return domain.ErrEntradaInvalida
	}
	return nil
}

// validarContraparte verifica que el cliente o proveedor referenciado exista
// (dentro de la misma transacción que el movimiento).
func validarContraparte(
	ctx context.Context,
	input MovementInput,
	clientes repository.ClienteRepository,
	proveedores repository.ProveedorRepository,
) error {
	if input.ClienteID != nil {
		cliente, err := clientes.GetByID(ctx, *input.ClienteID)
		if err != nil {
			return err
		}
		if cliente == nil {
			return domain.ErrClienteNoEncontrado
		}
	}
	if input.ProveedorID != nil {
		proveedor, err := proveedores.GetByID(ctx, *input.ProveedorID)
		if err != nil {
			return err
		}
		if proveedor == nil {
			return domain.ErrProveedorNoEncontrado
		}
	}
	return nil
}
