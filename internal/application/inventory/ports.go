package inventory

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el libro de
// movimientos: si fn devuelve error, nada de lo escrito queda visible.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productos repository.ProductoRepository,
		movimientos repository.MovimientoRepository,
		clientes repository.ClienteRepository,
		proveedores repository.ProveedorRepository,
	) error) error
}
