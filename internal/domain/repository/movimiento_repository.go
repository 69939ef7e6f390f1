package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// MovimientoRepository define el puerto de persistencia para el libro de
// movimientos. Es append-only: no hay Update ni Delete.
type MovimientoRepository interface {
	Create(ctx context.Context, mov *entity.Movimiento) error
	ListByProducto(ctx context.Context, productoID string, limit, offset int) ([]*entity.Movimiento, error)
}
