package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// ProductoRepository define el puerto de persistencia para Producto (DIP).
// Los métodos Get devuelven (nil, nil) si el producto no existe.
type ProductoRepository interface {
	Create(ctx context.Context, producto *entity.Producto) error
	GetByID(ctx context.Context, id string) (*entity.Producto, error)
	GetByClave(ctx context.Context, clave string) (*entity.Producto, error)
	// GetByClaveForUpdate bloquea la fila del producto por el resto de la
	// transacción (SELECT ... FOR UPDATE). Solo tiene sentido dentro de un TxRunner.
	GetByClaveForUpdate(ctx context.Context, clave string) (*entity.Producto, error)
	UpdateStock(ctx context.Context, id string, stock int) error
	// ListBajoMinimo devuelve los productos con stock_actual < stock_minimo
	// (estricto: el límite exacto no cuenta).
	ListBajoMinimo(ctx context.Context) ([]*entity.Producto, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Producto, error)
}
