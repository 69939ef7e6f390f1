package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// ClienteRepository puerto de persistencia para clientes (contraparte de salidas).
// GetByID devuelve (nil, nil) si no existe.
type ClienteRepository interface {
	Create(ctx context.Context, cliente *entity.Cliente) error
	GetByID(ctx context.Context, id string) (*entity.Cliente, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Cliente, error)
}

// ProveedorRepository puerto de persistencia para proveedores (contraparte de entradas).
type ProveedorRepository interface {
	Create(ctx context.Context, proveedor *entity.Proveedor) error
	GetByID(ctx context.Context, id string) (*entity.Proveedor, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Proveedor, error)
}
