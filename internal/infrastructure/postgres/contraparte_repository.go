package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.ClienteRepository = (*ClienteRepo)(nil)
var _ repository.ProveedorRepository = (*ProveedorRepo)(nil)

// ClienteRepo implementación de ClienteRepository sobre PostgreSQL.
type ClienteRepo struct {
	q Querier
}

// NewClienteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewClienteRepository(q Querier) *ClienteRepo {
	return &ClienteRepo{q: q}
}

func (r *ClienteRepo) Create(ctx context.Context, cliente *entity.Cliente) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO clientes (id, nombre, email, created_at) VALUES ($1, $2, $3, now())`,
		cliente.ID, cliente.Nombre, cliente.Email,
	)
	if err != nil {
		return mapPgError("insert cliente", err)
	}
	return nil
}

func (r *ClienteRepo) GetByID(ctx context.Context, id string) (*entity.Cliente, error) {
	var c entity.Cliente
	err := r.q.QueryRow(ctx,
		`SELECT id, nombre, email, created_at FROM clientes WHERE id = $1`, id,
	).Scan(&c.ID, &c.Nombre, &c.Email, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cliente: %w", err)
	}
	return &c, nil
}

func (r *ClienteRepo) List(ctx context.Context, limit, offset int) ([]*entity.Cliente, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, nombre, email, created_at FROM clientes ORDER BY nombre LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list clientes: %w", err)
	}
	defer rows.Close()
	var list []*entity.Cliente
	for rows.Next() {
		var c entity.Cliente
		if err := rows.Scan(&c.ID, &c.Nombre, &c.Email, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cliente: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

// ProveedorRepo implementación de ProveedorRepository sobre PostgreSQL.
type ProveedorRepo struct {
	q Querier
}

// NewProveedorRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProveedorRepository(q Querier) *ProveedorRepo {
	return &ProveedorRepo{q: q}
}

func (r *ProveedorRepo) Create(ctx context.Context, proveedor *entity.Proveedor) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO proveedores (id, nombre, email, created_at) VALUES ($1, $2, $3, now())`,
		proveedor.ID, proveedor.Nombre, proveedor.Email,
	)
	if err != nil {
		return mapPgError("insert proveedor", err)
	}
	return nil
}

func (r *ProveedorRepo) GetByID(ctx context.Context, id string) (*entity.Proveedor, error) {
	var p entity.Proveedor
	err := r.q.QueryRow(ctx,
		`SELECT id, nombre, email, created_at FROM proveedores WHERE id = $1`, id,
	).Scan(&p.ID, &p.Nombre, &p.Email, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get proveedor: %w", err)
	}
	return &p, nil
}

func (r *ProveedorRepo) List(ctx context.Context, limit, offset int) ([]*entity.Proveedor, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, nombre, email, created_at FROM proveedores ORDER BY nombre LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list proveedores: %w", err)
	}
	defer rows.Close()
	var list []*entity.Proveedor
	for rows.Next() {
		var p entity.Proveedor
		if err := rows.Scan(&p.ID, &p.Nombre, &p.Email, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan proveedor: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
