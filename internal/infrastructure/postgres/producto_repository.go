package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.ProductoRepository = (*ProductoRepo)(nil)

const productoColumns = `id, clave, nombre, precio, stock_actual, stock_minimo, created_at, updated_at`

// ProductoRepo implementación del puerto ProductoRepository sobre PostgreSQL (usable con pool o tx).
type ProductoRepo struct {
	q Querier
}

// NewProductoRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductoRepository(q Querier) *ProductoRepo {
	return &ProductoRepo{q: q}
}

func scanProducto(row pgx.Row) (*entity.Producto, error) {
	var p entity.Producto
	err := row.Scan(&p.ID, &p.Clave, &p.Nombre, &p.Precio, &p.StockActual, &p.StockMinimo, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// Create persiste un producto nuevo. Clave duplicada devuelve ErrDuplicado.
func (r *ProductoRepo) Create(ctx context.Context, producto *entity.Producto) error {
	query := `
		INSERT INTO productos (id, clave, nombre, precio, stock_actual, stock_minimo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())`
	_, err := r.q.Exec(ctx, query,
		producto.ID, producto.Clave, producto.Nombre, producto.Precio,
		producto.StockActual, producto.StockMinimo,
	)
	if err != nil {
		return mapPgError("insert producto", err)
	}
	return nil
}

// GetByID obtiene un producto por ID, o (nil, nil) si no existe.
func (r *ProductoRepo) GetByID(ctx context.Context, id string) (*entity.Producto, error) {
	query := `SELECT ` + productoColumns + ` FROM productos WHERE id = $1`
	p, err := scanProducto(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get producto: %w", err)
	}
	return p, nil
}

// GetByClave obtiene un producto por clave (case-insensitive).
func (r *ProductoRepo) GetByClave(ctx context.Context, clave string) (*entity.Producto, error) {
	query := `SELECT ` + productoColumns + ` FROM productos WHERE LOWER(clave) = LOWER($1)`
	p, err := scanProducto(r.q.QueryRow(ctx, query, clave))
	if err != nil {
		return nil, fmt.Errorf("get producto by clave: %w", err)
	}
	return p, nil
}

// GetByClaveForUpdate obtiene el producto y bloquea su fila por el resto de la
// transacción (SELECT ... FOR UPDATE). Serializa movimientos concurrentes
// sobre el mismo producto; movimientos sobre productos distintos no se tocan.
func (r *ProductoRepo) GetByClaveForUpdate(ctx context.Context, clave string) (*entity.Producto, error) {
	query := `SELECT ` + productoColumns + ` FROM productos WHERE LOWER(clave) = LOWER($1) FOR UPDATE`
	p, err := scanProducto(r.q.QueryRow(ctx, query, clave))
	if err != nil {
		return nil, fmt.Errorf("get producto for update: %w", err)
	}
	return p, nil
}

// UpdateStock actualiza solo el stock del producto (usado por el motor de movimientos).
func (r *ProductoRepo) UpdateStock(ctx context.Context, id string, stock int) error {
	_, err := r.q.Exec(ctx,
		`UPDATE productos SET stock_actual = $2, updated_at = now() WHERE id = $1`,
		id, stock,
	)
	if err != nil {
		return mapPgError("update stock", err)
	}
	return nil
}

// ListBajoMinimo devuelve los productos con stock_actual < stock_minimo
// (estricto), ordenados por déficit descendente (mayor quiebre primero).
func (r *ProductoRepo) ListBajoMinimo(ctx context.Context) ([]*entity.Producto, error) {
	query := `
		SELECT ` + productoColumns + `
		FROM productos
		WHERE stock_actual < stock_minimo
		ORDER BY (stock_minimo - stock_actual) DESC`
	return r.list(ctx, query)
}

// List lista productos con paginación.
func (r *ProductoRepo) List(ctx context.Context, limit, offset int) ([]*entity.Producto, error) {
	query := `SELECT ` + productoColumns + ` FROM productos ORDER BY nombre LIMIT $1 OFFSET $2`
	return r.list(ctx, query, limit, offset)
}

func (r *ProductoRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Producto, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list productos: %w", err)
	}
	defer rows.Close()
	var list []*entity.Producto
	for rows.Next() {
		var p entity.Producto
		if err := rows.Scan(&p.ID, &p.Clave, &p.Nombre, &p.Precio, &p.StockActual, &p.StockMinimo, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan producto: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
