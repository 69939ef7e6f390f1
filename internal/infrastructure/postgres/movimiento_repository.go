package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.MovimientoRepository = (*MovimientoRepo)(nil)

// MovimientoRepo implementación sobre PostgreSQL del libro de movimientos
// (usable con pool o tx). Append-only.
type MovimientoRepo struct {
	q Querier
}

// NewMovimientoRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovimientoRepository(q Querier) *MovimientoRepo {
	return &MovimientoRepo{q: q}
}

// Create agrega un movimiento al libro. Las restricciones de la tabla
// (cantidad > 0, FKs de producto y contrapartes) se mapean a errores de dominio.
func (r *MovimientoRepo) Create(ctx context.Context, mov *entity.Movimiento) error {
	if mov.ID == "" {
		mov.ID = uuid.New().String()
	}
	query := `
		INSERT INTO movimientos (id, tipo, producto_id, cantidad, documento, responsable, proveedor_id, cliente_id, fecha, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		mov.ID, mov.Tipo, mov.ProductoID, mov.Cantidad, mov.Documento,
		mov.Responsable, mov.ProveedorID, mov.ClienteID, mov.Fecha, mov.CreatedAt,
	)
	if err != nil {
		return mapPgError("insert movimiento", err)
	}
	return nil
}

// ListByProducto lista los movimientos de un producto, más recientes primero.
func (r *MovimientoRepo) ListByProducto(ctx context.Context, productoID string, limit, offset int) ([]*entity.Movimiento, error) {
	query := `
		SELECT id, tipo, producto_id, cantidad, documento, responsable, proveedor_id, cliente_id, fecha, created_at
		FROM movimientos WHERE producto_id = $1
		ORDER BY fecha DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, productoID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list movimientos: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movimiento
	for rows.Next() {
		var m entity.Movimiento
		if err := rows.Scan(&m.ID, &m.Tipo, &m.ProductoID, &m.Cantidad, &m.Documento,
			&m.Responsable, &m.ProveedorID, &m.ClienteID, &m.Fecha, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movimiento: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
