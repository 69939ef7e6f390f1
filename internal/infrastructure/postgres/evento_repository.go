package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.EventoRepository = (*EventoRepo)(nil)

// EventoRepo bitácora append-only sobre PostgreSQL (usable con pool o tx).
type EventoRepo struct {
	q Querier
}

// NewEventoRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEventoRepository(q Querier) *EventoRepo {
	return &EventoRepo{q: q}
}

// Append agrega un evento a la bitácora.
func (r *EventoRepo) Append(ctx context.Context, evento *entity.EventoStock) error {
	if evento.ID == "" {
		evento.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx,
		`INSERT INTO eventos_stock (id, producto_id, tipo, stock_actual, stock_minimo, creado_en)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		evento.ID, evento.ProductoID, evento.Tipo, evento.StockActual, evento.StockMinimo, evento.CreadoEn,
	)
	if err != nil {
		return mapPgError("insert evento", err)
	}
	return nil
}

// ListByProducto lista los eventos de un producto, más recientes primero.
func (r *EventoRepo) ListByProducto(ctx context.Context, productoID string, limit, offset int) ([]*entity.EventoStock, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, producto_id, tipo, stock_actual, stock_minimo, creado_en
		 FROM eventos_stock WHERE producto_id = $1
		 ORDER BY creado_en DESC LIMIT $2 OFFSET $3`,
		productoID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list eventos: %w", err)
	}
	defer rows.Close()
	var list []*entity.EventoStock
	for rows.Next() {
		var e entity.EventoStock
		if err := rows.Scan(&e.ID, &e.ProductoID, &e.Tipo, &e.StockActual, &e.StockMinimo, &e.CreadoEn); err != nil {
			return nil, fmt.Errorf("scan evento: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
