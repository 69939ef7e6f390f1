package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.AlertaRepository = (*AlertaRepo)(nil)

const alertaColumns = `id, producto_id, activa, stock_actual, stock_minimo,
	detectada_en, ultima_notificacion, proxima_notificacion, veces_notificada, resuelta_en`

// AlertaRepo implementación de AlertaRepository sobre PostgreSQL (usable con pool o tx).
type AlertaRepo struct {
	q Querier
}

// NewAlertaRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAlertaRepository(q Querier) *AlertaRepo {
	return &AlertaRepo{q: q}
}

// Create inserta una alerta nueva. El índice único parcial sobre
// (producto_id WHERE activa) convierte la carrera entre detectores
// concurrentes en ErrDuplicado, que el detector trata como "ya activa".
func (r *AlertaRepo) Create(ctx context.Context, alerta *entity.AlertaStock) error {
	query := `
		INSERT INTO alertas_stock (id, producto_id, activa, stock_actual, stock_minimo,
			detectada_en, ultima_notificacion, proxima_notificacion, veces_notificada, resuelta_en)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		alerta.ID, alerta.ProductoID, alerta.Activa, alerta.StockActual, alerta.StockMinimo,
		alerta.DetectadaEn, alerta.UltimaNotificacion, alerta.ProximaNotificacion,
		alerta.VecesNotificada, alerta.ResueltaEn,
	)
	if err != nil {
		return mapPgError("insert alerta", err)
	}
	return nil
}

// GetActivaByProducto devuelve la alerta activa del producto, o (nil, nil).
func (r *AlertaRepo) GetActivaByProducto(ctx context.Context, productoID string) (*entity.AlertaStock, error) {
	query := `SELECT ` + alertaColumns + ` FROM alertas_stock WHERE producto_id = $1 AND activa`
	var a entity.AlertaStock
	err := r.q.QueryRow(ctx, query, productoID).Scan(
		&a.ID, &a.ProductoID, &a.Activa, &a.StockActual, &a.StockMinimo,
		&a.DetectadaEn, &a.UltimaNotificacion, &a.ProximaNotificacion,
		&a.VecesNotificada, &a.ResueltaEn,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get alerta activa: %w", err)
	}
	return &a, nil
}

// RefreshSnapshot actualiza el snapshot de stock sin tocar calendario ni contador.
func (r *AlertaRepo) RefreshSnapshot(ctx context.Context, id string, stockActual, stockMinimo int) error {
	_, err := r.q.Exec(ctx,
		`UPDATE alertas_stock SET stock_actual = $2, stock_minimo = $3 WHERE id = $1 AND activa`,
		id, stockActual, stockMinimo,
	)
	if err != nil {
		return mapPgError("refresh alerta", err)
	}
	return nil
}

// ListPorNotificar devuelve alertas activas vencidas, en orden de vencimiento.
func (r *AlertaRepo) ListPorNotificar(ctx context.Context, ahora time.Time, limit int) ([]*entity.AlertaStock, error) {
	query := `
		SELECT ` + alertaColumns + `
		FROM alertas_stock
		WHERE activa AND proxima_notificacion <= $1
		ORDER BY proxima_notificacion ASC
		LIMIT $2`
	return r.list(ctx, query, ahora, limit)
}

// ListRecuperadas devuelve alertas activas cuyo producto ya alcanzó su mínimo.
func (r *AlertaRepo) ListRecuperadas(ctx context.Context, limit int) ([]*entity.AlertaStock, error) {
	query := `
		SELECT a.id, a.producto_id, a.activa, a.stock_actual, a.stock_minimo,
			a.detectada_en, a.ultima_notificacion, a.proxima_notificacion, a.veces_notificada, a.resuelta_en
		FROM alertas_stock a
		JOIN productos p ON p.id = a.producto_id
		WHERE a.activa AND p.stock_actual >= p.stock_minimo
		ORDER BY a.detectada_en ASC
		LIMIT $1`
	return r.list(ctx, query, limit)
}

// MarcarNotificada registra el envío y reprograma la próxima notificación.
func (r *AlertaRepo) MarcarNotificada(ctx context.Context, id string, ahora, proxima time.Time) error {
	_, err := r.q.Exec(ctx,
		`UPDATE alertas_stock
		 SET ultima_notificacion = $2, proxima_notificacion = $3, veces_notificada = veces_notificada + 1
		 WHERE id = $1 AND activa`,
		id, ahora, proxima,
	)
	if err != nil {
		return mapPgError("marcar alerta notificada", err)
	}
	return nil
}

// Cerrar desactiva la alerta. Idempotente: sobre una ya inactiva no hace nada.
func (r *AlertaRepo) Cerrar(ctx context.Context, id string, ahora time.Time) error {
	_, err := r.q.Exec(ctx,
		`UPDATE alertas_stock SET activa = FALSE, resuelta_en = $2 WHERE id = $1 AND activa`,
		id, ahora,
	)
	if err != nil {
		return mapPgError("cerrar alerta", err)
	}
	return nil
}

// ListActivas lista alertas activas para la vista de operación.
func (r *AlertaRepo) ListActivas(ctx context.Context, limit, offset int) ([]*entity.AlertaStock, error) {
	query := `
		SELECT ` + alertaColumns + `
		FROM alertas_stock WHERE activa
		ORDER BY detectada_en DESC LIMIT $1 OFFSET $2`
	return r.list(ctx, query, limit, offset)
}

func (r *AlertaRepo) list(ctx context.Context, query string, args ...any) ([]*entity.AlertaStock, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list alertas: %w", err)
	}
	defer rows.Close()
	var list []*entity.AlertaStock
	for rows.Next() {
		var a entity.AlertaStock
		if err := rows.Scan(&a.ID, &a.ProductoID, &a.Activa, &a.StockActual, &a.StockMinimo,
			&a.DetectadaEn, &a.UltimaNotificacion, &a.ProximaNotificacion,
			&a.VecesNotificada, &a.ResueltaEn); err != nil {
			return nil, fmt.Errorf("scan alerta: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}
