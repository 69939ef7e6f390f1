package repository

import (
	"context"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// AlertaRepository puerto de persistencia para alertas de stock bajo.
type AlertaRepository interface {
	// Create inserta una alerta nueva. Si ya existe una activa para el mismo
	// producto (índice único parcial) devuelve domain.ErrDuplicado.
	Create(ctx context.Context, alerta *entity.AlertaStock) error
	// GetActivaByProducto devuelve la alerta activa del producto o (nil, nil).
	GetActivaByProducto(ctx context.Context, productoID string) (*entity.AlertaStock, error)
	// RefreshSnapshot actualiza solo el snapshot de stock de una alerta activa,
	// sin tocar el calendario de notificaciones ni el contador.
	RefreshSnapshot(ctx context.Context, id string, stockActual, stockMinimo int) error
	// ListPorNotificar devuelve alertas activas con proxima_notificacion <= ahora,
	// ordenadas por proxima_notificacion ascendente, acotadas a limit.
	ListPorNotificar(ctx context.Context, ahora time.Time, limit int) ([]*entity.AlertaStock, error)
	// ListRecuperadas devuelve alertas activas cuyo producto ya alcanzó su
	// stock mínimo (stock_actual >= stock_minimo), acotadas a limit.
	ListRecuperadas(ctx context.Context, limit int) ([]*entity.AlertaStock, error)
	// MarcarNotificada registra un envío: ultima_notificacion, contador +1 y
	// reprograma proxima_notificacion.
	MarcarNotificada(ctx context.Context, id string, ahora, proxima time.Time) error
	// Cerrar desactiva la alerta y fija resuelta_en.
	Cerrar(ctx context.Context, id string, ahora time.Time) error
	ListActivas(ctx context.Context, limit, offset int) ([]*entity.AlertaStock, error)
}

// EventoRepository bitácora append-only de acciones del pipeline.
type EventoRepository interface {
	Append(ctx context.Context, evento *entity.EventoStock) error
	ListByProducto(ctx context.Context, productoID string, limit, offset int) ([]*entity.EventoStock, error)
}
