package repository

import (
	"context"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// CorreoRepository puerto del outbox de correos. Las entradas nunca se borran.
type CorreoRepository interface {
	Encolar(ctx context.Context, correo *entity.CorreoPendiente) error
	// ListPendientes devuelve hasta limit entradas sin enviar (enviado_en IS NULL)
	// con intentos < maxIntentos y programado_para <= ahora, ordenadas por
	// programado_para ascendente.
	ListPendientes(ctx context.Context, ahora time.Time, maxIntentos, limit int) ([]*entity.CorreoPendiente, error)
	MarcarEnviado(ctx context.Context, id string, ahora time.Time) error
	// MarcarFallo incrementa intentos, registra el error y reprograma el envío.
	MarcarFallo(ctx context.Context, id, mensajeError string, proxima time.Time) error
	List(ctx context.Context, limit, offset int) ([]*entity.CorreoPendiente, error)
}
