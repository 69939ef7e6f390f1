package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.CorreoRepository = (*CorreoRepo)(nil)

const correoColumns = `id, destinatario, asunto, cuerpo_html, intentos, programado_para, enviado_en, ultimo_error, creado_en`

// CorreoRepo outbox de correos sobre PostgreSQL (usable con pool o tx).
type CorreoRepo struct {
	q Querier
}

// NewCorreoRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCorreoRepository(q Querier) *CorreoRepo {
	return &CorreoRepo{q: q}
}

// Encolar agrega una entrada pendiente al outbox.
func (r *CorreoRepo) Encolar(ctx context.Context, correo *entity.CorreoPendiente) error {
	query := `
		INSERT INTO cola_correos (id, destinatario, asunto, cuerpo_html, intentos, programado_para, creado_en)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		correo.ID, correo.Destinatario, correo.Asunto, correo.CuerpoHTML,
		correo.Intentos, correo.ProgramadoPara, correo.CreadoEn,
	)
	if err != nil {
		return mapPgError("encolar correo", err)
	}
	return nil
}

// ListPendientes devuelve las entradas elegibles para envío: sin enviar, con
// intentos por debajo del máximo y ya programadas, en orden de programación.
// Las que agotaron intentos quedan fuera para siempre pero siguen en la tabla.
func (r *CorreoRepo) ListPendientes(ctx context.Context, ahora time.Time, maxIntentos, limit int) ([]*entity.CorreoPendiente, error) {
	query := `
		SELECT ` + correoColumns + `
		FROM cola_correos
		WHERE enviado_en IS NULL AND intentos < $2 AND programado_para <= $1
		ORDER BY programado_para ASC
		LIMIT $3`
	return r.list(ctx, query, ahora, maxIntentos, limit)
}

// MarcarEnviado fija enviado_en y limpia el último error.
func (r *CorreoRepo) MarcarEnviado(ctx context.Context, id string, ahora time.Time) error {
	_, err := r.q.Exec(ctx,
		`UPDATE cola_correos SET enviado_en = $2, ultimo_error = NULL WHERE id = $1`,
		id, ahora,
	)
	if err != nil {
		return mapPgError("marcar correo enviado", err)
	}
	return nil
}

// MarcarFallo incrementa intentos, guarda el error y reprograma el envío.
func (r *CorreoRepo) MarcarFallo(ctx context.Context, id, mensajeError string, proxima time.Time) error {
	_, err := r.q.Exec(ctx,
		`UPDATE cola_correos
		 SET intentos = intentos + 1, ultimo_error = $2, programado_para = $3
		 WHERE id = $1`,
		id, mensajeError, proxima,
	)
	if err != nil {
		return mapPgError("marcar fallo de correo", err)
	}
	return nil
}

// List lista entradas del outbox (incluidas las agotadas) para inspección.
func (r *CorreoRepo) List(ctx context.Context, limit, offset int) ([]*entity.CorreoPendiente, error) {
	query := `SELECT ` + correoColumns + ` FROM cola_correos ORDER BY creado_en DESC LIMIT $1 OFFSET $2`
	return r.list(ctx, query, limit, offset)
}

func (r *CorreoRepo) list(ctx context.Context, query string, args ...any) ([]*entity.CorreoPendiente, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list correos: %w", err)
	}
	defer rows.Close()
	var list []*entity.CorreoPendiente
	for rows.Next() {
		var c entity.CorreoPendiente
		if err := rows.Scan(&c.ID, &c.Destinatario, &c.Asunto, &c.CuerpoHTML, &c.Intentos,
			&c.ProgramadoPara, &c.EnviadoEn, &c.UltimoError, &c.CreadoEn); err != nil {
			return nil, fmt.Errorf("scan correo: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}
