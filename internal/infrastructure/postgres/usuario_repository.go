package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.UsuarioRepository = (*UsuarioRepo)(nil)

// UsuarioRepo implementación de UsuarioRepository sobre PostgreSQL.
type UsuarioRepo struct {
	q Querier
}

// NewUsuarioRepository construye el adaptador. Pasar pool o tx (Querier).
func NewUsuarioRepository(q Querier) *UsuarioRepo {
	return &UsuarioRepo{q: q}
}

func (r *UsuarioRepo) Create(ctx context.Context, usuario *entity.Usuario) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO usuarios (id, nombre, email, rol, created_at) VALUES ($1, $2, $3, $4, now())`,
		usuario.ID, usuario.Nombre, usuario.Email, usuario.Rol,
	)
	if err != nil {
		return mapPgError("insert usuario", err)
	}
	return nil
}

// FindJefeAlmacenEmail devuelve el email del jefe de almacén más antiguo, o
// cadena vacía si no hay ninguno.
func (r *UsuarioRepo) FindJefeAlmacenEmail(ctx context.Context) (string, error) {
	var email string
	err := r.q.QueryRow(ctx,
		`SELECT email FROM usuarios WHERE rol = $1 ORDER BY created_at LIMIT 1`,
		entity.RolJefeAlmacen,
	).Scan(&email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("find jefe de almacén: %w", err)
	}
	return email, nil
}
