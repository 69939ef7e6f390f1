package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/almacen-api/internal/domain"
)

// Códigos de error PostgreSQL relevantes para el dominio.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// mapPgError traduce errores de PostgreSQL a errores de dominio:
// 23505 → ErrDuplicado, 23503 → ErrClaveForanea, 23514 → ErrRestriccion.
// Cualquier otro error se envuelve con la operación que falló.
func mapPgError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return domain.ErrDuplicado
		case codeForeignKeyViolation:
			return domain.ErrClaveForanea
		case codeCheckViolation:
			return domain.ErrRestriccion
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
