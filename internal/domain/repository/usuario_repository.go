package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// UsuarioRepository puerto del directorio de destinatarios.
type UsuarioRepository interface {
	Create(ctx context.Context, usuario *entity.Usuario) error
	// FindJefeAlmacenEmail devuelve el email del jefe de almacén, o cadena
	// vacía si no hay ninguno configurado (el ciclo de notificación se
	// convierte en no-op y las alertas quedan pendientes).
	FindJefeAlmacenEmail(ctx context.Context) (string, error)
}
