package entity

import "time"

// Roles de usuario relevantes para el pipeline de alertas.
const (
	RolJefeAlmacen = "jefe_almacen"
)

// Usuario del sistema. Solo interesa aquí como directorio de destinatarios:
// el jefe de almacén recibe las notificaciones de stock bajo.
type Usuario struct {
	ID        string
	Nombre    string
	Email     string
	Rol       string
	CreatedAt time.Time
}
