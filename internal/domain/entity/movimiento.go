package entity

import "time"

// Tipos de movimiento de inventario.
const (
	MovimientoEntrada = "ENTRADA"
	MovimientoSalida  = "SALIDA"
)

// Movimiento representa una entrada o salida de stock contra un producto.
// Es un registro inmutable: se crea exactamente una vez por registro y
// nunca se modifica ni se borra (libro mayor append-only).
type Movimiento struct {
	ID          string
	Tipo        string // ENTRADA | SALIDA
	ProductoID  string
	Cantidad    int // siempre positivo; el signo lo da el tipo
	Documento   string
	Responsable string
	// Contraparte: proveedor para entradas, cliente para salidas (excluyentes).
	ProveedorID *string
	ClienteID   *string
	Fecha       time.Time
	CreatedAt   time.Time
}
