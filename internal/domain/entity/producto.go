package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Producto representa un artículo del almacén. El stock es entero (unidades)
// y solo lo mutan el procesador de movimientos o una actualización administrativa.
// Invariante: StockActual nunca queda negativo después de confirmar un movimiento.
type Producto struct {
	ID          string
	Clave       string // código único, búsqueda case-insensitive
	Nombre      string
	Precio      decimal.Decimal
	StockActual int
	StockMinimo int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BajoMinimo indica si el producto está por debajo de su stock mínimo
// (comparación estricta: en el límite exacto NO hay alerta).
func (p *Producto) BajoMinimo() bool {
	return p.StockActual < p.StockMinimo
}

// Faltante devuelve las unidades que faltan para alcanzar el mínimo.
func (p *Producto) Faltante() int {
	return p.StockMinimo - p.StockActual
}
