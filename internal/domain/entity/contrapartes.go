package entity

import "time"

// Cliente es la contraparte de una salida de stock.
type Cliente struct {
	ID        string
	Nombre    string
	Email     string
	CreatedAt time.Time
}

// Proveedor es la contraparte (opcional) de una entrada de stock.
type Proveedor struct {
	ID        string
	Nombre    string
	Email     string
	CreatedAt time.Time
}
