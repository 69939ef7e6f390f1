package entity

import "time"

// Tipos de evento de la bitácora de stock bajo.
const (
	EventoDetectada    = "detectada"
	EventoRecordatorio = "recordatorio"
	EventoResuelta     = "resuelta"
)

// EventoStock es un registro inmutable de auditoría: una fila por acción del
// detector, el notificador o el resolutor. Nunca se modifica.
type EventoStock struct {
	ID          string
	ProductoID  string
	Tipo        string // detectada | recordatorio | resuelta
	StockActual int
	StockMinimo int
	CreadoEn    time.Time
}
