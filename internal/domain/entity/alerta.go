package entity

import "time"

// AlertaStock representa una instancia activa (o resuelta) de un producto
// por debajo de su stock mínimo. Invariante: a lo sumo una alerta activa
// por producto (índice único parcial sobre producto_id WHERE activa).
type AlertaStock struct {
	ID         string
	ProductoID string
	Activa     bool

	// Snapshot del último escaneo; se refresca en cada detección sin
	// reiniciar el calendario de notificaciones.
	StockActual int
	StockMinimo int

	DetectadaEn         time.Time
	UltimaNotificacion  *time.Time
	ProximaNotificacion time.Time
	VecesNotificada     int
	ResueltaEn          *time.Time
}
