package entity

import "time"

// CorreoPendiente es una entrada del outbox de correos: el pipeline de alertas
// encola y un loop de drenado independiente envía. Las entradas nunca se
// borran (auditoría); las que agotan los intentos quedan visibles pero
// excluidas de futuros envíos.
type CorreoPendiente struct {
	ID             string
	Destinatario   string
	Asunto         string
	CuerpoHTML     string
	Intentos       int
	ProgramadoPara time.Time // próximo momento elegible de envío
	EnviadoEn      *time.Time
	UltimoError    *string
	CreadoEn       time.Time
}
