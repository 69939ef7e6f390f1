package mailqueue

import "context"

// Sender transporte externo de correo. El pipeline no asume ninguna garantía
// de entrega más allá de los reintentos del propio outbox.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}
