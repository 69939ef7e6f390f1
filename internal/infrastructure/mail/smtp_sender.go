package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jhoicas/almacen-api/internal/application/mailqueue"
	"github.com/jhoicas/almacen-api/pkg/config"
)

var _ mailqueue.Sender = (*SMTPSender)(nil)

// SMTPSender transporte de correo sobre SMTP plano. Es el colaborador externo
// del outbox: el pipeline nunca lo llama directo, solo el drenador.
type SMTPSender struct {
	cfg config.SMTPConfig
}

// NewSMTPSender construye el transporte con la configuración SMTP.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send envía un correo HTML. El ctx acota la llamada (el drenador le pone
// timeout por envío); smtp.SendMail no acepta ctx, así que el corte se hace
// en una goroutine y el canal de resultado.
func (s *SMTPSender) Send(ctx context.Context, to, subject, html string) error {
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	mime := "MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n"
	msg := []byte(fmt.Sprintf("To: %s\r\nFrom: %s\r\nSubject: %s\r\n%s%s", to, s.cfg.From, subject, mime, html))

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, s.cfg.From, []string{to}, msg)
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
