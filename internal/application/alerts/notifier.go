package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

// Notifier encola las notificaciones pendientes de las alertas activas.
// No envía correos: solo escribe en el outbox; el drenado es un loop aparte,
// así una caída del transporte nunca bloquea la detección ni la resolución.
type Notifier struct {
	alertas   repository.AlertaRepository
	productos repository.ProductoRepository
	eventos   repository.EventoRepository
	cola      repository.CorreoRepository
	usuarios  repository.UsuarioRepository
	intervalo time.Duration // cadencia fija entre recordatorios, no crece
	batch     int
	log       *logger.Logger

	// Ahora permite fijar el reloj en tests; nil usa time.Now.
	Ahora func() time.Time
}

// NewNotifier construye el notificador. intervalo es la cadencia de
// recordatorios; batch acota el trabajo por ciclo.
func NewNotifier(
	alertas repository.AlertaRepository,
	productos repository.ProductoRepository,
	eventos repository.EventoRepository,
	cola repository.CorreoRepository,
	usuarios repository.UsuarioRepository,
	intervalo time.Duration,
	batch int,
	log *logger.Logger,
) *Notifier {
	return &Notifier{
		alertas:   alertas,
		productos: productos,
		eventos:   eventos,
		cola:      cola,
		usuarios:  usuarios,
		intervalo: intervalo,
		batch:     batch,
		log:       log,
	}
}

func (n *Notifier) ahora() time.Time {
	if n.Ahora != nil {
		return n.Ahora()
	}
	return time.Now()
}

// NotificarPendientes procesa las alertas activas cuya próxima notificación ya
// venció, en orden de vencimiento y acotadas al batch. Devuelve cuántas
// notificaciones encoló.
//
// El destinatario se resuelve una sola vez por ciclo. Sin destinatario
// configurado el ciclo es no-op: ninguna alerta se marca notificada, así que
// siguen vencidas y se reintentan en el siguiente tick.
func (n *Notifier) NotificarPendientes(ctx context.Context) (int, error) {
	destinatario, err := n.usuarios.FindJefeAlmacenEmail(ctx)
	if err != nil {
		return 0, err
	}
	if destinatario == "" {
		n.log.Warn().Msg("sin jefe de almacén configurado: notificaciones pospuestas")
		return 0, nil
	}

	ahora := n.ahora()
	vencidas, err := n.alertas.ListPorNotificar(ctx, ahora, n.batch)
	if err != nil {
		return 0, err
	}

	enviadas := 0
	for _, alerta := range vencidas {
		producto, err := n.productos.GetByID(ctx, alerta.ProductoID)
		if err != nil {
			return enviadas, err
		}
		if producto == nil {
			// Producto borrado: cerrar la alerta y seguir.
			if err := n.alertas.Cerrar(ctx, alerta.ID, ahora); err != nil {
				return enviadas, err
			}
			continue
		}

		asunto, cuerpo := n.construirCorreo(producto, alerta)
		if err := n.cola.Encolar(ctx, &entity.CorreoPendiente{
			ID:             uuid.New().String(),
			Destinatario:   destinatario,
			Asunto:         asunto,
			CuerpoHTML:     cuerpo,
			ProgramadoPara: ahora,
			CreadoEn:       ahora,
		}); err != nil {
			return enviadas, err
		}

		tipoEvento := entity.EventoRecordatorio
		if alerta.VecesNotificada == 0 {
			tipoEvento = entity.EventoDetectada
		}
		if err := n.eventos.Append(ctx, &entity.EventoStock{
			ID:          uuid.New().String(),
			ProductoID:  producto.ID,
			Tipo:        tipoEvento,
			StockActual: producto.StockActual,
			StockMinimo: producto.StockMinimo,
			CreadoEn:    ahora,
		}); err != nil {
			return enviadas, err
		}

		// Cadencia fija: la próxima notificación es ahora + intervalo,
		// sin crecimiento exponencial.
		if err := n.alertas.MarcarNotificada(ctx, alerta.ID, ahora, ahora.Add(n.intervalo)); err != nil {
			return enviadas, err
		}
		enviadas++
	}
	return enviadas, nil
}

// construirCorreo arma asunto y cuerpo. La primera notificación usa un asunto
// distinto de los recordatorios posteriores.
func (n *Notifier) construirCorreo(p *entity.Producto, alerta *entity.AlertaStock) (asunto, cuerpo string) {
	if alerta.VecesNotificada == 0 {
		asunto = fmt.Sprintf("Alerta de stock bajo: %s", p.Nombre)
	} else {
		asunto = fmt.Sprintf("Recordatorio de stock bajo: %s", p.Nombre)
	}
	cuerpo = fmt.Sprintf(
		`<h2>Stock bajo</h2>
<p>El producto <strong>%s</strong> (clave %s) está por debajo de su stock mínimo.</p>
<table>
<tr><td>Stock actual</td><td>%d</td></tr>
<tr><td>Stock mínimo</td><td>%d</td></tr>
<tr><td>Faltante</td><td>%d</td></tr>
<tr><td>Notificaciones enviadas</td><td>%d</td></tr>
</table>`,
		p.Nombre, p.Clave, p.StockActual, p.StockMinimo, p.Faltante(), alerta.VecesNotificada+1,
	)
	return asunto, cuerpo
}
