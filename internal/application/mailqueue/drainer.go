package mailqueue

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

// Drainer drena el outbox de correos: toma entradas pendientes y las entrega
// al transporte externo. Semántica at-least-once: en fallo la entrada se
// reprograma con backoff lineal (retryBase * intentos) hasta maxIntentos;
// las que agotan intentos quedan visibles para inspección, nunca se borran.
type Drainer struct {
	cola        repository.CorreoRepository
	sender      Sender
	batch       int
	maxIntentos int
	retryBase   time.Duration
	timeout     time.Duration // por envío individual, no por lote
	log         *logger.Logger

	ticker  *time.Ticker
	stopCh  chan struct{}
	mu      sync.Mutex
	running bool

	// Ahora permite fijar el reloj en tests; nil usa time.Now.
	Ahora func() time.Time
}

// NewDrainer construye el drenador del outbox.
func NewDrainer(
	cola repository.CorreoRepository,
	sender Sender,
	batch, maxIntentos int,
	retryBase, timeout time.Duration,
	log *logger.Logger,
) *Drainer {
	return &Drainer{
		cola:        cola,
		sender:      sender,
		batch:       batch,
		maxIntentos: maxIntentos,
		retryBase:   retryBase,
		timeout:     timeout,
		log:         log,
	}
}

func (d *Drainer) ahora() time.Time {
	if d.Ahora != nil {
		return d.Ahora()
	}
	return time.Now()
}

// DrenarUnaVez procesa un lote de entradas elegibles y devuelve cuántas envió.
// Cada entrada se maneja por separado (sin transacción de lote): un envío
// fallido o lento no aborta el resto del lote. Los errores de entrega nunca
// se propagan: quedan registrados en la entrada y se reintentan después.
func (d *Drainer) DrenarUnaVez(ctx context.Context) (int, error) {
	ahora := d.ahora()
	pendientes, err := d.cola.ListPendientes(ctx, ahora, d.maxIntentos, d.batch)
	if err != nil {
		return 0, err
	}

	enviados := 0
	for _, correo := range pendientes {
		sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
		err := d.sender.Send(sendCtx, correo.Destinatario, correo.Asunto, correo.CuerpoHTML)
		cancel()

		if err != nil {
			intentos := correo.Intentos + 1
			// Backoff lineal escalado por intento; distinto de la cadencia
			// fija de recordatorios del notificador.
			proxima := ahora.Add(d.retryBase * time.Duration(intentos))
			if ferr := d.cola.MarcarFallo(ctx, correo.ID, err.Error(), proxima); ferr != nil {
				return enviados, ferr
			}
			if intentos >= d.maxIntentos {
				d.log.Error().Str("correo_id", correo.ID).Str("destinatario", correo.Destinatario).
					Int("intentos", intentos).Msg("correo agotó sus intentos de envío")
			} else {
				d.log.Warn().Str("correo_id", correo.ID).Err(err).
					Int("intentos", intentos).Msg("envío de correo falló, se reintentará")
			}
			continue
		}

		if err := d.cola.MarcarEnviado(ctx, correo.ID, d.ahora()); err != nil {
			return enviados, err
		}
		enviados++
	}
	return enviados, nil
}

// Start lanza el loop de drenado: una pasada inmediata y luego una por
// intervalo, hasta Stop. Un drenador detenido puede relanzarse con Start.
func (d *Drainer) Start(interval time.Duration) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.ticker = time.NewTicker(interval)
	d.stopCh = make(chan struct{})
	ticker, stopCh := d.ticker, d.stopCh
	d.mu.Unlock()

	d.log.Info().Dur("intervalo", interval).Msg("drenado de cola de correos iniciado")

	go func() {
		d.drainOnce()
		for {
			select {
			case <-ticker.C:
				d.drainOnce()
			case <-stopCh:
				d.log.Info().Msg("drenado de cola de correos detenido")
				return
			}
		}
	}()
}

func (d *Drainer) drainOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if n, err := d.DrenarUnaVez(ctx); err != nil {
		d.log.Error().Err(err).Msg("drenado de cola de correos")
	} else if n > 0 {
		d.log.Info().Int("enviados", n).Msg("correos enviados")
	}
}

// Stop detiene el loop de drenado. Idempotente.
func (d *Drainer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return
	}
	d.ticker.Stop()
	close(d.stopCh)
	d.running = false
}
