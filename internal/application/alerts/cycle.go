package alerts

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/almacen-api/pkg/logger"
)

// Cycle orquesta el ciclo periódico detector → notificador → resolutor.
// Antes de cada pasada intenta tomar el lock advisory: si otra réplica ya lo
// tiene, la pasada se salta completa, garantizando que bajo escalado
// horizontal solo una instancia corre el ciclo a la vez.
type Cycle struct {
	lock     CycleLock
	detector *Detector
	notifier *Notifier
	resolver *Resolver
	log      *logger.Logger

	ticker  *time.Ticker
	stopCh  chan struct{}
	mu      sync.Mutex
	running bool
}

// NewCycle construye el orquestador del ciclo.
func NewCycle(lock CycleLock, detector *Detector, notifier *Notifier, resolver *Resolver, log *logger.Logger) *Cycle {
	return &Cycle{
		lock:     lock,
		detector: detector,
		notifier: notifier,
		resolver: resolver,
		log:      log,
	}
}

// RunCycleIfLeader ejecuta una pasada completa si consigue el lock.
// Devuelve false si otra instancia lo tenía (no es un error). El lock se
// libera con defer en todos los caminos de salida, incluido el error.
//
// Cada etapa captura su propio error: el fallo de una no impide que las
// siguientes intenten su trabajo en la misma pasada.
func (c *Cycle) RunCycleIfLeader(ctx context.Context) (bool, error) {
	release, ok, err := c.lock.TryAcquire(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		c.log.Debug().Msg("ciclo de alertas en ejecución en otra instancia: se salta")
		return false, nil
	}
	defer release()

	if n, err := c.detector.DetectarStockBajo(ctx); err != nil {
		c.log.Error().Err(err).Msg("detector de stock bajo")
	} else if n > 0 {
		c.log.Info().Int("alertas", n).Msg("alertas detectadas o refrescadas")
	}

	if n, err := c.notifier.NotificarPendientes(ctx); err != nil {
		c.log.Error().Err(err).Msg("notificador de alertas")
	} else if n > 0 {
		c.log.Info().Int("notificaciones", n).Msg("notificaciones encoladas")
	}

	if n, err := c.resolver.ResolverRecuperadas(ctx); err != nil {
		c.log.Error().Err(err).Msg("resolutor de alertas")
	} else if n > 0 {
		c.log.Info().Int("alertas", n).Msg("alertas resueltas")
	}

	return true, nil
}

// Start lanza el loop periódico: una pasada inmediata y luego una por
// intervalo, hasta Stop. Un ciclo detenido puede relanzarse con Start.
func (c *Cycle) Start(interval time.Duration) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.ticker = time.NewTicker(interval)
	c.stopCh = make(chan struct{})
	ticker, stopCh := c.ticker, c.stopCh
	c.mu.Unlock()

	c.log.Info().Dur("intervalo", interval).Msg("ciclo de alertas iniciado")

	go func() {
		c.runOnce()
		for {
			select {
			case <-ticker.C:
				c.runOnce()
			case <-stopCh:
				c.log.Info().Msg("ciclo de alertas detenido")
				return
			}
		}
	}()
}

func (c *Cycle) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if _, err := c.RunCycleIfLeader(ctx); err != nil {
		c.log.Error().Err(err).Msg("pasada del ciclo de alertas")
	}
}

// Stop detiene el loop periódico. Idempotente.
func (c *Cycle) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.ticker.Stop()
	close(c.stopCh)
	c.running = false
}
