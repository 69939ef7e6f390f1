package alerts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// Detector escanea productos bajo su stock mínimo y abre (o refresca) alertas.
// El índice único parcial "una alerta activa por producto" hace el upsert
// idempotente incluso con ciclos de detección concurrentes.
type Detector struct {
	txRunner TxRunner

	// Ahora permite fijar el reloj en tests; nil usa time.Now.
	Ahora func() time.Time
}

// NewDetector construye el detector.
func NewDetector(txRunner TxRunner) *Detector {
	return &Detector{txRunner: txRunner}
}

func (d *Detector) ahora() time.Time {
	if d.Ahora != nil {
		return d.Ahora()
	}
	return time.Now()
}

// DetectarStockBajo corre en una transacción: selecciona los productos con
// stock_actual < stock_minimo (estricto) y hace upsert de su alerta.
// Devuelve cuántas alertas tocó (creadas + refrescadas).
func (d *Detector) DetectarStockBajo(ctx context.Context) (int, error) {
	tocadas := 0
	err := d.txRunner.RunAlertas(ctx, func(
		productos repository.ProductoRepository,
		alertas repository.AlertaRepository,
		eventos repository.EventoRepository,
	) error {
		bajos, err := productos.ListBajoMinimo(ctx)
		if err != nil {
			return err
		}
		for _, p := range bajos {
			if err := d.upsertAlerta(ctx, alertas, eventos, p); err != nil {
				return err
			}
			tocadas++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return tocadas, nil
}

// CheckProducto variante de un solo producto, usada por el disparo
// post-movimiento (fire-and-forget). Mismo upsert que el escaneo completo;
// si el producto no está bajo mínimo no hace nada (cerrar es del resolutor).
func (d *Detector) CheckProducto(ctx context.Context, productoID string) error {
	return d.txRunner.RunAlertas(ctx, func(
		productos repository.ProductoRepository,
		alertas repository.AlertaRepository,
		eventos repository.EventoRepository,
	) error {
		p, err := productos.GetByID(ctx, productoID)
		if err != nil {
			return err
		}
		if p == nil || !p.BajoMinimo() {
			return nil
		}
		return d.upsertAlerta(ctx, alertas, eventos, p)
	})
}

// upsertAlerta: sin alerta activa inserta una nueva (contador en cero, primera
// notificación elegible de inmediato) y registra el evento 'detectada'; con
// alerta activa solo refresca el snapshot, sin reiniciar contador ni calendario.
func (d *Detector) upsertAlerta(
	ctx context.Context,
	alertas repository.AlertaRepository,
	eventos repository.EventoRepository,
	p *entity.Producto,
) error {
	activa, err := alertas.GetActivaByProducto(ctx, p.ID)
	if err != nil {
		return err
	}
	if activa != nil {
		return alertas.RefreshSnapshot(ctx, activa.ID, p.StockActual, p.StockMinimo)
	}

	ahora := d.ahora()
	nueva := &entity.AlertaStock{
		ID:                  uuid.New().String(),
		ProductoID:          p.ID,
		Activa:              true,
		StockActual:         p.StockActual,
		StockMinimo:         p.StockMinimo,
		DetectadaEn:         ahora,
		ProximaNotificacion: ahora,
		VecesNotificada:     0,
	}
	if err := alertas.Create(ctx, nueva); err != nil {
		// Otro ciclo insertó primero: el índice único parcial la protege.
		// Releer y refrescar el snapshot.
		if errors.Is(err, domain.ErrDuplicado) {
			existente, gerr := alertas.GetActivaByProducto(ctx, p.ID)
			if gerr != nil {
				return gerr
			}
			if existente != nil {
				return alertas.RefreshSnapshot(ctx, existente.ID, p.StockActual, p.StockMinimo)
			}
			return nil
		}
		return err
	}

	return eventos.Append(ctx, &entity.EventoStock{
		ID:          uuid.New().String(),
		ProductoID:  p.ID,
		Tipo:        entity.EventoDetectada,
		StockActual: p.StockActual,
		StockMinimo: p.StockMinimo,
		CreadoEn:    ahora,
	})
}
