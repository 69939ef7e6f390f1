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

// Resolver cierra las alertas de productos que recuperaron stock
// (stock_actual >= stock_minimo) y encola el aviso de resolución.
// Idempotente: una alerta ya inactiva no vuelve a seleccionarse.
type Resolver struct {
	alertas   repository.AlertaRepository
	productos repository.ProductoRepository
	eventos   repository.EventoRepository
	cola      repository.CorreoRepository
	usuarios  repository.UsuarioRepository
	batch     int
	log       *logger.Logger

	// Ahora permite fijar el reloj en tests; nil usa time.Now.
	Ahora func() time.Time
}

// NewResolver construye el resolutor.
func NewResolver(
	alertas repository.AlertaRepository,
	productos repository.ProductoRepository,
	eventos repository.EventoRepository,
	cola repository.CorreoRepository,
	usuarios repository.UsuarioRepository,
	batch int,
	log *logger.Logger,
) *Resolver {
	return &Resolver{
		alertas:   alertas,
		productos: productos,
		eventos:   eventos,
		cola:      cola,
		usuarios:  usuarios,
		batch:     batch,
		log:       log,
	}
}

func (r *Resolver) ahora() time.Time {
	if r.Ahora != nil {
		return r.Ahora()
	}
	return time.Now()
}

// ResolverRecuperadas devuelve cuántas alertas cerró en esta pasada.
// El aviso de resolución solo se encola si hay destinatario configurado;
// el cierre de la alerta no depende de eso.
func (r *Resolver) ResolverRecuperadas(ctx context.Context) (int, error) {
	recuperadas, err := r.alertas.ListRecuperadas(ctx, r.batch)
	if err != nil {
		return 0, err
	}
	if len(recuperadas) == 0 {
		return 0, nil
	}

	destinatario, err := r.usuarios.FindJefeAlmacenEmail(ctx)
	if err != nil {
		return 0, err
	}

	ahora := r.ahora()
	cerradas := 0
	for _, alerta := range recuperadas {
		producto, err := r.productos.GetByID(ctx, alerta.ProductoID)
		if err != nil {
			return cerradas, err
		}

		if err := r.alertas.Cerrar(ctx, alerta.ID, ahora); err != nil {
			return cerradas, err
		}

		stockActual, stockMinimo := alerta.StockActual, alerta.StockMinimo
		if producto != nil {
			stockActual, stockMinimo = producto.StockActual, producto.StockMinimo
		}
		if err := r.eventos.Append(ctx, &entity.EventoStock{
			ID:          uuid.New().String(),
			ProductoID:  alerta.ProductoID,
			Tipo:        entity.EventoResuelta,
			StockActual: stockActual,
			StockMinimo: stockMinimo,
			CreadoEn:    ahora,
		}); err != nil {
			return cerradas, err
		}

		if destinatario != "" && producto != nil {
			asunto := fmt.Sprintf("Stock recuperado: %s", producto.Nombre)
			cuerpo := fmt.Sprintf(
				`<h2>Stock recuperado</h2>
<p>El producto <strong>%s</strong> (clave %s) volvió a estar sobre su stock mínimo.</p>
<p>Stock actual: %d / Stock mínimo: %d</p>`,
				producto.Nombre, producto.Clave, producto.StockActual, producto.StockMinimo,
			)
			if err := r.cola.Encolar(ctx, &entity.CorreoPendiente{
				ID:             uuid.New().String(),
				Destinatario:   destinatario,
				Asunto:         asunto,
				CuerpoHTML:     cuerpo,
				ProgramadoPara: ahora,
				CreadoEn:       ahora,
			}); err != nil {
				return cerradas, err
			}
		}
		cerradas++
	}
	return cerradas, nil
}
