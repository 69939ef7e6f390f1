package alerts

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// TxRunner ejecuta el escaneo de detección dentro de una transacción de BD,
// con repositorios atados a esa tx (mismo patrón que el motor de movimientos).
type TxRunner interface {
	RunAlertas(ctx context.Context, fn func(
		productos repository.ProductoRepository,
		alertas repository.AlertaRepository,
		eventos repository.EventoRepository,
	) error) error
}

// CycleLock exclusión mutua entre réplicas para el ciclo de alertas.
// TryAcquire no bloquea: si otro proceso (o este mismo) ya tiene el lock,
// devuelve ok=false y el ciclo se salta. release libera el lock y debe
// llamarse en todos los caminos de salida (defer).
type CycleLock interface {
	TryAcquire(ctx context.Context) (release func(), ok bool, err error)
}
