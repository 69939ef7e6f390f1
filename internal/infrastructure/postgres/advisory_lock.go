package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/almacen-api/internal/application/alerts"
)

// cycleLockKey identifica el lock advisory del ciclo de alertas. Constante
// compartida por todas las réplicas: quien la tenga es el líder del tick.
const cycleLockKey int64 = 740015

var _ alerts.CycleLock = (*AdvisoryLock)(nil)

// AdvisoryLock exclusión mutua entre procesos vía pg_try_advisory_lock.
// El lock es de sesión, así que acquire y release deben correr sobre la misma
// conexión: se reserva una del pool y se retiene hasta el release.
type AdvisoryLock struct {
	pool *pgxpool.Pool
}

// NewAdvisoryLock construye el lock sobre el pool.
func NewAdvisoryLock(pool *pgxpool.Pool) *AdvisoryLock {
	return &AdvisoryLock{pool: pool}
}

// TryAcquire intenta tomar el lock sin bloquear. Si otra sesión lo tiene,
// devuelve ok=false. El release devuelto libera el lock y la conexión; debe
// llamarse en todos los caminos de salida.
func (l *AdvisoryLock) TryAcquire(ctx context.Context) (release func(), ok bool, err error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire conn: %w", err)
	}

	var obtenido bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, cycleLockKey).Scan(&obtenido); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("pg_try_advisory_lock: %w", err)
	}
	if !obtenido {
		conn.Release()
		return nil, false, nil
	}

	release = func() {
		// Mismo conn que tomó el lock; background por si el ctx ya expiró.
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, cycleLockKey)
		conn.Release()
	}
	return release, true, nil
}
