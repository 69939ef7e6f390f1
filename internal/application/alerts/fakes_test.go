package alerts_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Almacén en memoria compartido por los fakes del pipeline
// ──────────────────────────────────────────────────────────────────────────────

type almacen struct {
	mu        sync.Mutex
	productos map[string]*entity.Producto
	alertas   map[string]*entity.AlertaStock
	eventos   []*entity.EventoStock
	correos   []*entity.CorreoPendiente
	jefeEmail string
}

func nuevoAlmacen() *almacen {
	return &almacen{
		productos: map[string]*entity.Producto{},
		alertas:   map[string]*entity.AlertaStock{},
	}
}

func (a *almacen) alertaActiva(productoID string) *entity.AlertaStock {
	for _, al := range a.alertas {
		if al.ProductoID == productoID && al.Activa {
			return al
		}
	}
	return nil
}

// eventosDe devuelve los tipos de evento registrados para un producto, en orden.
func (a *almacen) eventosDe(productoID string) []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var tipos []string
	for _, e := range a.eventos {
		if e.ProductoID == productoID {
			tipos = append(tipos, e.Tipo)
		}
	}
	return tipos
}

// memTx implementa alerts.TxRunner sin transaccionalidad real: suficiente
// para probar la lógica del detector.
type memTx struct {
	st *almacen
	// fallar hace que toda transacción de alertas falle (aislamiento de etapas).
	fallar bool
}

var errTxFallida = errors.New("tx de alertas falló")

func (m *memTx) RunAlertas(ctx context.Context, fn func(
	productos repository.ProductoRepository,
	alertas repository.AlertaRepository,
	eventos repository.EventoRepository,
) error) error {
	if m.fallar {
		return errTxFallida
	}
	return fn(&memProductos{st: m.st}, &memAlertas{st: m.st}, &memEventos{st: m.st})
}

// ──────────────────────────────────────────────────────────────────────────────
// Repositorios en memoria
//
// Cada método toma el mutex del almacén: el loop periódico del ciclo corre en
// su propia goroutine y los tests inspeccionan el estado desde la suya.
// ──────────────────────────────────────────────────────────────────────────────

type memProductos struct{ st *almacen }

func (f *memProductos) Create(_ context.Context, p *entity.Producto) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	f.st.productos[p.ID] = p
	return nil
}

func (f *memProductos) GetByID(_ context.Context, id string) (*entity.Producto, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	return f.st.productos[id], nil
}

func (f *memProductos) GetByClave(_ context.Context, clave string) (*entity.Producto, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	for _, p := range f.st.productos {
		if p.Clave == clave {
			return p, nil
		}
	}
	return nil, nil
}

func (f *memProductos) GetByClaveForUpdate(ctx context.Context, clave string) (*entity.Producto, error) {
	return f.GetByClave(ctx, clave)
}

func (f *memProductos) UpdateStock(_ context.Context, id string, stock int) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	f.st.productos[id].StockActual = stock
	return nil
}

func (f *memProductos) ListBajoMinimo(_ context.Context) ([]*entity.Producto, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	var list []*entity.Producto
	for _, p := range f.st.productos {
		if p.BajoMinimo() {
			list = append(list, p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (f *memProductos) List(_ context.Context, _, _ int) ([]*entity.Producto, error) {
	return nil, nil
}

type memAlertas struct{ st *almacen }

func (f *memAlertas) Create(_ context.Context, alerta *entity.AlertaStock) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if f.st.alertaActiva(alerta.ProductoID) != nil {
		return domain.ErrDuplicado // índice único parcial
	}
	copia := *alerta
	f.st.alertas[alerta.ID] = &copia
	return nil
}

func (f *memAlertas) GetActivaByProducto(_ context.Context, productoID string) (*entity.AlertaStock, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if a := f.st.alertaActiva(productoID); a != nil {
		copia := *a
		return &copia, nil
	}
	return nil, nil
}

func (f *memAlertas) RefreshSnapshot(_ context.Context, id string, stockActual, stockMinimo int) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if a, ok := f.st.alertas[id]; ok && a.Activa {
		a.StockActual = stockActual
		a.StockMinimo = stockMinimo
	}
	return nil
}

func (f *memAlertas) ListPorNotificar(_ context.Context, ahora time.Time, limit int) ([]*entity.AlertaStock, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	var list []*entity.AlertaStock
	for _, a := range f.st.alertas {
		if a.Activa && !a.ProximaNotificacion.After(ahora) {
			copia := *a
			list = append(list, &copia)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ProximaNotificacion.Before(list[j].ProximaNotificacion)
	})
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (f *memAlertas) ListRecuperadas(_ context.Context, limit int) ([]*entity.AlertaStock, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	var list []*entity.AlertaStock
	for _, a := range f.st.alertas {
		p := f.st.productos[a.ProductoID]
		if a.Activa && p != nil && !p.BajoMinimo() {
			copia := *a
			list = append(list, &copia)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].DetectadaEn.Before(list[j].DetectadaEn) })
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (f *memAlertas) MarcarNotificada(_ context.Context, id string, ahora, proxima time.Time) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if a, ok := f.st.alertas[id]; ok && a.Activa {
		t := ahora
		a.UltimaNotificacion = &t
		a.ProximaNotificacion = proxima
		a.VecesNotificada++
	}
	return nil
}

func (f *memAlertas) Cerrar(_ context.Context, id string, ahora time.Time) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if a, ok := f.st.alertas[id]; ok && a.Activa {
		a.Activa = false
		t := ahora
		a.ResueltaEn = &t
	}
	return nil
}

func (f *memAlertas) ListActivas(_ context.Context, _, _ int) ([]*entity.AlertaStock, error) {
	return nil, nil
}

type memEventos struct{ st *almacen }

func (f *memEventos) Append(_ context.Context, evento *entity.EventoStock) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	f.st.eventos = append(f.st.eventos, evento)
	return nil
}

func (f *memEventos) ListByProducto(_ context.Context, _ string, _, _ int) ([]*entity.EventoStock, error) {
	return nil, nil
}

type memCorreos struct{ st *almacen }

func (f *memCorreos) Encolar(_ context.Context, correo *entity.CorreoPendiente) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	f.st.correos = append(f.st.correos, correo)
	return nil
}

func (f *memCorreos) ListPendientes(_ context.Context, ahora time.Time, maxIntentos, limit int) ([]*entity.CorreoPendiente, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	var list []*entity.CorreoPendiente
	for _, c := range f.st.correos {
		if c.EnviadoEn == nil && c.Intentos < maxIntentos && !c.ProgramadoPara.After(ahora) {
			list = append(list, c)
		}
	}
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (f *memCorreos) MarcarEnviado(_ context.Context, id string, ahora time.Time) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	for _, c := range f.st.correos {
		if c.ID == id {
			t := ahora
			c.EnviadoEn = &t
			c.UltimoError = nil
		}
	}
	return nil
}

func (f *memCorreos) MarcarFallo(_ context.Context, id, mensajeError string, proxima time.Time) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	for _, c := range f.st.correos {
		if c.ID == id {
			c.Intentos++
			msg := mensajeError
			c.UltimoError = &msg
			c.ProgramadoPara = proxima
		}
	}
	return nil
}

func (f *memCorreos) List(_ context.Context, _, _ int) ([]*entity.CorreoPendiente, error) {
	return f.st.correos, nil
}

type memUsuarios struct{ st *almacen }

func (f *memUsuarios) Create(_ context.Context, _ *entity.Usuario) error { return nil }

func (f *memUsuarios) FindJefeAlmacenEmail(_ context.Context) (string, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	return f.st.jefeEmail, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Lock y reloj de prueba
// ──────────────────────────────────────────────────────────────────────────────

// fakeLock exclusión mutua no bloqueante, equivalente en semántica al lock
// advisory: TryAcquire falla si alguien más lo tiene.
type fakeLock struct {
	mu       sync.Mutex
	tomado   bool
	tomas    int // cuántas adquisiciones exitosas hubo
	rechazos int
}

func (l *fakeLock) TryAcquire(_ context.Context) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.tomado {
		l.rechazos++
		return nil, false, nil
	}
	l.tomado = true
	l.tomas++
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.tomado = false
	}, true, nil
}

// reloj permite avanzar el tiempo de los usecases en los tests.
type reloj struct {
	mu sync.Mutex
	t  time.Time
}

func nuevoReloj(t time.Time) *reloj { return &reloj{t: t} }

func (r *reloj) Now() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.t
}

func (r *reloj) Avanzar(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.t = r.t.Add(d)
}
