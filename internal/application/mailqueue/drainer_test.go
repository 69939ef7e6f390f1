package mailqueue_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/mailqueue"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes: cola en memoria y transporte controlable
// ──────────────────────────────────────────────────────────────────────────────

type fakeCola struct {
	mu      sync.Mutex
	correos []*entity.CorreoPendiente
}

func (f *fakeCola) Encolar(_ context.Context, correo *entity.CorreoPendiente) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.correos = append(f.correos, correo)
	return nil
}

func (f *fakeCola) ListPendientes(_ context.Context, ahora time.Time, maxIntentos, limit int) ([]*entity.CorreoPendiente, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []*entity.CorreoPendiente
	for _, c := range f.correos {
		if c.EnviadoEn == nil && c.Intentos < maxIntentos && !c.ProgramadoPara.After(ahora) {
			copia := *c
			list = append(list, &copia)
		}
	}
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (f *fakeCola) MarcarEnviado(_ context.Context, id string, ahora time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.correos {
		if c.ID == id {
			t := ahora
			c.EnviadoEn = &t
			c.UltimoError = nil
		}
	}
	return nil
}

func (f *fakeCola) MarcarFallo(_ context.Context, id, mensajeError string, proxima time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.correos {
		if c.ID == id {
			c.Intentos++
			msg := mensajeError
			c.UltimoError = &msg
			c.ProgramadoPara = proxima
		}
	}
	return nil
}

func (f *fakeCola) List(_ context.Context, _, _ int) ([]*entity.CorreoPendiente, error) {
	return f.correos, nil
}

func (f *fakeCola) enviado(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.correos {
		if c.ID == id {
			return c.EnviadoEn != nil
		}
	}
	return false
}

func (f *fakeCola) porID(id string) *entity.CorreoPendiente {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.correos {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// fakeSender falla para los destinatarios listados en rechazar.
type fakeSender struct {
	mu       sync.Mutex
	rechazar map[string]error
	enviados []string // asuntos en orden de envío exitoso
}

func (s *fakeSender) Send(_ context.Context, to, subject, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.rechazar[to]; ok {
		return err
	}
	s.enviados = append(s.enviados, subject)
	return nil
}

func correoEn(id string, programado time.Time) *entity.CorreoPendiente {
	return &entity.CorreoPendiente{
		ID:             id,
		Destinatario:   "jefe@almacen.mx",
		Asunto:         "Alerta " + id,
		CuerpoHTML:     "<p>cuerpo</p>",
		ProgramadoPara: programado,
		CreadoEn:       programado,
	}
}

func nuevoDrainer(cola *fakeCola, sender *fakeSender) *mailqueue.Drainer {
	return mailqueue.NewDrainer(cola, sender, 20, 5, time.Minute, time.Second, logger.Nop())
}

// ──────────────────────────────────────────────────────────────────────────────
// Drenado
// ──────────────────────────────────────────────────────────────────────────────

func TestDrainer_EnvioExitosoMarcaEnviado(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	cola := &fakeCola{correos: []*entity.CorreoPendiente{correoEn("c1", base)}}
	sender := &fakeSender{}

	drainer := nuevoDrainer(cola, sender)
	reloj := base.Add(time.Minute)
	drainer.Ahora = func() time.Time { return reloj }

	enviados, err := drainer.DrenarUnaVez(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, enviados)

	c := cola.porID("c1")
	require.NotNil(t, c.EnviadoEn)
	assert.Equal(t, reloj, *c.EnviadoEn)
	assert.Equal(t, 0, c.Intentos)
	assert.Nil(t, c.UltimoError)
	assert.Equal(t, []string{"Alerta c1"}, sender.enviados)

	// Una entrada enviada no vuelve a salir
	enviados, err = drainer.DrenarUnaVez(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, enviados)
	assert.Len(t, sender.enviados, 1)
}

func TestDrainer_FalloReprogramaConBackoffLineal(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	cola := &fakeCola{correos: []*entity.CorreoPendiente{correoEn("c1", base)}}
	sender := &fakeSender{rechazar: map[string]error{
		"jefe@almacen.mx": errors.New("smtp: connection refused"),
	}}

	drainer := nuevoDrainer(cola, sender)
	reloj := base
	drainer.Ahora = func() time.Time { return reloj }

	// Primer fallo: intentos=1, próxima en retryBase*1
	enviados, err := drainer.DrenarUnaVez(context.Background())
	require.NoError(t, err) // el error de entrega no se propaga
	assert.Equal(t, 0, enviados)

	c := cola.porID("c1")
	assert.Equal(t, 1, c.Intentos)
	require.NotNil(t, c.UltimoError)
	assert.Equal(t, "smtp: connection refused", *c.UltimoError)
	assert.Equal(t, base.Add(1*time.Minute), c.ProgramadoPara)
	assert.Nil(t, c.EnviadoEn)

	// Antes de la reprogramación la entrada no es elegible
	reloj = base.Add(30 * time.Second)
	enviados, err = drainer.DrenarUnaVez(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, enviados)
	assert.Equal(t, 1, cola.porID("c1").Intentos)

	// Segundo fallo: el backoff crece lineal, retryBase*2
	reloj = base.Add(2 * time.Minute)
	_, err = drainer.DrenarUnaVez(context.Background())
	require.NoError(t, err)
	c = cola.porID("c1")
	assert.Equal(t, 2, c.Intentos)
	assert.Equal(t, reloj.Add(2*time.Minute), c.ProgramadoPara)

	// Cuando el transporte se recupera, el reintento entrega y limpia el error
	reloj = c.ProgramadoPara
	sender.mu.Lock()
	sender.rechazar = nil
	sender.mu.Unlock()
	enviados, err = drainer.DrenarUnaVez(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, enviados)
	c = cola.porID("c1")
	require.NotNil(t, c.EnviadoEn)
	assert.Nil(t, c.UltimoError)
	assert.Equal(t, 2, c.Intentos) // los intentos fallidos quedan contados
}

func TestDrainer_AgotarIntentosSacaDeLaCola(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	cola := &fakeCola{correos: []*entity.CorreoPendiente{correoEn("c1", base)}}
	sender := &fakeSender{rechazar: map[string]error{
		"jefe@almacen.mx": errors.New("smtp: relay denied"),
	}}

	drainer := nuevoDrainer(cola, sender) // maxIntentos = 5
	reloj := base
	drainer.Ahora = func() time.Time { return reloj }

	for i := 0; i < 5; i++ {
		_, err := drainer.DrenarUnaVez(context.Background())
		require.NoError(t, err)
		reloj = cola.porID("c1").ProgramadoPara
	}

	c := cola.porID("c1")
	assert.Equal(t, 5, c.Intentos)
	assert.Nil(t, c.EnviadoEn)

	// Agotados los intentos, la entrada queda visible pero nunca vuelve a salir
	reloj = reloj.Add(24 * time.Hour)
	enviados, err := drainer.DrenarUnaVez(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, enviados)
	assert.Equal(t, 5, cola.porID("c1").Intentos)

	// Sigue en la tabla para inspección
	todos, err := cola.List(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, todos, 1)
}

func TestDrainer_UnFalloNoAbortaElLote(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	malo := correoEn("c1", base)
	malo.Destinatario = "rebota@almacen.mx"
	cola := &fakeCola{correos: []*entity.CorreoPendiente{
		malo,
		correoEn("c2", base),
		correoEn("c3", base),
	}}
	sender := &fakeSender{rechazar: map[string]error{
		"rebota@almacen.mx": errors.New("smtp: mailbox unavailable"),
	}}

	drainer := nuevoDrainer(cola, sender)
	drainer.Ahora = func() time.Time { return base }

	enviados, err := drainer.DrenarUnaVez(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, enviados)

	assert.Equal(t, 1, cola.porID("c1").Intentos)
	assert.NotNil(t, cola.porID("c2").EnviadoEn)
	assert.NotNil(t, cola.porID("c3").EnviadoEn)
}

func TestDrainer_StartStopYRelanzar(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	cola := &fakeCola{correos: []*entity.CorreoPendiente{correoEn("c1", base)}}
	sender := &fakeSender{}

	drainer := nuevoDrainer(cola, sender)

	// La primera pasada es inmediata, sin esperar el primer tick
	drainer.Start(time.Hour)

	require.Eventually(t, func() bool {
		return cola.enviado("c1")
	}, 2*time.Second, 10*time.Millisecond)

	// Stop es idempotente
	drainer.Stop()
	drainer.Stop()

	// Un segundo Start relanza el loop y drena lo encolado mientras
	// estaba detenido
	require.NoError(t, cola.Encolar(context.Background(), correoEn("c2", base)))

	drainer.Start(time.Hour)
	defer drainer.Stop()

	require.Eventually(t, func() bool {
		return cola.enviado("c2")
	}, 2*time.Second, 10*time.Millisecond)
}
