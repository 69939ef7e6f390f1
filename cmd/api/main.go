package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/almacen-api/internal/application/alerts"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/application/mailqueue"
	"github.com/jhoicas/almacen-api/internal/infrastructure/mail"
	"github.com/jhoicas/almacen-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/almacen-api/internal/interfaces/http"
	"github.com/jhoicas/almacen-api/pkg/config"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("esquema de base de datos")
	}

	// Repos atados al pool (los usecases transaccionales reciben los suyos vía TxRunner)
	productoRepo := postgres.NewProductoRepository(pool)
	movimientoRepo := postgres.NewMovimientoRepository(pool)
	alertaRepo := postgres.NewAlertaRepository(pool)
	eventoRepo := postgres.NewEventoRepository(pool)
	correoRepo := postgres.NewCorreoRepository(pool)
	usuarioRepo := postgres.NewUsuarioRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	registerMovementUC := inventory.NewRegisterMovementUseCase(txRunner)

	// Pipeline de alertas: detector → notificador → resolutor, un líder por tick
	detector := alerts.NewDetector(txRunner)
	notifier := alerts.NewNotifier(
		alertaRepo, productoRepo, eventoRepo, correoRepo, usuarioRepo,
		cfg.Alertas.IntervaloRecordatorio, cfg.Alertas.BatchSize, log,
	)
	resolver := alerts.NewResolver(
		alertaRepo, productoRepo, eventoRepo, correoRepo, usuarioRepo,
		cfg.Alertas.BatchSize, log,
	)
	cycle := alerts.NewCycle(postgres.NewAdvisoryLock(pool), detector, notifier, resolver, log)
	cycle.Start(cfg.Alertas.IntervaloCiclo)
	defer cycle.Stop()

	// Outbox de correos: el pipeline encola, este loop drena
	drainer := mailqueue.NewDrainer(
		correoRepo, mail.NewSMTPSender(cfg.SMTP),
		cfg.Cola.BatchSize, cfg.Cola.MaxIntentos,
		cfg.Cola.RetryBase, cfg.Cola.TimeoutEnvio, log,
	)
	drainer.Start(cfg.Cola.IntervaloDren)
	defer drainer.Stop()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		RegisterMovement: registerMovementUC,
		Detector:         detector,
		Movimientos:      movimientoRepo,
		Alertas:          alertaRepo,
		Eventos:          eventoRepo,
		Cola:             correoRepo,
		Log:              log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	cycle.Stop()
	drainer.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
