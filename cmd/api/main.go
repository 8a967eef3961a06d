package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Traslados-api/internal/application/inventory"
	"github.com/jhoicas/Traslados-api/internal/application/ports"
	"github.com/jhoicas/Traslados-api/internal/application/transfer"
	"github.com/jhoicas/Traslados-api/internal/application/usecase"
	"github.com/jhoicas/Traslados-api/internal/infrastructure/lock"
	"github.com/jhoicas/Traslados-api/internal/infrastructure/memory"
	"github.com/jhoicas/Traslados-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Traslados-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Traslados-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Traslados-api/internal/interfaces/http"
	"github.com/jhoicas/Traslados-api/pkg/config"
	"github.com/jhoicas/Traslados-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.StoreDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var txRunner ports.TxRunner
	switch cfg.App.StoreDriver {
	case "memory":
		log.Warn().Msg("store en memoria: los datos se pierden al reiniciar")
		txRunner = memory.New()
	default:
		if cfg.DB.AutoMigrate {
			migrator, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log.Component("migrate"))
			if err != nil {
				log.Fatal().Err(err).Msg("abrir migraciones")
			}
			if err := migrator.Up(); err != nil {
				log.Fatal().Err(err).Msg("aplicar migraciones")
			}
			_ = migrator.Close()
		}
		pool, err := postgres.NewPool(ctx, cfg.DB, log.Component("postgres"))
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner = postgres.NewTxRunner(pool)
	}

	// Lock distribuido opcional; sin Redis basta el FOR UPDATE NOWAIT.
	var locker ports.Locker
	if cfg.Redis.Enabled() {
		rdb, err := lock.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, cfg.Transfer.LockTTL, log.Component("lock"))
	}

	recorder := metrics.NewRecorder()

	ledgerUC := inventory.NewLedgerUseCase(txRunner, recorder, log.Component("ledger"))
	batchUC := inventory.NewBatchUseCase(txRunner, ledgerUC, log.Component("batches"))
	transferUC := transfer.NewUseCase(txRunner, ledgerUC, batchUC, locker, recorder, log.Component("transfers"), transfer.Config{
		AllowSkipDelivery: cfg.Transfer.AllowSkipDelivery,
	})
	catalogUC := usecase.NewCatalogUseCase(txRunner, log.Component("catalog"))
	manifestUC := transfer.NewManifestUseCase(txRunner, pdf.NewManifestGenerator(cfg.App.Name))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http"), recorder))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.App.DocsPath); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.App.DocsPath,
			Path:     "docs",
			Title:    "Traslados API",
		}))
	} else {
		log.Warn().Str("path", cfg.App.DocsPath).Msg("swagger.json no encontrado, /docs deshabilitado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.App.StoreDriver})
	})
	app.Get("/metrics", adaptor.HTTPHandler(recorder.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		TransferUC: transferUC,
		LedgerUC:   ledgerUC,
		BatchUC:    batchUC,
		CatalogUC:  catalogUC,
		ManifestUC: manifestUC,
		JWTSecret:  cfg.JWT.Secret,
		Log:        log.Component("api"),
	})

	log.Debug().Str("addr", cfg.HTTP.Addr()).Bool("redis", locker != nil).Msg("escuchando")
	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
