package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/jhoicas/stock-release/docs"
	"github.com/jhoicas/stock-release/internal/application/inventory"
	"github.com/jhoicas/stock-release/internal/application/release"
	"github.com/jhoicas/stock-release/internal/application/usecase"
	domaininv "github.com/jhoicas/stock-release/internal/domain/inventory"
	"github.com/jhoicas/stock-release/internal/domain/repository"
	infrakafka "github.com/jhoicas/stock-release/internal/infrastructure/kafka"
	"github.com/jhoicas/stock-release/internal/infrastructure/memory"
	inframongo "github.com/jhoicas/stock-release/internal/infrastructure/mongo"
	"github.com/jhoicas/stock-release/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-release/internal/interfaces/http"
	"github.com/jhoicas/stock-release/pkg/config"
	"github.com/jhoicas/stock-release/pkg/logger"
	"github.com/jhoicas/stock-release/pkg/telemetry"
)

// stores puertos de persistencia del driver elegido.
type stores struct {
	records       repository.StockRecordRepository
	releases      repository.ReleaseRepository
	releaseLogs   repository.ReleaseLogRepository
	movements     repository.StockMovementRepository
	restocks      repository.RestockingRequestRepository
	notifications repository.NotificationRepository
	txRunner      inventory.TxRunner
	close         func(context.Context)
}

// @title           Stock Release API
// @version         1.0
// @description     Salida de inventario al liberar ventas: localización, asignación, descuento atómico y reposición.
// @BasePath        /
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Bearer {token}
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
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		Endpoint:       cfg.Telemetry.OTLPEndpoint,
		Insecure:       cfg.Telemetry.Insecure,
	})
	if err != nil {
		log.Error().Err(err).Msg("configuración de trazas incompleta")
	}

	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("conexión al almacén")
	}
	defer st.close(context.Background())

	var publisher inventory.EventPublisher = inventory.NopPublisher{}
	if cfg.Kafka.Enabled() {
		kp := infrakafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.App.Name, time.Duration(cfg.Kafka.PublishTimeoutMs)*time.Millisecond)
		defer func() {
			if err := kp.Close(); err != nil {
				log.Error().Err(err).Msg("cierre del publicador kafka")
			}
		}()
		publisher = kp
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publicación de eventos habilitada")
	}

	notifierCfg := inventory.NotifierConfig{
		Policy: domaininv.RestockPolicy{
			DefaultRestockLevel:      cfg.Release.DefaultRestockLevel,
			DefaultMaximumStockLevel: cfg.Release.DefaultMaximumStockLevel,
			MinimumOrderQuantity:     cfg.Release.MinimumOrderQuantity,
		},
		TargetRoles: cfg.Release.NotifyRoles,
	}
	notifier := inventory.NewRestockNotifier(st.restocks, st.notifications, publisher, notifierCfg, log)
	resolver := inventory.NewLocationResolver(st.records, cfg.Release.CategoryPartitions, log)
	executor := inventory.NewDeductionExecutor(st.txRunner, notifier, log)
	releaseUC := release.NewReleaseUseCase(release.Repos{
		Releases:      st.releases,
		Logs:          st.releaseLogs,
		Movements:     st.movements,
		Notifications: st.notifications,
	}, resolver, executor, publisher, cfg.Release.NotifyRoles, log)
	notificationUC := usecase.NewNotificationUseCase(st.notifications)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Stock Release API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Store.Driver})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		ReleaseUC:      releaseUC,
		Resolver:       resolver,
		NotificationUC: notificationUC,
		JWTSecret:      cfg.JWT.Secret,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if shutdownTracing != nil {
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("apagado de trazas")
		}
	}

	log.Info().Msg("aplicación detenida")
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		return &stores{
			records:       postgres.NewStockRecordRepository(pool),
			releases:      postgres.NewReleaseRepository(pool),
			releaseLogs:   postgres.NewReleaseLogRepository(pool),
			movements:     postgres.NewStockMovementRepository(pool),
			restocks:      postgres.NewRestockingRequestRepository(pool),
			notifications: postgres.NewNotificationRepository(pool),
			txRunner:      postgres.NewTxRunner(pool, cfg.Release.MaxTxRetries),
			close:         func(context.Context) { pool.Close() },
		}, nil

	case config.DriverMongo:
		client, err := inframongo.Connect(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.Mongo.Database)
		if err := inframongo.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &stores{
			records:       inframongo.NewStockRecordRepository(db),
			releases:      inframongo.NewReleaseRepository(db),
			releaseLogs:   inframongo.NewReleaseLogRepository(db),
			movements:     inframongo.NewStockMovementRepository(db),
			restocks:      inframongo.NewRestockingRequestRepository(db),
			notifications: inframongo.NewNotificationRepository(db),
			txRunner:      inframongo.NewTxRunner(client, db, cfg.Release.MaxTxRetries),
			close:         func(ctx context.Context) { _ = client.Disconnect(ctx) },
		}, nil

	case config.DriverMemory:
		s := memory.NewStore()
		return &stores{
			records:       s.Records(),
			releases:      s.Releases(),
			releaseLogs:   s.ReleaseLogRepo(),
			movements:     s.MovementRepo(),
			restocks:      s.RestockRepo(),
			notifications: s.NotificationRepo(),
			txRunner:      s.TxRunner(),
			close:         func(context.Context) {},
		}, nil
	}
	return nil, fmt.Errorf("driver de almacén desconocido: %s", cfg.Store.Driver)
}
