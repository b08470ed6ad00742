package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/coinbox/coinbox-mod-sales/internal/api/http"
	"github.com/coinbox/coinbox-mod-sales/internal/api/http/handlers"
	"github.com/coinbox/coinbox-mod-sales/internal/config"
	"github.com/coinbox/coinbox-mod-sales/internal/currency"
	"github.com/coinbox/coinbox-mod-sales/internal/events"
	"github.com/coinbox/coinbox-mod-sales/internal/observability"
	"github.com/coinbox/coinbox-mod-sales/internal/persistence"
	"github.com/coinbox/coinbox-mod-sales/internal/repository"
	"github.com/coinbox/coinbox-mod-sales/internal/service"
	"github.com/coinbox/coinbox-mod-sales/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	currencyRepo := repository.NewCurrencyRepository(pool)
	productRepo := repository.NewProductRepository(pool)
	customerRepo := repository.NewCustomerRepository(pool)
	lineRepo := repository.NewTicketLineRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool, lineRepo)

	converter := currency.NewConverter(currencyRepo, redis.Handle(), cfg.Sales, logger)
	dispatcher := events.NewInMemoryDispatcher()

	receiptService := service.NewReceiptService(dispatcher, redis.Handle(), logger, cfg.Sales)
	worker.StartReceiptWorker(receiptService)

	registry := service.NewSessionRegistry(service.Dependencies{
		TicketRepo:   ticketRepo,
		LineRepo:     lineRepo,
		ProductRepo:  productRepo,
		CurrencyRepo: currencyRepo,
		CustomerRepo: customerRepo,
		Converter:    converter,
		Dispatcher:   dispatcher,
	})

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	salesHandler := handlers.NewSalesHandler(registry)
	catalogHandler := handlers.NewCatalogHandler(productRepo, currencyRepo, customerRepo)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  healthHandler,
		Sales:   salesHandler,
		Catalog: catalogHandler,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
