package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bsm/redislock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/checkout-api/internal/application/service"
	"github.com/sangkips/checkout-api/internal/config"
	"github.com/sangkips/checkout-api/internal/domain/entity"
	domainRepo "github.com/sangkips/checkout-api/internal/domain/repository"
	"github.com/sangkips/checkout-api/internal/infrastructure/cache"
	"github.com/sangkips/checkout-api/internal/infrastructure/database"
	"github.com/sangkips/checkout-api/internal/infrastructure/lock"
	"github.com/sangkips/checkout-api/internal/infrastructure/memory"
	"github.com/sangkips/checkout-api/internal/infrastructure/repository"
	"github.com/sangkips/checkout-api/internal/presentation/http/handler"
	"github.com/sangkips/checkout-api/internal/presentation/http/middleware"
	"github.com/sangkips/checkout-api/internal/presentation/http/routes"
	"github.com/sangkips/checkout-api/pkg/printer"
	"github.com/sangkips/checkout-api/pkg/receipt"
	"github.com/sangkips/checkout-api/pkg/utils"
)

// repositories is the storage backend chosen by DB_DRIVER.
type repositories struct {
	catalog     domainRepo.CatalogRepository
	batches     domainRepo.BatchRepository
	movements   domainRepo.StockMovementRepository
	sales       domainRepo.SaleRepository
	receipts    domainRepo.ReceiptRepository
	credit      domainRepo.CreditAccountRepository
	customers   domainRepo.CustomerRepository
	idempotency domainRepo.IdempotencyRepository
	uow         domainRepo.UnitOfWork
}

func main() {
	// Load configuration
	cfg := config.Load()
	setupLogger(&cfg.App)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	loc, err := cfg.Store.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid store timezone")
	}
	now := func() time.Time { return time.Now().In(loc) }

	walkInID, err := uuid.Parse(cfg.Checkout.WalkInCustomerID)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid WALK_IN_CUSTOMER_ID")
	}

	repos, err := openRepositories(cfg, walkInID, now)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("failed to open storage")
	}

	// Redis is optional: it backs the catalog cache and cross-instance commit locks
	var locker lock.Locker = lock.NewLocalLocker()
	if cfg.Redis.URL != "" {
		client, err := connectRedis(cfg.Redis.URL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, using in-process locks and no catalog cache")
		} else {
			defer client.Close()
			repos.catalog = cache.NewCatalogCache(repos.catalog, client, cfg.Checkout.CatalogCacheTTL)
			locker = lock.NewRedisLocker(redislock.New(client), lock.RedisLockerConfig{
				TTL:  cfg.Checkout.LockTTL,
				Wait: cfg.Checkout.LockWait,
			})
			log.Info().Msg("redis catalog cache and commit locks enabled")
		}
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	// Initialize thermal printer
	thermalPrinter, err := printer.NewPrinterFromConfig(
		cfg.Printer.Type,
		cfg.Printer.USBPath,
		cfg.Printer.Address,
		cfg.Printer.Timeout,
	)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize printer, receipts will not be printed")
		thermalPrinter = printer.NewNullPrinter()
	}
	defer thermalPrinter.Close()

	// Initialize services
	inventory := service.NewInventoryLedger(repos.catalog, repos.batches, repos.movements, repos.uow, now)
	credit := service.NewCreditLedger(repos.credit, repos.customers, repos.uow, walkInID)
	catalogService := service.NewCatalogService(repos.catalog, inventory)
	saleService := service.NewSaleService(repos.sales)
	printerService := service.NewPrinterService(thermalPrinter, repos.sales, repos.receipts, receipt.StoreInfo{
		Name:       cfg.Store.Name,
		Address:    cfg.Store.Address,
		Phone:      cfg.Store.Phone,
		PayURI:     cfg.Store.PayURI,
		CashNote:   cfg.Store.CashNote,
		CreditNote: cfg.Store.CreditNote,
		Footer:     cfg.Store.Footer,
		Currency:   cfg.Store.Currency,
	}, service.PrinterConfig{
		Type:     cfg.Printer.Type,
		Codepage: cfg.Printer.Codepage,
		Width:    cfg.Store.Width,
		Location: loc,
		Timeout:  cfg.Printer.Timeout,
		WalkInID: walkInID,
		FullCut:  cfg.Printer.Cut == "full",
	})
	checkoutService := service.NewCheckoutService(
		inventory, credit, repos.catalog, repos.customers, repos.sales, repos.uow,
		locker, printerService,
		service.CheckoutConfig{SessionTTL: cfg.Checkout.SessionTTL},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checkoutService.StartJanitor(ctx, time.Minute)
	go purgeIdempotencyKeys(ctx, repos.idempotency, time.Hour)

	rateLimiter := middleware.NewTerminalRateLimiter(
		middleware.RateLimiterConfigFrom(cfg.RateLimit.Requests, cfg.RateLimit.Duration),
	)
	defer rateLimiter.Close()

	// Initialize handlers
	handlers := &routes.Handlers{
		Checkout:  handler.NewCheckoutHandler(checkoutService, catalogService),
		Catalog:   handler.NewCatalogHandler(catalogService),
		Inventory: handler.NewInventoryHandler(inventory),
		Sale:      handler.NewSaleHandler(saleService),
		Credit:    handler.NewCreditHandler(credit),
		Printer:   handler.NewPrinterHandler(printerService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: repos.idempotency,
		RateLimiter:     rateLimiter,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().
			Str("service", cfg.App.Name).
			Str("port", port).
			Str("env", cfg.App.Env).
			Str("driver", cfg.Database.Driver).
			Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func setupLogger(cfg *config.AppConfig) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func openRepositories(cfg *config.Config, walkInID uuid.UUID, now func() time.Time) (*repositories, error) {
	walkIn := &entity.Customer{ID: walkInID, Name: "Walk-in Customer"}

	if cfg.Database.Driver == "memory" {
		store := memory.NewStore(memory.WithClock(now))
		if err := store.Customers().Ensure(context.Background(), walkIn); err != nil {
			return nil, err
		}
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		return &repositories{
			catalog:     store.Catalog(),
			batches:     store.Batches(),
			movements:   store.Movements(),
			sales:       store.Sales(),
			receipts:    store.Receipts(),
			credit:      store.Credit(),
			customers:   store.Customers(),
			idempotency: store.Idempotency(),
			uow:         store.UnitOfWork(),
		}, nil
	}

	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}
	if err := database.SeedDefaultData(db, walkInID); err != nil {
		return nil, err
	}

	return &repositories{
		catalog:     repository.NewCatalogRepository(db),
		batches:     repository.NewBatchRepository(db),
		movements:   repository.NewStockMovementRepository(db),
		sales:       repository.NewSaleRepository(db),
		receipts:    repository.NewReceiptRepository(db),
		credit:      repository.NewCreditAccountRepository(db),
		customers:   repository.NewCustomerRepository(db),
		idempotency: repository.NewIdempotencyRepository(db),
		uow:         repository.NewUnitOfWork(db),
	}, nil
}

func connectRedis(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func purgeIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := repo.DeleteExpired(ctx, time.Now()); err != nil {
				log.Warn().Err(err).Msg("failed to purge idempotency keys")
			}
		}
	}
}
