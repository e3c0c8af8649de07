package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	"github.com/rs/zerolog/log"

	"provender/internal/caching"
	"provender/internal/config"
	"provender/internal/handlers"
	"provender/internal/jobs/background"
	"provender/internal/repositories"
	"provender/internal/services"
	"provender/pkg/database"
	"provender/pkg/logger"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.App.LogLevel, cfg.App.Env)
	log.Logger = appLogger

	ctx := context.Background()
	pool, err := database.NewPool(ctx, cfg.DB.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()

	jwtSecret := cfg.JWT.Secret
	if jwtSecret == "" {
		jwtSecret = random.String(32)
		log.Warn().Msg("no JWT secret configured, generated an ephemeral one")
	}

	cache := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	documents, err := services.NewMinioDocumentService(cfg.Minio.Endpoint, cfg.Minio.AccessKey,
		cfg.Minio.SecretKey, cfg.Minio.UseSSL, cfg.Minio.Bucket)
	if err != nil {
		log.Fatal().Err(err).Msg("minio client failed")
	}
	if err := documents.EnsureBucket(ctx); err != nil {
		log.Warn().Err(err).Str("bucket", cfg.Minio.Bucket).Msg("proof bucket check failed")
	}

	// Repositories
	materialRepo := repositories.NewMaterialRepo(pool)
	movementRepo := repositories.NewStockMovementRepo(pool)
	recipeRepo := repositories.NewRecipeRepo(pool)
	auditRepo := repositories.NewAuditLogsRepo(pool)
	alertsRepo := repositories.NewAlertsRepo(pool)
	supplierRepo := repositories.NewSupplierRepo(pool)
	orderRepo := repositories.NewPurchaseOrderRepo(pool)
	requisitionRepo := repositories.NewRequisitionRepo(pool)

	// Services
	ledger := services.NewStockLedgerService(materialRepo, movementRepo, recipeRepo, auditRepo,
		cache, cfg.Procurement.OrderThresholdFactor, cfg.Procurement.RiskCacheTTL)
	riskIndex := services.NewRiskIndexService(ledger, cache, cfg.Procurement.RiskCacheTTL)
	alerts := services.NewAlertService(alertsRepo, materialRepo, supplierRepo, auditRepo,
		ledger, cfg.Procurement.PostponeWeeklyCap)
	notifier := services.NewNotifierService(cfg.Procurement.NotifierFromAddress)
	orders := services.NewPurchaseOrderService(orderRepo, materialRepo, supplierRepo,
		requisitionRepo, notifier, documents, cache, cfg.Procurement.AdvisoryLockTTL)
	advisor := services.NewRequisitionAdvisorService(ledger, orderRepo)
	suppliers := services.NewSupplierService(supplierRepo)
	materials := services.NewMaterialService(materialRepo, cache)
	gate := services.NewProductionGateService(recipeRepo, materialRepo, ledger, alerts)
	auditLogs := services.NewAuditLogsService(auditRepo)

	// Background jobs
	scheduler, err := background.NewJobScheduler(alerts, ledger,
		cfg.Procurement.ScanInterval, cfg.Procurement.RecomputeInterval)
	if err != nil {
		log.Fatal().Err(err).Msg("job scheduler setup failed")
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Warn().Err(err).Msg("scheduler shutdown failed")
		}
	}()

	// HTTP
	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewRequestValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORS())

	handlers.RegisterRoutes(e, &handlers.Handlers{
		Risk:         handlers.NewRiskHandlers(ledger, riskIndex),
		Alerts:       handlers.NewAlertHandlers(alerts),
		Orders:       handlers.NewPurchaseOrderHandlers(orders, documents),
		Requisitions: handlers.NewRequisitionHandlers(requisitionRepo, advisor),
		Production:   handlers.NewProductionHandlers(gate),
		Suppliers:    handlers.NewSupplierHandlers(suppliers),
		Materials:    handlers.NewMaterialHandlers(materials, materialRepo, ledger),
		AuditLogs:    handlers.NewAuditLogsHandlers(auditLogs),
		Health:       handlers.NewHealthHandlers(pool, cache),
	}, jwtSecret)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()
	log.Info().Int("port", cfg.App.Port).Str("env", cfg.App.Env).Msg("provender started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	log.Info().Msg("provender stopped")
}
