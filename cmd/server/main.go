package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/ulule/limiter/v3"
	"go.uber.org/zap"

	"pharmapos/internal/config"
	"pharmapos/internal/domain"
	"pharmapos/internal/handler"
	"pharmapos/internal/logger"
	"pharmapos/internal/metrics"
	"pharmapos/internal/middleware"
	"pharmapos/internal/notify/noop"
	"pharmapos/internal/notify/ses"
	"pharmapos/internal/port"
	"pharmapos/internal/repository/postgres"
	redisrepo "pharmapos/internal/repository/redis"
	"pharmapos/internal/router"
	"pharmapos/internal/service"
	s3storage "pharmapos/internal/storage/s3"
	"pharmapos/internal/tax"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zlog, err := logger.New(cfg.Log, cfg.Server.Environment)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = zlog.Sync() }()
	zap.ReplaceGlobals(zlog)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(ctx, &cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	tx := postgres.NewTransactor(db)
	invoiceRepo := postgres.NewInvoiceRepo(db)
	creditNoteRepo := postgres.NewCreditNoteRepo(db)
	catalogRepo := postgres.NewCatalogRepo(db)
	sellerRepo := postgres.NewSellerRepo(db)
	hsnRepo := postgres.NewHSNRepo(db)

	sequences, closeSequences, err := buildSequenceAllocator(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer closeSequences()

	notifier, err := buildNotifier(ctx, cfg, zlog)
	if err != nil {
		return err
	}

	var archiver service.Archiver
	if cfg.Archive.Enabled {
		s3Client, err := s3storage.NewS3Client(ctx, &cfg.Archive)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		archiver = service.NewArchiver(s3Client, cfg.Archive.Bucket, cfg.Archive.Prefix)
	}

	m := metrics.New()

	rates := service.NewRateCatalog(hsnRepo, tax.Defaults{
		RatePercent: cfg.Tax.DefaultRatePercent,
		Convention:  domain.PricingConvention(cfg.Tax.DefaultConvention),
	}, cfg.Tax.HSNRefresh, zlog)
	if err := rates.Reload(ctx); err != nil {
		return fmt.Errorf("failed to load HSN master: %w", err)
	}

	// Initialize services
	invoiceSvc := service.NewInvoiceService(tx, invoiceRepo, sellerRepo, catalogRepo, rates, sequences,
		notifier, archiver, m, zlog, service.InvoiceConfig{
			NumberTemplate: cfg.Tax.InvoiceNumberTemplate,
			NumberRetries:  cfg.Tax.NumberRetries,
		})
	creditNoteSvc := service.NewCreditNoteService(tx, invoiceRepo, creditNoteRepo, sequences,
		archiver, m, zlog, service.CreditNoteConfig{
			NumberTemplate: cfg.Tax.CreditNoteNumberTemplate,
			NumberRetries:  cfg.Tax.NumberRetries,
			ApplyRoundOff:  cfg.Tax.CreditNoteRoundOff,
		})

	// Initialize handlers
	invoiceH := handler.NewInvoiceHandler(invoiceSvc)
	creditNoteH := handler.NewCreditNoteHandler(creditNoteSvc)
	healthH := handler.NewHealthHandler(db)

	var rateLimiter *limiter.Limiter
	if cfg.RateLimit.Enabled {
		rateLimiter, err = middleware.NewLimiter(cfg.RateLimit.Rate)
		if err != nil {
			return err
		}
	}

	// Setup router
	r := router.Setup(zlog, cfg.CORS.AllowedOrigins, rateLimiter, m, invoiceH, creditNoteH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("server starting",
			zap.String("addr", cfg.Server.Port),
			zap.String("sequence_backend", cfg.Sequence.Backend),
			zap.Bool("archive_enabled", cfg.Archive.Enabled))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zlog.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	zlog.Info("server stopped")
	return nil
}

func buildSequenceAllocator(ctx context.Context, cfg *config.Config, db *sqlx.DB) (port.SequenceAllocator, func(), error) {
	if cfg.Sequence.Backend != "redis" {
		return postgres.NewSequenceAllocator(db), func() {}, nil
	}
	client, err := redisrepo.NewClient(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize redis: %w", err)
	}
	return redisrepo.NewSequenceAllocator(client), func() { _ = client.Close() }, nil
}

func buildNotifier(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (port.ComplianceNotifier, error) {
	switch cfg.Compliance.Provider {
	case "ses":
		n, err := ses.NewSESNotifier(ctx, cfg.Compliance.Region, cfg.Compliance.FromAddress, cfg.Compliance.Recipients)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SES notifier: %w", err)
		}
		return n, nil
	default:
		return noop.NewNoopNotifier(zlog), nil
	}
}
