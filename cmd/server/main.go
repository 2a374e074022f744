package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/sync/errgroup"

	"github.com/fnaconcept/site/internal"
	"github.com/fnaconcept/site/internal/csrf"
	"github.com/fnaconcept/site/internal/dedup"
	"github.com/fnaconcept/site/internal/email"
	"github.com/fnaconcept/site/internal/handler"
	"github.com/fnaconcept/site/internal/jobs"
	"github.com/fnaconcept/site/internal/metrics"
	"github.com/fnaconcept/site/internal/middleware"
	"github.com/fnaconcept/site/internal/service"
	"github.com/fnaconcept/site/internal/site"
	"github.com/fnaconcept/site/internal/storage"
	"github.com/fnaconcept/site/internal/submission"
	"github.com/fnaconcept/site/internal/worker"
	"github.com/fnaconcept/site/web"
)

const (
	// memoryQueueSize bounds pending notifications when Redis is not configured.
	memoryQueueSize = 256

	shutdownTimeout = 30 * time.Second
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Honour traceparent headers from the proxy in front of us
	otel.SetTextMapPropagator(propagation.TraceContext{})

	// Site content
	content, err := site.Load(cfg.ContentPath)
	if err != nil {
		return fmt.Errorf("content initialization failed: %w", err)
	}
	sections := site.NewSections(content, logger)

	// Inquiry archive
	store, err := storage.New(cfg.StorageProvider,
		storage.LocalConfig{BasePath: cfg.LocalStoragePath},
		storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			Endpoint:        cfg.R2Endpoint,
		},
		logger,
	)
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}
	archive := storage.NewArchive(store)
	logger.Info("Storage ready", "provider", cfg.StorageProvider)

	// Duplicate filter and job queue: Redis when configured, in-process otherwise
	var (
		filter      dedup.Filter
		queue       worker.Queue
		memoryQueue *worker.MemoryQueue
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}
		filter = dedup.NewRedisFilter(rdb, cfg.DedupTTL)
		queue = worker.NewRedisQueue(rdb, cfg.QueueName)
		logger.Info("Redis ready", "addr", opts.Addr, "queue", cfg.QueueName)
	} else {
		filter = dedup.NewMemoryFilter(cfg.DedupTTL)
		memoryQueue = worker.NewMemoryQueue(memoryQueueSize)
		queue = memoryQueue
		logger.Warn("REDIS_URL not set, using in-process queue and duplicate filter")
	}

	// Notifications
	emailService, err := email.NewSMTPService(email.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
	}, content.Contact.Phone, logger)
	if err != nil {
		return fmt.Errorf("email initialization failed: %w", err)
	}

	workerConfig := worker.DefaultConfig()
	workerConfig.Concurrency = cfg.WorkerConcurrency
	workerConfig.PollInterval = cfg.WorkerPollInterval
	workerConfig.JobTimeout = cfg.WorkerJobTimeout
	workerConfig.MaxAttempts = cfg.WorkerMaxAttempts
	w, err := worker.New(queue, workerConfig, logger)
	if err != nil {
		return fmt.Errorf("worker initialization failed: %w", err)
	}
	w.Register(jobs.NewNotifyInquiryHandler(archive, emailService, cfg.NotifyRecipients, cfg.SendAcknowledgment, logger))

	// Services
	submitter, err := submission.New(submission.Config{
		Endpoint: cfg.FormEndpoint,
		Timeout:  cfg.SubmissionTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("submission client initialization failed: %w", err)
	}
	inquiryService := service.NewInquiryService(filter, archive, queue, cfg.WorkerMaxAttempts, logger)

	imagesFS, err := web.Images()
	if err != nil {
		return fmt.Errorf("images initialization failed: %w", err)
	}
	imageService := service.NewImageService(imagesFS, logger)

	// Initialize template renderer
	templatesFS, err := templateFS(cfg.IsDevelopment())
	if err != nil {
		return fmt.Errorf("templates initialization failed: %w", err)
	}
	renderer, err := handler.NewRenderer(handler.RendererConfig{
		FS:     templatesFS,
		Logger: logger,
		IsDev:  cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("renderer initialization failed: %w", err)
	}

	// Initialize middleware
	isSecure := !cfg.IsDevelopment()
	protector := csrf.New(isSecure, logger)
	// Separate limiters: the site's own submissions reach POST / from this
	// server, so sharing one would count every visitor twice.
	contactLimit := middleware.NewRateLimitMiddleware(
		middleware.NewRateLimiter(cfg.ContactRateLimit, cfg.ContactRateWindow, logger),
		logger,
	)
	inboxLimit := middleware.NewRateLimitMiddleware(
		middleware.NewRateLimiter(cfg.InboxRateLimit, cfg.ContactRateWindow, logger),
		logger,
	)
	metricsAuth := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword, logger)
	if cfg.MetricsUsername == "" && cfg.MetricsPassword == "" {
		logger.Warn("METRICS_USERNAME and METRICS_PASSWORD not set, /metrics is unprotected")
	}
	security := middleware.NewSecurityHeadersMiddleware(isSecure)
	requestLogging := middleware.NewRequestLoggingMiddleware(logger)

	// Initialize handlers
	siteHandler := handler.NewSiteHandler(content, sections, renderer, protector, logger)
	contactHandler := handler.NewContactHandler(content, submitter, renderer, protector, logger)
	inboxHandler := handler.NewInboxHandler(inquiryService, logger)
	mediaHandler := handler.NewMediaHandler(imageService, logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Static files
	staticFS, err := web.Static()
	if err != nil {
		return fmt.Errorf("static files initialization failed: %w", err)
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	// Metrics
	mux.Handle("GET /metrics", metricsAuth.Handler(promhttp.Handler()))

	siteHandler.RegisterRoutes(mux)
	contactHandler.RegisterRoutes(mux, contactLimit.Limit)
	inboxHandler.RegisterRoutes(mux, inboxLimit.Limit)
	mediaHandler.RegisterRoutes(mux)

	stack := middleware.Stack(
		middleware.Tracing,
		metrics.Middleware,
		requestLogging.Handler,
		security.Handler,
	)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           stack(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// POST /contact waits for the form endpoint up to the submission timeout
		WriteTimeout: cfg.SubmissionTimeout + 30*time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.WorkerEnabled {
		w.Start(gctx)
		g.Go(func() error {
			<-gctx.Done()
			w.Stop()
			if memoryQueue != nil && memoryQueue.Len() > 0 {
				logger.Warn("Pending notifications dropped at shutdown", "count", memoryQueue.Len())
			}
			return nil
		})
	} else {
		logger.Warn("Worker disabled, inquiry notifications will stay queued")
	}

	g.Go(func() error {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received, initiating graceful shutdown...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

// templateFS reads templates from disk in development so edits show up
// without a rebuild.
func templateFS(dev bool) (fs.FS, error) {
	if dev {
		return os.DirFS("web/templates"), nil
	}
	return web.Templates()
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
