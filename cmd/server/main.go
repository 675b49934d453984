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

	"github.com/aditya/go-gigs/internal/cache"
	"github.com/aditya/go-gigs/internal/config"
	"github.com/aditya/go-gigs/internal/database"
	"github.com/aditya/go-gigs/internal/handler"
	"github.com/aditya/go-gigs/internal/logger"
	"github.com/aditya/go-gigs/internal/middleware"
	"github.com/aditya/go-gigs/internal/payments"
	"github.com/aditya/go-gigs/internal/realtime"
	"github.com/aditya/go-gigs/internal/repository"
	"github.com/aditya/go-gigs/internal/service"
	"github.com/aditya/go-gigs/internal/storage"
	"github.com/aditya/go-gigs/internal/tasks"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hibiken/asynq"
	"github.com/newrelic/go-agent/v3/newrelic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited with error", zap.Error(err))
	}
	log.Info("server stopped gracefully")
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	nrApp := newRelic(cfg, log)
	if nrApp != nil {
		defer nrApp.Shutdown(10 * time.Second)
	}

	db, err := database.NewPostgres(cfg.DatabaseURL, cfg.DBMaxConnections, cfg.DBMaxIdleConnections)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()
	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}
	log.Info("connected to postgres")

	redis, err := database.NewRedis(cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redis.Close()
	log.Info("connected to redis")

	// Realtime fan-out. With the redis broker every instance relays to its
	// own sessions; the local hub alone only reaches this process.
	hub := realtime.NewHub(log.Named("hub"))
	var publisher realtime.Publisher = hub
	var broker *realtime.RedisBroker
	if cfg.RealtimeBroker == "redis" {
		broker = realtime.NewRedisBroker(redis.Client, hub, log.Named("broker"))
		publisher = broker
	}

	// Repositories
	userRepo := repository.NewUserRepository(db.DB)
	jobRepo := repository.NewJobRepository(db.DB)
	applicationRepo := repository.NewApplicationRepository(db.DB)
	reviewRepo := repository.NewReviewRepository(db.DB)
	notificationRepo := repository.NewNotificationRepository(db.DB)
	messageRepo := repository.NewMessageRepository(db.DB)
	savedJobRepo := repository.NewSavedJobRepository(db.DB)
	transactionRepo := repository.NewTransactionRepository(db.DB)

	jobCache := cache.NewJobLocationCache(redis.Client)

	fileStore, err := newStorage(cfg)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	// Services
	feeService := service.NewFeeService(cfg.PlatformFeeRate)
	notificationService := service.NewNotificationService(notificationRepo, publisher, log.Named("notifications"))
	reputationService := service.NewReputationService(jobRepo, reviewRepo, userRepo, log.Named("reputation"))

	var stats service.StatsDispatcher
	var worker *tasks.Worker
	if cfg.StatsDispatch == "queue" {
		queue := asynq.NewClient(redis.AsynqOpt())
		defer queue.Close()
		stats = tasks.NewQueueDispatcher(queue, log.Named("tasks"))
		worker = tasks.NewWorker(redis.AsynqOpt(), cfg.StatsQueueConcurrent, reputationService, log.Named("worker"))
	} else {
		stats = tasks.NewInlineDispatcher(reputationService, log.Named("tasks"))
	}

	userService := service.NewUserService(userRepo, log.Named("users"))
	jobService := service.NewJobService(jobRepo, applicationRepo, userRepo, transactionRepo,
		feeService, notificationService, stats, jobCache,
		service.JobServiceConfig{
			TransitionPolicy: cfg.JobTransitionPolicy,
			NearbyRadiusKM:   cfg.NearbyRadiusKM,
		}, log.Named("jobs"))
	reviewService := service.NewReviewService(reviewRepo, jobRepo, userRepo, stats, notificationService, log.Named("reviews"))
	messageService := service.NewMessageService(messageRepo, userRepo, publisher, log.Named("messages"))
	savedJobService := service.NewSavedJobService(savedJobRepo, log.Named("saved_jobs"))
	paymentService := service.NewPaymentService(jobRepo, payments.NewStripeProvider(cfg.StripeSecretKey),
		feeService, notificationService, cfg.PaymentCurrency, log.Named("payments"))
	uploadService := service.NewUploadService(fileStore, cfg.UploadMaxBytes, log.Named("uploads"))

	// Handlers
	userHandler := handler.NewUserHandler(userService, reviewService, log)
	jobHandler := handler.NewJobHandler(jobService, log)
	reviewHandler := handler.NewReviewHandler(reviewService, log)
	savedJobHandler := handler.NewSavedJobHandler(savedJobService, log)
	notificationHandler := handler.NewNotificationHandler(notificationService, log)
	paymentHandler := handler.NewPaymentHandler(paymentService, log)
	messageHandler := handler.NewMessageHandler(messageService, log)
	uploadHandler := handler.NewUploadHandler(uploadService, cfg.UploadMaxBytes, log)
	streamHandler := handler.NewStreamHandler(hub, messageService, log.Named("stream"))
	healthHandler := handler.NewHealthHandler(map[string]handler.Checker{
		"database": db,
		"redis":    redis,
	})

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestLogger(log.Named("http")))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Link", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if nrApp != nil {
		r.Use(middleware.NewRelic(nrApp))
	}

	healthHandler.RegisterRoutes(r)

	// Long-lived connections stay outside the timeout and rate limit.
	streamHandler.RegisterRoutes(r)

	if local, ok := fileStore.(*storage.LocalStorage); ok {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(local.Dir()))))
	}

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
		r.Use(middleware.NewRateLimiter(redis.Client, cfg.RateLimitRequests, cfg.RateLimitWindow, log.Named("ratelimit")).Handler)
		r.Use(middleware.NewIdempotencyMiddleware(redis.Client, log.Named("idempotency")).Handler)

		userHandler.RegisterRoutes(r)
		jobHandler.RegisterRoutes(r)
		reviewHandler.RegisterRoutes(r)
		savedJobHandler.RegisterRoutes(r)
		notificationHandler.RegisterRoutes(r)
		paymentHandler.RegisterRoutes(r)
		messageHandler.RegisterRoutes(r)
		uploadHandler.RegisterRoutes(r)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	// Shutdown does not wait on hijacked sockets and never sees SSE streams
	// go idle, so end them explicitly.
	srv.RegisterOnShutdown(hub.Close)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server starting",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.Env),
			zap.String("transition_policy", cfg.JobTransitionPolicy),
			zap.String("realtime_broker", cfg.RealtimeBroker),
			zap.String("stats_dispatch", cfg.StatsDispatch))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if broker != nil {
		g.Go(func() error {
			return broker.Listen(gctx)
		})
	}

	if worker != nil {
		g.Go(func() error {
			return worker.Run(gctx)
		})
	}

	return g.Wait()
}

func newRelic(cfg *config.Config, log *zap.Logger) *newrelic.Application {
	if !cfg.NewRelicEnabled || cfg.NewRelicLicenseKey == "" {
		return nil
	}

	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.NewRelicAppName),
		newrelic.ConfigLicense(cfg.NewRelicLicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
		newrelic.ConfigAppLogForwardingEnabled(true),
	)
	if err != nil {
		log.Warn("failed to initialize new relic", zap.Error(err))
		return nil
	}
	if err := app.WaitForConnection(10 * time.Second); err != nil {
		log.Warn("new relic connection timeout", zap.Error(err))
	} else {
		log.Info("new relic connected")
	}
	return app
}

func newStorage(cfg *config.Config) (storage.Storage, error) {
	sc := storage.Config{
		BasePath: cfg.UploadDir,
		BaseURL:  cfg.UploadBaseURL,
		Bucket:   cfg.S3Bucket,
		Region:   cfg.S3Region,
		Endpoint: cfg.S3Endpoint,
	}
	if cfg.StorageType == "s3" {
		s3, err := storage.NewS3Storage(sc)
		if err != nil {
			return nil, err
		}
		return s3, nil
	}
	local, err := storage.NewLocalStorage(sc)
	if err != nil {
		return nil, err
	}
	return local, nil
}
