package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/mbrennan/toolhub/internal/config"
	"github.com/mbrennan/toolhub/internal/database"
	"github.com/mbrennan/toolhub/internal/handlers"
	"github.com/mbrennan/toolhub/internal/logger"
	"github.com/mbrennan/toolhub/internal/middleware"
	"github.com/mbrennan/toolhub/internal/queue"
	"github.com/mbrennan/toolhub/internal/services/session"
	"github.com/mbrennan/toolhub/internal/services/weather"
	"github.com/mbrennan/toolhub/internal/telemetry"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// OpenTelemetry tracing, if enabled
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), "toolhub-api", cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Migrate(migrateCtx); err != nil {
		migrateCancel()
		zapLogger.Fatal("failed_to_run_migrations", zap.Error(err))
	}
	migrateCancel()

	// Redis for rate limiting
	redisLimiter, err := middleware.NewRedisRateLimiter(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
	}
	defer func() {
		if err := redisLimiter.Close(); err != nil {
			zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_redis")

	// RabbitMQ for click events. Optional: without it, redirects still
	// count clicks but no per-click history is recorded.
	var eventQueue queue.EventQueue
	if cfg.RabbitMQURL != "" {
		eventQueue = connectQueue(cfg.RabbitMQURL, zapLogger)
		if eventQueue != nil {
			defer func() {
				if err := eventQueue.Close(); err != nil {
					zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
				}
			}()
		}
	} else {
		zapLogger.Info("rabbitmq_not_configured_click_history_disabled")
	}

	// Repositories
	userRepo := database.NewUserRepository(db)
	activityRepo := database.NewActivityRepository(db)
	usageRepo := database.NewToolUsageRepository(db)
	linkRepo := database.NewLinkRepository(db)
	clickRepo := database.NewLinkClickRepository(db)
	noteRepo := database.NewNoteRepository(db)
	todoRepo := database.NewTodoRepository(db)
	corsConfigRepo := database.NewCorsConfigRepository(db)
	ratelimitConfigRepo := database.NewRatelimitConfigRepository(db)

	// Services
	sessions, err := session.NewManager(cfg.JWTSecret, time.Duration(cfg.SessionTTLHours)*time.Hour)
	if err != nil {
		zapLogger.Fatal("failed_to_create_session_manager", zap.Error(err))
	}
	weatherClient := weather.NewClient()

	secureCookie := cfg.EnableHSTS

	// Handlers
	authHandler := handlers.NewAuthHandler(userRepo, activityRepo, sessions, secureCookie, zapLogger)
	noteHandler := handlers.NewNoteHandler(noteRepo, activityRepo, zapLogger)
	todoHandler := handlers.NewTodoHandler(todoRepo, activityRepo, zapLogger)
	linkHandler := handlers.NewLinkHandler(linkRepo, clickRepo, activityRepo, eventQueue, cfg.BaseURL, zapLogger)
	toolsHandler := handlers.NewToolsHandler(userRepo, usageRepo, activityRepo, weatherClient, zapLogger)
	analyticsHandler := handlers.NewAnalyticsHandler(activityRepo, usageRepo, zapLogger)
	healthChecker := handlers.NewHealthChecker(db, redisLimiter, eventQueue)

	r := mux.NewRouter()

	if cfg.OTELEnabled {
		r.Use(otelmux.Middleware("toolhub-api"))
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))

	corsReloader := middleware.NewCORSReloader(corsConfigRepo, cfg.FrontendURL, zapLogger, 1*time.Minute)
	r.Use(corsReloader.Middleware())

	rateLimitReloader := middleware.NewRateLimitReloader(redisLimiter.Client(), ratelimitConfigRepo, "5-S", zapLogger, 1*time.Minute)
	rateLimitMW := rateLimitReloader.Middleware()

	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Audit(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	// Public routes
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/version", handlers.Version(version, commit)).Methods("GET")

	authMW := middleware.Auth(sessions, userRepo, zapLogger)

	// User routes. Signup and login are public and rate limited; the
	// rest sit behind the session cookie.
	userRouter := r.PathPrefix("/user").Subrouter()
	publicUserRouter := userRouter.PathPrefix("").Subrouter()
	publicUserRouter.Use(rateLimitMW)
	authHandler.RegisterPublicRoutes(publicUserRouter)

	protectedUserRouter := userRouter.PathPrefix("").Subrouter()
	protectedUserRouter.Use(authMW)
	authHandler.RegisterRoutes(protectedUserRouter)

	noteRouter := r.PathPrefix("/note").Subrouter()
	noteRouter.Use(authMW)
	noteHandler.RegisterRoutes(noteRouter)

	todoRouter := r.PathPrefix("/todo").Subrouter()
	todoRouter.Use(authMW)
	todoHandler.RegisterRoutes(todoRouter)

	// Short url routes. The redirect must stay public so shared links
	// work without a session.
	urlRouter := r.PathPrefix("/url").Subrouter()
	linkHandler.RegisterPublicRoutes(urlRouter)

	protectedURLRouter := urlRouter.PathPrefix("").Subrouter()
	protectedURLRouter.Use(authMW)
	linkHandler.RegisterRoutes(protectedURLRouter)

	toolsRouter := r.PathPrefix("/tools").Subrouter()
	toolsRouter.Use(authMW)
	toolsHandler.RegisterRoutes(toolsRouter)
	toolsRouter.HandleFunc("/analytics", analyticsHandler.Summary).Methods("GET")

	// Preflight requests fall through to this after the CORS middleware
	// has set headers
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// CORS and rate limit hot-reload loops
	reloadCtx, reloadCancel := context.WithCancel(context.Background())
	defer reloadCancel()
	go corsReloader.Start(reloadCtx)
	go rateLimitReloader.Start(reloadCtx)

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	reloadCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// connectQueue dials RabbitMQ with exponential backoff to ride out
// broker startup delays. Returns nil if the broker never comes up.
func connectQueue(amqpURL string, zapLogger *zap.Logger) queue.EventQueue {
	const maxRetries = 10
	const initialDelay = 2 * time.Second

	for attempt := 0; attempt < maxRetries; attempt++ {
		q, err := queue.NewRabbitMQQueue(amqpURL)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq")
			return q
		}

		delay := initialDelay * time.Duration(1<<uint(attempt))
		if delay > 30*time.Second {
			delay = 30 * time.Second
		}
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
			zap.Duration("retry_delay", delay),
		)
		time.Sleep(delay)
	}

	zapLogger.Error("failed_to_connect_to_rabbitmq_click_history_disabled",
		zap.Int("max_retries", maxRetries),
	)
	return nil
}
