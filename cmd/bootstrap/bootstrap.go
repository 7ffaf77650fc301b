package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lab-booking/config"
	deliveryHttp "lab-booking/internal/delivery/http"
	"lab-booking/internal/delivery/http/handler"
	"lab-booking/internal/delivery/http/middleware"
	"lab-booking/internal/infrastructure/cache"
	"lab-booking/internal/infrastructure/database"
	"lab-booking/internal/infrastructure/mailer"
	"lab-booking/internal/repository"
	"lab-booking/internal/service"
	"lab-booking/internal/usecase"
	"lab-booking/pkg/jwt"
	"lab-booking/pkg/metrics"
	"lab-booking/pkg/ratelimit"
	"lab-booking/pkg/validator"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const metricsNamespace = "lab_booking"

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Dispatcher  *service.NotificationDispatcher
	Server      *http.Server
}

// LoadConfig loads configuration and sets up the logger from it
func LoadConfig() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, setupLogger(cfg.App.LogLevel), nil
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	cfg, log, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Log: log}
	log.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db

	if cfg.DB.AutoMigrate {
		if err := database.MigrateUp(db); err != nil {
			app.Close()
			return nil, err
		}
	}

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis, log)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.RedisClient = redisClient

	// Initialize all layers
	if err := app.initialize(); err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)
	return log
}

// initialize builds repositories, services, usecases and the HTTP server
func (app *App) initialize() error {
	cfg, log := app.Config, app.Log

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	var m *metrics.Metrics
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		m = metrics.New(metricsNamespace, registry)
		metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	}

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	transactor := repository.NewTransactor(app.DB)
	userRepo := repository.NewUserRepository()
	labTestRepo := repository.NewLabTestRepository()
	bookingRepo := repository.NewBookingRepository()
	siteConfigRepo := repository.NewSiteConfigRepository()
	auditLogRepo := repository.NewAuditLogRepository()
	outboxRepo := repository.NewNotificationOutboxRepository()

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)

	notifier, err := newNotifier(cfg.SMTP, log)
	if err != nil {
		return err
	}
	dispatcher := service.NewNotificationDispatcher(
		transactor, log, outboxRepo, siteConfigRepo, notifier,
		service.NewEmailRenderer(cfg.App.BaseURL), m, cfg.Outbox,
	)
	if err := dispatcher.Start(); err != nil {
		return fmt.Errorf("failed to start notification dispatcher: %w", err)
	}
	app.Dispatcher = dispatcher

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(transactor, log, userRepo, outboxRepo, auditService, dispatcher, jwtService, app.RedisClient)
	labTestUsecase := usecase.NewLabTestUsecase(transactor, log, labTestRepo, auditService)
	bookingUsecase := usecase.NewBookingUsecase(transactor, log, bookingRepo, labTestRepo, userRepo, outboxRepo, auditService, dispatcher, m)
	siteConfigUsecase := usecase.NewSiteConfigUsecase(transactor, log, siteConfigRepo, auditService)
	adminUserUsecase := usecase.NewAdminUserUsecase(transactor, log, userRepo, bookingRepo)
	auditLogUsecase := usecase.NewAuditLogUsecase(transactor, log, auditLogRepo)

	// Initialize handlers
	handlers := deliveryHttp.Handlers{
		Auth:       handler.NewAuthHandler(authUsecase, customValidator, jwtService, log, cfg.App.Env == "production"),
		LabTest:    handler.NewLabTestHandler(labTestUsecase, customValidator),
		Booking:    handler.NewBookingHandler(bookingUsecase, customValidator),
		SiteConfig: handler.NewSiteConfigHandler(siteConfigUsecase, customValidator),
		AdminUser:  handler.NewAdminUserHandler(adminUserUsecase),
		AuditLog:   handler.NewAuditLogHandler(auditLogUsecase),
	}

	// Initialize middleware
	limits := cfg.RateLimit
	middlewares := deliveryHttp.Middlewares{
		Auth:             middleware.NewAuthMiddleware(jwtService, app.RedisClient, log),
		CORS:             middleware.NewCORSMiddleware(cfg.App.BaseURL),
		AuthRateLimit:    middleware.NewRateLimitMiddleware(ratelimit.NewRedisLimiter(app.RedisClient, "auth", limits.AuthLimit, limits.AuthWindow), log),
		BookingRateLimit: middleware.NewRateLimitMiddleware(ratelimit.NewRedisLimiter(app.RedisClient, "booking", limits.BookingLimit, limits.BookingWindow), log),
		AdminRateLimit:   middleware.NewRateLimitMiddleware(ratelimit.NewRedisLimiter(app.RedisClient, "admin", limits.AdminLimit, limits.AdminWindow), log),
		RequestLogger:    middleware.RequestLogger(log),
	}

	// Initialize router
	router := deliveryHttp.NewRouter(handlers, middlewares, m, cfg.Metrics.Path, metricsHandler)

	// Create server
	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

func newNotifier(cfg config.SMTPConfig, log *logrus.Logger) (service.Notifier, error) {
	if cfg.Host == "" {
		log.Warn("SMTP_HOST is not set, emails will be logged instead of sent")
		return mailer.NewLogNotifier(log), nil
	}
	return mailer.NewSMTPNotifier(cfg)
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close stops the dispatcher, then closes database and redis connections.
// The dispatcher goes first so queued emails are delivered while the
// database is still reachable.
func (app *App) Close() {
	if app.Dispatcher != nil {
		app.Dispatcher.Stop()
	}

	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
