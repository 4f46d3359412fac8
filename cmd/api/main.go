package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"

	"crm-engagement/internal/config"
	"crm-engagement/internal/handler"
	"crm-engagement/internal/middleware"
	"crm-engagement/internal/pkg/messages"
	"crm-engagement/internal/ratelimit"
	"crm-engagement/internal/repository"
	"crm-engagement/internal/scheduler"
	"crm-engagement/internal/service"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	log := config.NewLogger(cfg, "crm-engagement-api")
	if envErr != nil {
		log.Info("No .env file found, using environment variables")
	}

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	var limiter ratelimit.Store
	redisClient, err := config.NewRedisClient(ctx, cfg)
	switch {
	case err != nil:
		log.WithError(err).Warn("Failed to connect to Redis, using in-memory rate limiter")
		limiter = newMemoryLimiter(ctx, cfg)
	case redisClient == nil:
		limiter = newMemoryLimiter(ctx, cfg)
	default:
		defer redisClient.Close()
		limiter = ratelimit.NewRedisStore(redisClient, "crm:ratelimit", cfg.RateLimitRequests, cfg.RateLimitWindow)
	}

	var minioClient *minio.Client
	if cfg.MinIOArchiveEnabled {
		minioClient, err = config.NewMinIOClient(ctx, cfg, log)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to MinIO with archiving enabled")
		}
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to load message catalog")
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, redisClient, minioClient, catalog, cfg, log)
	handlers := handler.NewHandlers(services, handler.NewHealthHandler(db))

	hour, minute, _ := cfg.DailyRunAt()
	schedCfg := scheduler.Config{
		DailyHour:        hour,
		DailyMinute:      minute,
		Location:         cfg.Location(),
		ReminderInterval: cfg.EngineReminderInterval,
		DispatchInterval: cfg.EngineDispatchInterval,
		RunOnStart:       cfg.EngineRunOnStart,
	}
	var dispatcher scheduler.Dispatcher
	if services.Dispatcher != nil {
		dispatcher = services.Dispatcher
	}
	go scheduler.New(services.Engine, dispatcher, schedCfg, log.WithField("component", "scheduler")).Start(ctx)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.NewErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))

	handler.SetupRoutes(app, handlers, handler.RouteConfig{
		JWTSecret:     cfg.JWTSecret,
		EngineLimiter: limiter,
		Log:           log,
	})

	go func() {
		<-ctx.Done()
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.WithError(err).Error("Server shutdown failed")
		}
	}()

	log.WithField("port", cfg.Port).Info("Server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("Failed to start server")
	}
}

func loadCatalog(cfg *config.Config) (*messages.Catalog, error) {
	if cfg.MessagesPath == "" {
		return messages.Default(), nil
	}
	return messages.Load(cfg.MessagesPath)
}

// newMemoryLimiter also starts the idle-key sweep for the process lifetime.
func newMemoryLimiter(ctx context.Context, cfg *config.Config) ratelimit.Store {
	store := ratelimit.NewMemoryStore(cfg.RateLimitRequests, cfg.RateLimitWindow)
	go func() {
		t := time.NewTicker(10 * time.Minute)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				store.Sweep(cfg.RateLimitWindow * 2)
			case <-ctx.Done():
				return
			}
		}
	}()
	return store
}
