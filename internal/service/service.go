package service

import (
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"crm-engagement/internal/config"
	"crm-engagement/internal/pkg/clock"
	"crm-engagement/internal/pkg/messages"
	"crm-engagement/internal/repository"
	"crm-engagement/internal/service/activity"
	"crm-engagement/internal/service/archive"
	"crm-engagement/internal/service/audit"
	"crm-engagement/internal/service/dashboard"
	"crm-engagement/internal/service/dedup"
	"crm-engagement/internal/service/delivery"
	"crm-engagement/internal/service/email"
	"crm-engagement/internal/service/emitter"
	"crm-engagement/internal/service/engine"
	"crm-engagement/internal/service/inactivity"
	"crm-engagement/internal/service/notification"
	"crm-engagement/internal/service/reminder"
	"crm-engagement/internal/service/retention"
)

type Services struct {
	Notification notification.Service
	Reminder     reminder.Service
	Activity     activity.Service
	Engine       engine.Orchestrator
	Audit        audit.Service
	Dashboard    dashboard.Service
	// Dispatcher is nil when no email channel is configured.
	Dispatcher *delivery.Dispatcher
}

// NewServices wires the engine. minioClient may be nil; archiving is then
// skipped even if enabled in config. A nil redisClient disables the
// dashboard cache.
func NewServices(repos *repository.Repositories, redisClient *redis.Client, minioClient *minio.Client, catalog *messages.Catalog, cfg *config.Config, log logrus.FieldLogger) *Services {
	clk := clock.System()
	loc := cfg.Location()

	em := emitter.NewEmitter(repos.Notification, catalog, cfg.MessagesLocale, loc)
	guard := dedup.NewGuard(repos.Notification, loc)
	scanner := inactivity.NewScanner(repos.Chat, guard, em, log.WithField("component", "scanner"))

	var archiver archive.Archiver
	if cfg.MinIOArchiveEnabled && minioClient != nil {
		archiver = archive.NewMinIOArchiver(minioClient, cfg.MinIOBucket)
	}
	sweeper := retention.NewSweeper(repos.Notification, archiver, loc, log.WithField("component", "retention"))

	reminderService := reminder.NewService(repos.Reminder, repos.Chat, em, clk, loc, log.WithField("component", "reminder"))
	var statsCache dashboard.Cache
	if redisClient != nil {
		statsCache = redisClient
	}
	dashboardService := dashboard.NewService(repos.Stats, repos.EngineRun, statsCache, clk, loc, log.WithField("component", "dashboard"))

	// The run is stored before the cached stats are dropped, so the next
	// stats read sees it as the last run.
	auditService := audit.NewService(repos.EngineRun, clk)
	recorders := engine.Recorders{auditService, dashboardService}
	orchestrator := engine.NewOrchestrator(sweeper, scanner, reminderService, recorders, clk, loc, log.WithField("component", "engine"))

	var dispatcher *delivery.Dispatcher
	if cfg.ResendAPIKey != "" {
		emailService := email.NewService(cfg)
		dispatcher = delivery.NewDispatcher(repos.Notification, repos.User, emailService, clk, cfg.DispatchBatchSize, log.WithField("component", "delivery"))
	}

	return &Services{
		Notification: notification.NewService(repos.Notification),
		Reminder:     reminderService,
		Activity:     activity.NewService(repos.Chat, clk),
		Engine:       orchestrator,
		Audit:        auditService,
		Dashboard:    dashboardService,
		Dispatcher:   dispatcher,
	}
}
