// Command engine runs one engine pass and exits. It is meant for cron or
// for operators re-running a pass by hand.
//
// Usage:
//
//	crm-engine run full
//	crm-engine run reminders
//	crm-engine run sweep
//	crm-engine run dispatch
//	crm-engine stats
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"crm-engagement/internal/config"
	"crm-engagement/internal/pkg/messages"
	"crm-engagement/internal/repository"
	"crm-engagement/internal/service"
	"crm-engagement/internal/service/engine"
)

func main() {
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:          "crm-engine",
		Short:        "CRM engagement engine passes",
		SilenceUsage: true,
	}

	root.AddCommand(runCmd())
	root.AddCommand(statsCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a single pass",
	}
	cmd.AddCommand(runFullCmd())
	cmd.AddCommand(runRemindersCmd())
	cmd.AddCommand(runSweepCmd())
	cmd.AddCommand(runDispatchCmd())
	return cmd
}

func runFullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "full",
		Short: "Retention sweep followed by the four inactivity scans",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(func(ctx context.Context, svc *service.Services, log logrus.FieldLogger) error {
				summary, err := svc.Engine.RunFullPass(ctx)
				if summary != nil {
					log.WithField("summary", summary.String()).Info("full pass finished")
				}
				if errors.Is(err, engine.ErrPartialPass) {
					for _, e := range summary.Errors {
						log.WithField("error", e).Error("scan error")
					}
				}
				return err
			})
		},
	}
}

func runRemindersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reminders",
		Short: "Fire reminders due in the next five minutes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(func(ctx context.Context, svc *service.Services, log logrus.FieldLogger) error {
				summary, err := svc.Engine.RunReminderPass(ctx)
				if err != nil {
					return err
				}
				log.WithField("summary", summary.String()).Info("reminder pass finished")
				return nil
			})
		},
	}
}

func runSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete notifications not created today",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(func(ctx context.Context, svc *service.Services, log logrus.FieldLogger) error {
				summary, err := svc.Engine.Sweep(ctx)
				if err != nil {
					return err
				}
				log.WithField("deleted", summary.DeletedCount).Info("sweep finished")
				return nil
			})
		},
	}
}

func runDispatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch",
		Short: "Email one batch of unsent notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(func(ctx context.Context, svc *service.Services, log logrus.FieldLogger) error {
				if svc.Dispatcher == nil {
					return fmt.Errorf("RESEND_API_KEY is required")
				}
				summary, err := svc.Dispatcher.DispatchBatch(ctx)
				if err != nil {
					return err
				}
				log.WithFields(logrus.Fields{"sent": summary.Sent, "failed": summary.Failed}).Info("dispatch finished")
				return nil
			})
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print engagement counts as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(func(ctx context.Context, svc *service.Services, log logrus.FieldLogger) error {
				stats, err := svc.Dashboard.GetStats(ctx)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			})
		},
	}
}

func withServices(fn func(ctx context.Context, svc *service.Services, log logrus.FieldLogger) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()
	log := config.NewLogger(cfg, "crm-engagement-engine")
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	var minioClient *minio.Client
	if cfg.MinIOArchiveEnabled {
		minioClient, err = config.NewMinIOClient(ctx, cfg, log)
		if err != nil {
			return fmt.Errorf("connect to MinIO: %w", err)
		}
	}

	catalog := messages.Default()
	if cfg.MessagesPath != "" {
		catalog, err = messages.Load(cfg.MessagesPath)
		if err != nil {
			return fmt.Errorf("load message catalog: %w", err)
		}
	}

	svc := service.NewServices(repository.NewRepositories(db), nil, minioClient, catalog, cfg, log)
	return fn(ctx, svc, log)
}
