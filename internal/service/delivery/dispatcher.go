// Package delivery pushes unsent notifications out through an external
// channel. Delivery is best effort with one attempt per record: a record
// whose attempt fails is marked delivery_failed and not retried.
package delivery

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"crm-engagement/internal/domain"
	"crm-engagement/internal/pkg/clock"
	"crm-engagement/internal/repository"
	"crm-engagement/internal/service/email"
)

const DefaultBatchSize = 100

type Dispatcher struct {
	notifRepo repository.NotificationRepository
	userRepo  repository.UserRepository
	channel   email.Service
	clock     clock.Clock
	batchSize int
	log       logrus.FieldLogger
}

func NewDispatcher(
	notifRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	channel email.Service,
	clk clock.Clock,
	batchSize int,
	log logrus.FieldLogger,
) *Dispatcher {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Dispatcher{
		notifRepo: notifRepo,
		userRepo:  userRepo,
		channel:   channel,
		clock:     clk,
		batchSize: batchSize,
		log:       log,
	}
}

// DispatchBatch sends up to one batch of unsent notifications. Only a
// failure to load the batch is returned as an error.
func (d *Dispatcher) DispatchBatch(ctx context.Context) (*domain.DispatchSummary, error) {
	pending, err := d.notifRepo.ListUnsent(ctx, d.batchSize)
	if err != nil {
		return nil, fmt.Errorf("load unsent notifications: %w", err)
	}

	summary := &domain.DispatchSummary{}
	for _, notif := range pending {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		log := d.log.WithFields(logrus.Fields{"notification_id": notif.ID, "user_id": notif.UserID})

		// A lookup error is a store problem, not an attempt; the row stays
		// queued for the next batch.
		recipient, err := d.userRepo.GetRecipient(ctx, notif.UserID)
		if err != nil {
			log.WithError(err).Warn("recipient lookup failed")
			summary.Failed++
			continue
		}
		if recipient == nil || recipient.Email == "" {
			log.Warn("no deliverable address for recipient")
			d.markFailed(ctx, log, notif.ID)
			summary.Failed++
			continue
		}

		if err := d.channel.SendNotificationEmail(ctx, *recipient, notif); err != nil {
			log.WithError(err).Warn("send failed")
			d.markFailed(ctx, log, notif.ID)
			summary.Failed++
			continue
		}

		if err := d.notifRepo.MarkSent(ctx, notif.ID); err != nil {
			log.WithError(err).Error("notification delivered but not marked sent")
			summary.Failed++
			continue
		}
		summary.Sent++
	}

	if summary.Sent+summary.Failed > 0 {
		d.log.WithFields(logrus.Fields{"sent": summary.Sent, "failed": summary.Failed}).Info("dispatch batch")
	}
	return summary, nil
}

func (d *Dispatcher) markFailed(ctx context.Context, log logrus.FieldLogger, id uuid.UUID) {
	if err := d.notifRepo.MarkDeliveryFailed(ctx, id, d.clock.Now()); err != nil {
		log.WithError(err).Error("failed to mark notification undeliverable")
	}
}
