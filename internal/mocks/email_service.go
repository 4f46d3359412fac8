package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"crm-engagement/internal/domain"
)

type EmailService struct {
	mock.Mock
}

func (m *EmailService) SendNotificationEmail(ctx context.Context, to domain.Recipient, notif domain.Notification) error {
	args := m.Called(ctx, to, notif)
	return args.Error(0)
}
