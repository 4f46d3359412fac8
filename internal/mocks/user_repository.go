package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"crm-engagement/internal/domain"
)

type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) GetRecipient(ctx context.Context, id uuid.UUID) (*domain.Recipient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Recipient), args.Error(1)
}
