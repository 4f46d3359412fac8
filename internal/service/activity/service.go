// Package activity records message traffic on chats so the inactivity scans
// see fresh timestamps.
package activity

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"crm-engagement/internal/pkg/clock"
	"crm-engagement/internal/repository"
)

var ErrChatNotFound = errors.New("chat not found")

type Service interface {
	Touch(ctx context.Context, chatID uuid.UUID) error
}

type service struct {
	chatRepo repository.ChatRepository
	clock    clock.Clock
}

func NewService(chatRepo repository.ChatRepository, clk clock.Clock) Service {
	return &service{chatRepo: chatRepo, clock: clk}
}

func (s *service) Touch(ctx context.Context, chatID uuid.UUID) error {
	ok, err := s.chatRepo.TouchActivity(ctx, chatID, s.clock.Now())
	if err != nil {
		return err
	}
	if !ok {
		return ErrChatNotFound
	}
	return nil
}
