package domain

import (
	"time"

	"github.com/google/uuid"
)

// Chat is a long-lived conversation. Gold chats are fundraisers.
type Chat struct {
	ID           uuid.UUID `json:"id" db:"chat_id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	Name         string    `json:"name" db:"name"`
	LastActivity time.Time `json:"last_activity" db:"last_activity"`
	IsGold       bool      `json:"is_gold" db:"is_gold"`
	MessageCount int       `json:"message_count" db:"message_count"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type EntityVariant string

const (
	VariantChat       EntityVariant = "chat"
	VariantFundraiser EntityVariant = "fundraiser"
)

func (v EntityVariant) IsGold() bool {
	return v == VariantFundraiser
}

func (c *Chat) Variant() EntityVariant {
	if c.IsGold {
		return VariantFundraiser
	}
	return VariantChat
}
