package domain

import "github.com/google/uuid"

// Recipient is the slice of a user record the engine needs to deliver
// notifications. Users themselves are owned by the account service.
type Recipient struct {
	ID       uuid.UUID `json:"id" db:"user_id"`
	Email    string    `json:"email" db:"email"`
	FullName string    `json:"full_name" db:"full_name"`
}

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)
