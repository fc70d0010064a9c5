package entity

import (
	"time"

	"github.com/google/uuid"
)

type TokenPurpose string

const (
	PurposeEmailVerify   TokenPurpose = "email_verify"
	PurposePasswordReset TokenPurpose = "password_reset"
)

// VerificationToken is a single-use, purpose-scoped token. Only the one-way
// hash of the raw value is stored; the raw value leaves the process exactly
// once, in the delivery email.
type VerificationToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID uuid.UUID `gorm:"type:uuid;not null;index"`
	Account   Account   `gorm:"constraint:OnDelete:CASCADE"`

	TokenHash string       `gorm:"type:text;not null"`
	Purpose   TokenPurpose `gorm:"type:varchar(32);not null;index"`

	ExpiresAt  time.Time `gorm:"not null"`
	ConsumedAt *time.Time

	CreatedAt time.Time
}
