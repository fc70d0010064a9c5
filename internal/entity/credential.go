package entity

import (
	"time"

	"github.com/google/uuid"
)

// Credential holds the one-way hash of an account's current password.
// Reset replaces the row wholesale rather than updating it in place.
type Credential struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Account   Account   `gorm:"constraint:OnDelete:CASCADE"`

	PasswordHash string    `gorm:"type:text;not null"`
	SetAt        time.Time `gorm:"not null"`

	CreatedAt time.Time
}
