package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session is a refresh-token-backed login. TokenHash is replaced on every
// successful refresh (rotation), so a captured old secret stops matching.
type Session struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID uuid.UUID `gorm:"type:uuid;not null;index"`
	Account   Account   `gorm:"constraint:OnDelete:CASCADE"`

	TokenHash string `gorm:"type:text;not null"`

	IPAddress *string `gorm:"type:varchar(45)"`
	UserAgent *string `gorm:"type:text"`

	ExpiresAt  time.Time `gorm:"not null"`
	RevokedAt  *time.Time
	LastUsedAt time.Time

	CreatedAt time.Time
}
