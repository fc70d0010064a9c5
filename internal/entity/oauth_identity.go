package entity

import (
	"time"

	"github.com/google/uuid"
)

// OAuthIdentity links an account to an external provider login. Present in
// the data model for parity with the product schema; the credential core
// never reads it.
type OAuthIdentity struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID uuid.UUID `gorm:"type:uuid;not null;index"`
	Account   Account   `gorm:"constraint:OnDelete:CASCADE"`

	Provider       string `gorm:"type:varchar(32);not null;uniqueIndex:idx_provider_subject"`
	ProviderUserID string `gorm:"type:varchar(255);not null;uniqueIndex:idx_provider_subject"`

	CreatedAt time.Time
}

// OAuthState is the short-lived CSRF state handed to the provider redirect.
type OAuthState struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	State     string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Provider  string    `gorm:"type:varchar(32);not null"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}
