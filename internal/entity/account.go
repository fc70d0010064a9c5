package entity

import (
	"time"

	"github.com/google/uuid"
)

type Account struct {
	ID    uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email string    `gorm:"type:varchar(255);uniqueIndex;not null"`

	EmailVerifiedAt  *time.Time
	ProfileSetupDone bool `gorm:"default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Credential *Credential
	Sessions   []Session
}
