package repository

import (
	"context"
	"errors"
	"time"

	"habitbeat/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CredentialRepository interface {
	Create(ctx context.Context, credential *entity.Credential) error
	FindByAccount(ctx context.Context, accountID uuid.UUID) (*entity.Credential, error)
	// Replace swaps the account's credential for a new row carrying the
	// given hash. The old row is removed rather than updated in place.
	Replace(ctx context.Context, accountID uuid.UUID, passwordHash string, at time.Time) error
}

type credentialRepository struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) Create(ctx context.Context, c *entity.Credential) error {
	return dbFrom(ctx, r.db).Create(c).Error
}

func (r *credentialRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) (*entity.Credential, error) {
	var credential entity.Credential
	err := dbFrom(ctx, r.db).
		Where("account_id = ?", accountID).
		First(&credential).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &credential, err
}

func (r *credentialRepository) Replace(ctx context.Context, accountID uuid.UUID, passwordHash string, at time.Time) error {
	db := dbFrom(ctx, r.db)
	if err := db.
		Where("account_id = ?", accountID).
		Delete(&entity.Credential{}).Error; err != nil {
		return err
	}
	return db.Create(&entity.Credential{
		AccountID:    accountID,
		PasswordHash: passwordHash,
		SetAt:        at,
	}).Error
}
