package repository

import (
	"context"
	"time"

	"habitbeat/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VerificationTokenRepository stores one-way hashes of single-use tokens.
// Raw values are never queryable; callers fetch the valid candidates for a
// purpose and hash-compare them.
type VerificationTokenRepository interface {
	Create(ctx context.Context, token *entity.VerificationToken) error
	FindValidByPurpose(ctx context.Context, purpose entity.TokenPurpose, now time.Time) ([]entity.VerificationToken, error)
	// MarkConsumed stamps the token consumed iff it still is unconsumed.
	// Returns false when a concurrent consumer got there first.
	MarkConsumed(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	InvalidateAll(ctx context.Context, accountID uuid.UUID, purpose entity.TokenPurpose, at time.Time) error
}

type verificationTokenRepository struct {
	db *gorm.DB
}

func NewVerificationTokenRepository(db *gorm.DB) VerificationTokenRepository {
	return &verificationTokenRepository{db: db}
}

func (r *verificationTokenRepository) Create(ctx context.Context, t *entity.VerificationToken) error {
	return dbFrom(ctx, r.db).Create(t).Error
}

func (r *verificationTokenRepository) FindValidByPurpose(
	ctx context.Context,
	purpose entity.TokenPurpose,
	now time.Time,
) ([]entity.VerificationToken, error) {
	var tokens []entity.VerificationToken
	err := dbFrom(ctx, r.db).
		Where("purpose = ? AND consumed_at IS NULL AND expires_at > ?", purpose, now).
		Find(&tokens).Error
	return tokens, err
}

func (r *verificationTokenRepository) MarkConsumed(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result := dbFrom(ctx, r.db).
		Model(&entity.VerificationToken{}).
		Where("id = ? AND consumed_at IS NULL", id).
		Update("consumed_at", &at)
	return result.RowsAffected == 1, result.Error
}

func (r *verificationTokenRepository) InvalidateAll(
	ctx context.Context,
	accountID uuid.UUID,
	purpose entity.TokenPurpose,
	at time.Time,
) error {
	return dbFrom(ctx, r.db).
		Model(&entity.VerificationToken{}).
		Where("account_id = ? AND purpose = ? AND consumed_at IS NULL", accountID, purpose).
		Update("consumed_at", &at).
		Error
}
