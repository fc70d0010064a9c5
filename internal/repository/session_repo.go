package repository

import (
	"context"
	"time"

	"habitbeat/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	FindValid(ctx context.Context, now time.Time) ([]entity.Session, error)
	// Rotate replaces the session secret iff the stored hash still equals
	// oldHash; a false return means a concurrent refresh won the race.
	Rotate(ctx context.Context, sessionID uuid.UUID, oldHash string, newHash string, at time.Time) (bool, error)
	Revoke(ctx context.Context, sessionID uuid.UUID, at time.Time) error
	RevokeAllByAccount(ctx context.Context, accountID uuid.UUID, at time.Time) error
	CleanupExpired(ctx context.Context, now time.Time) error
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, s *entity.Session) error {
	return dbFrom(ctx, r.db).Create(s).Error
}

func (r *sessionRepository) FindValid(ctx context.Context, now time.Time) ([]entity.Session, error) {
	var sessions []entity.Session
	err := dbFrom(ctx, r.db).
		Where("revoked_at IS NULL AND expires_at > ?", now).
		Find(&sessions).Error
	return sessions, err
}

func (r *sessionRepository) Rotate(
	ctx context.Context,
	sessionID uuid.UUID,
	oldHash string,
	newHash string,
	at time.Time,
) (bool, error) {
	result := dbFrom(ctx, r.db).
		Model(&entity.Session{}).
		Where("id = ? AND token_hash = ? AND revoked_at IS NULL", sessionID, oldHash).
		Updates(map[string]any{
			"token_hash":   newHash,
			"last_used_at": at,
		})
	return result.RowsAffected == 1, result.Error
}

func (r *sessionRepository) Revoke(ctx context.Context, sessionID uuid.UUID, at time.Time) error {
	return dbFrom(ctx, r.db).
		Model(&entity.Session{}).
		Where("id = ?", sessionID).
		Update("revoked_at", &at).
		Error
}

func (r *sessionRepository) RevokeAllByAccount(ctx context.Context, accountID uuid.UUID, at time.Time) error {
	return dbFrom(ctx, r.db).
		Model(&entity.Session{}).
		Where("account_id = ? AND revoked_at IS NULL", accountID).
		Update("revoked_at", &at).
		Error
}

func (r *sessionRepository) CleanupExpired(ctx context.Context, now time.Time) error {
	return dbFrom(ctx, r.db).
		Where("expires_at < ?", now).
		Delete(&entity.Session{}).
		Error
}
