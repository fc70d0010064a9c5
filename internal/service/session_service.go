package service

import (
	"context"
	"time"

	"habitbeat/internal/entity"
	"habitbeat/internal/repository"
	"habitbeat/internal/utils"

	"github.com/google/uuid"
)

// SessionService manages refresh-token-backed sessions: create, validate
// with rotation, revoke. Expiry is enforced lazily at validation time; there
// is no background sweep.
type SessionService struct {
	sessions repository.SessionRepository
	hasher   SecretHasher
	clock    Clock
}

func NewSessionService(
	sessions repository.SessionRepository,
	hasher SecretHasher,
	clock Clock,
) *SessionService {
	return &SessionService{sessions: sessions, hasher: hasher, clock: clock}
}

// Create persists a new session and returns the raw refresh secret, which
// exists nowhere else.
func (s *SessionService) Create(
	ctx context.Context,
	accountID uuid.UUID,
	ipAddress *string,
	userAgent *string,
	ttl time.Duration,
) (string, *entity.Session, error) {
	rawSecret, err := utils.GenerateRandomToken(utils.DefaultTokenBytes)
	if err != nil {
		return "", nil, err
	}
	tokenHash, err := s.hasher.Hash(rawSecret)
	if err != nil {
		return "", nil, err
	}

	now := s.clock.Now()
	session := &entity.Session{
		AccountID:  accountID,
		TokenHash:  tokenHash,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		ExpiresAt:  now.Add(ttl),
		LastUsedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", nil, err
	}
	return rawSecret, session, nil
}

// ValidateAndRotate finds the live session matching rawSecret and swaps in a
// fresh secret. The old secret becomes permanently unusable, so a replayed
// stolen secret fails loudly. When two refreshes race with the same secret
// the store lets exactly one rotation through; the loser gets
// ErrInvalidRefreshToken.
func (s *SessionService) ValidateAndRotate(ctx context.Context, rawSecret string) (string, *entity.Session, error) {
	session, err := s.findMatch(ctx, rawSecret)
	if err != nil {
		return "", nil, err
	}

	newSecret, err := utils.GenerateRandomToken(utils.DefaultTokenBytes)
	if err != nil {
		return "", nil, err
	}
	newHash, err := s.hasher.Hash(newSecret)
	if err != nil {
		return "", nil, err
	}

	now := s.clock.Now()
	ok, err := s.sessions.Rotate(ctx, session.ID, session.TokenHash, newHash, now)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return "", nil, ErrInvalidRefreshToken
	}

	session.TokenHash = newHash
	session.LastUsedAt = now
	return newSecret, session, nil
}

// FindValidSession is the read-only variant used by logout to locate the
// session without rotating it.
func (s *SessionService) FindValidSession(ctx context.Context, rawSecret string) (*entity.Session, error) {
	return s.findMatch(ctx, rawSecret)
}

func (s *SessionService) Revoke(ctx context.Context, session *entity.Session) error {
	now := s.clock.Now()
	if err := s.sessions.Revoke(ctx, session.ID, now); err != nil {
		return err
	}
	session.RevokedAt = &now
	return nil
}

// RevokeAll terminates every live session of the account in one operation.
// Used on logout-all and password reset.
func (s *SessionService) RevokeAll(ctx context.Context, accountID uuid.UUID) error {
	return s.sessions.RevokeAllByAccount(ctx, accountID, s.clock.Now())
}

func (s *SessionService) findMatch(ctx context.Context, rawSecret string) (*entity.Session, error) {
	candidates, err := s.sessions.FindValid(ctx, s.clock.Now())
	if err != nil {
		return nil, err
	}

	matched := -1
	for i := range candidates {
		if s.hasher.Matches(rawSecret, candidates[i].TokenHash) && matched < 0 {
			matched = i
		}
	}
	if matched < 0 {
		return nil, ErrInvalidRefreshToken
	}
	session := candidates[matched]
	return &session, nil
}
