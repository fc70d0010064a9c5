package service

import (
	"context"
	"time"

	"habitbeat/internal/entity"
	"habitbeat/internal/repository"
	"habitbeat/internal/utils"

	"github.com/google/uuid"
)

// VerificationTokenService issues and consumes single-use, purpose-scoped
// tokens (email verification, password reset). Only the one-way hash is
// persisted; the raw value is returned once for out-of-band delivery.
type VerificationTokenService struct {
	tokens repository.VerificationTokenRepository
	hasher SecretHasher
	clock  Clock
}

func NewVerificationTokenService(
	tokens repository.VerificationTokenRepository,
	hasher SecretHasher,
	clock Clock,
) *VerificationTokenService {
	return &VerificationTokenService{tokens: tokens, hasher: hasher, clock: clock}
}

// Issue invalidates every live token for (account, purpose) before creating
// a new one, so at most one token per purpose can ever be consumed.
func (s *VerificationTokenService) Issue(
	ctx context.Context,
	accountID uuid.UUID,
	purpose entity.TokenPurpose,
	ttl time.Duration,
) (string, error) {
	now := s.clock.Now()
	if err := s.tokens.InvalidateAll(ctx, accountID, purpose, now); err != nil {
		return "", err
	}

	rawToken, err := utils.GenerateRandomToken(utils.DefaultTokenBytes)
	if err != nil {
		return "", err
	}
	tokenHash, err := s.hasher.Hash(rawToken)
	if err != nil {
		return "", err
	}

	token := &entity.VerificationToken{
		AccountID: accountID,
		TokenHash: tokenHash,
		Purpose:   purpose,
		ExpiresAt: now.Add(ttl),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return "", err
	}
	return rawToken, nil
}

// Consume matches rawToken against every live candidate for the purpose and
// marks the winner consumed. The stored form is a one-way hash, so there is
// no equality lookup; every candidate is compared to keep timing independent
// of scan order.
func (s *VerificationTokenService) Consume(
	ctx context.Context,
	rawToken string,
	purpose entity.TokenPurpose,
) (*entity.VerificationToken, error) {
	now := s.clock.Now()
	candidates, err := s.tokens.FindValidByPurpose(ctx, purpose, now)
	if err != nil {
		return nil, err
	}

	matched := -1
	for i := range candidates {
		if s.hasher.Matches(rawToken, candidates[i].TokenHash) && matched < 0 {
			matched = i
		}
	}
	if matched < 0 {
		return nil, ErrInvalidToken
	}

	token := candidates[matched]
	if !token.ExpiresAt.After(s.clock.Now()) {
		// Expired between the read and the compare.
		return nil, ErrInvalidToken
	}

	ok, err := s.tokens.MarkConsumed(ctx, token.ID, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		// A concurrent consumer won.
		return nil, ErrInvalidToken
	}

	token.ConsumedAt = &now
	return &token, nil
}
