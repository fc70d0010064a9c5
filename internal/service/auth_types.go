package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"time"

	"habitbeat/internal/entity"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthConfig struct {
	AccessTokenTTL       time.Duration
	RefreshTokenTTL      time.Duration
	VerificationTokenTTL time.Duration
	ResetTokenTTL        time.Duration

	LoginMaxAttempts  int
	LoginWindow       time.Duration
	ForgotMaxAttempts int
	ForgotWindow      time.Duration
}

type EmailSender interface {
	SendVerificationEmail(ctx context.Context, email string, token string) error
	SendPasswordResetEmail(ctx context.Context, email string, token string) error
}

// SecretHasher is the one-way verifier: it can confirm a candidate secret
// against a stored representation without the representation revealing the
// secret.
type SecretHasher interface {
	Hash(secret string) (string, error)
	Matches(secret string, stored string) bool
}

type AccessTokenIssuer interface {
	IssueAccessToken(account entity.Account) (string, time.Duration, error)
	ParseAccessToken(token string) (uuid.UUID, error)
}

// RateLimiter is a fixed-window counter shared across process instances.
// The window resets entirely at fixed boundaries, so a burst can straddle
// a boundary; that is a property of the policy, not a bug.
type RateLimiter interface {
	IsAllowed(ctx context.Context, key string, maxAttempts int, window time.Duration) (bool, error)
	Reset(ctx context.Context, key string) error
}

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

type BcryptPasswordHasher struct {
	Cost int
}

func (h BcryptPasswordHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func (h BcryptPasswordHasher) Matches(password string, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// HMACTokenHasher is the verifier for high-entropy random secrets
// (verification tokens, refresh secrets). A slow hash buys nothing for
// 256-bit random values, but the keyed MAC keeps the stored form one-way:
// without the key a dumped table reveals neither the secrets nor a
// brute-force surface.
type HMACTokenHasher struct {
	Key []byte
}

func (h HMACTokenHasher) Hash(secret string) (string, error) {
	return base64.RawURLEncoding.EncodeToString(h.sum(secret)), nil
}

func (h HMACTokenHasher) Matches(secret string, stored string) bool {
	decoded, err := base64.RawURLEncoding.DecodeString(stored)
	if err != nil {
		return false
	}
	return hmac.Equal(h.sum(secret), decoded)
}

func (h HMACTokenHasher) sum(secret string) []byte {
	mac := hmac.New(sha256.New, h.Key)
	mac.Write([]byte(secret))
	return mac.Sum(nil)
}
