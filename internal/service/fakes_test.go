package service

import (
	"context"
	"time"

	"habitbeat/internal/entity"
	"habitbeat/internal/repository"

	"github.com/google/uuid"
)

// In-memory doubles for the repository layer. The fake transaction manager
// just runs the function; atomicity itself is the store's job and is not
// what these tests exercise.

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type fakeTxManager struct{}

func (fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeAccountRepo struct {
	accounts map[uuid.UUID]*entity.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[uuid.UUID]*entity.Account)}
}

func (r *fakeAccountRepo) Create(_ context.Context, account *entity.Account) error {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	stored := *account
	r.accounts[account.ID] = &stored
	return nil
}

func (r *fakeAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Account, error) {
	account, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	copied := *account
	return &copied, nil
}

func (r *fakeAccountRepo) FindByEmail(_ context.Context, email string) (*entity.Account, error) {
	for _, account := range r.accounts {
		if account.Email == email {
			copied := *account
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	account, err := r.FindByEmail(ctx, email)
	return account != nil, err
}

func (r *fakeAccountRepo) MarkEmailVerified(_ context.Context, accountID uuid.UUID, at time.Time) error {
	if account, ok := r.accounts[accountID]; ok {
		account.EmailVerifiedAt = &at
	}
	return nil
}

type fakeCredentialRepo struct {
	credentials map[uuid.UUID]*entity.Credential
}

func newFakeCredentialRepo() *fakeCredentialRepo {
	return &fakeCredentialRepo{credentials: make(map[uuid.UUID]*entity.Credential)}
}

func (r *fakeCredentialRepo) Create(_ context.Context, credential *entity.Credential) error {
	if credential.ID == uuid.Nil {
		credential.ID = uuid.New()
	}
	stored := *credential
	r.credentials[credential.AccountID] = &stored
	return nil
}

func (r *fakeCredentialRepo) FindByAccount(_ context.Context, accountID uuid.UUID) (*entity.Credential, error) {
	credential, ok := r.credentials[accountID]
	if !ok {
		return nil, nil
	}
	copied := *credential
	return &copied, nil
}

func (r *fakeCredentialRepo) Replace(_ context.Context, accountID uuid.UUID, passwordHash string, at time.Time) error {
	r.credentials[accountID] = &entity.Credential{
		ID:           uuid.New(),
		AccountID:    accountID,
		PasswordHash: passwordHash,
		SetAt:        at,
	}
	return nil
}

type fakeVerificationTokenRepo struct {
	tokens map[uuid.UUID]*entity.VerificationToken
}

func newFakeVerificationTokenRepo() *fakeVerificationTokenRepo {
	return &fakeVerificationTokenRepo{tokens: make(map[uuid.UUID]*entity.VerificationToken)}
}

func (r *fakeVerificationTokenRepo) Create(_ context.Context, token *entity.VerificationToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	stored := *token
	r.tokens[token.ID] = &stored
	return nil
}

func (r *fakeVerificationTokenRepo) FindValidByPurpose(
	_ context.Context,
	purpose entity.TokenPurpose,
	now time.Time,
) ([]entity.VerificationToken, error) {
	var valid []entity.VerificationToken
	for _, token := range r.tokens {
		if token.Purpose == purpose && token.ConsumedAt == nil && token.ExpiresAt.After(now) {
			valid = append(valid, *token)
		}
	}
	return valid, nil
}

func (r *fakeVerificationTokenRepo) MarkConsumed(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	token, ok := r.tokens[id]
	if !ok || token.ConsumedAt != nil {
		return false, nil
	}
	token.ConsumedAt = &at
	return true, nil
}

func (r *fakeVerificationTokenRepo) InvalidateAll(
	_ context.Context,
	accountID uuid.UUID,
	purpose entity.TokenPurpose,
	at time.Time,
) error {
	for _, token := range r.tokens {
		if token.AccountID == accountID && token.Purpose == purpose && token.ConsumedAt == nil {
			consumed := at
			token.ConsumedAt = &consumed
		}
	}
	return nil
}

type fakeSessionRepo struct {
	sessions map[uuid.UUID]*entity.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*entity.Session)}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *entity.Session) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	stored := *session
	r.sessions[session.ID] = &stored
	return nil
}

func (r *fakeSessionRepo) FindValid(_ context.Context, now time.Time) ([]entity.Session, error) {
	var valid []entity.Session
	for _, session := range r.sessions {
		if session.RevokedAt == nil && session.ExpiresAt.After(now) {
			valid = append(valid, *session)
		}
	}
	return valid, nil
}

func (r *fakeSessionRepo) Rotate(
	_ context.Context,
	sessionID uuid.UUID,
	oldHash string,
	newHash string,
	at time.Time,
) (bool, error) {
	session, ok := r.sessions[sessionID]
	if !ok || session.TokenHash != oldHash || session.RevokedAt != nil {
		return false, nil
	}
	session.TokenHash = newHash
	session.LastUsedAt = at
	return true, nil
}

func (r *fakeSessionRepo) Revoke(_ context.Context, sessionID uuid.UUID, at time.Time) error {
	if session, ok := r.sessions[sessionID]; ok {
		revoked := at
		session.RevokedAt = &revoked
	}
	return nil
}

func (r *fakeSessionRepo) RevokeAllByAccount(_ context.Context, accountID uuid.UUID, at time.Time) error {
	for _, session := range r.sessions {
		if session.AccountID == accountID && session.RevokedAt == nil {
			revoked := at
			session.RevokedAt = &revoked
		}
	}
	return nil
}

func (r *fakeSessionRepo) CleanupExpired(_ context.Context, now time.Time) error {
	for id, session := range r.sessions {
		if session.ExpiresAt.Before(now) {
			delete(r.sessions, id)
		}
	}
	return nil
}

type fakeSecurityLogRepo struct {
	logs []entity.SecurityLog
}

func (r *fakeSecurityLogRepo) Log(_ context.Context, log *entity.SecurityLog) error {
	r.logs = append(r.logs, *log)
	return nil
}

type sentEmail struct {
	To    string
	Token string
	Kind  string
}

type fakeEmailSender struct {
	sent []sentEmail
	err  error
}

func (s *fakeEmailSender) SendVerificationEmail(_ context.Context, email string, token string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentEmail{To: email, Token: token, Kind: "verify"})
	return nil
}

func (s *fakeEmailSender) SendPasswordResetEmail(_ context.Context, email string, token string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentEmail{To: email, Token: token, Kind: "reset"})
	return nil
}

type fakeRateLimiter struct {
	allowed bool
	checked []string
	resets  []string
}

func newFakeRateLimiter() *fakeRateLimiter {
	return &fakeRateLimiter{allowed: true}
}

func (l *fakeRateLimiter) IsAllowed(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	l.checked = append(l.checked, key)
	return l.allowed, nil
}

func (l *fakeRateLimiter) Reset(_ context.Context, key string) error {
	l.resets = append(l.resets, key)
	return nil
}

var _ repository.AccountRepository = (*fakeAccountRepo)(nil)
var _ repository.CredentialRepository = (*fakeCredentialRepo)(nil)
var _ repository.VerificationTokenRepository = (*fakeVerificationTokenRepo)(nil)
var _ repository.SessionRepository = (*fakeSessionRepo)(nil)
var _ repository.SecurityLogRepository = (*fakeSecurityLogRepo)(nil)
var _ repository.TxManager = fakeTxManager{}
