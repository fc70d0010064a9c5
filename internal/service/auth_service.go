package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"habitbeat/internal/entity"
	"habitbeat/internal/repository"
	"habitbeat/internal/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Burned once at startup so unknown-email logins cost a real bcrypt compare.
const dummyPasswordHash = "$2a$10$CwTycUXWue0Thq9StjUM0uJ8yQbWc1x9uxw2sQ2sXUNx5x9xJ9F2S"

// AuthService composes the token flow, session manager, access token issuer
// and rate limiter into the signup/login/refresh/logout/reset use cases.
// Every use case runs as one transaction: either all of its writes commit or
// none do.
type AuthService struct {
	accounts     repository.AccountRepository
	credentials  repository.CredentialRepository
	securityLogs repository.SecurityLogRepository

	tokens   *VerificationTokenService
	sessions *SessionService

	tx           repository.TxManager
	emailSender  EmailSender
	passwords    SecretHasher
	accessTokens AccessTokenIssuer
	limiter      RateLimiter
	clock        Clock
	config       AuthConfig
}

func NewAuthService(
	accounts repository.AccountRepository,
	credentials repository.CredentialRepository,
	securityLogs repository.SecurityLogRepository,
	tokens *VerificationTokenService,
	sessions *SessionService,
	tx repository.TxManager,
	emailSender EmailSender,
	passwords SecretHasher,
	accessTokens AccessTokenIssuer,
	limiter RateLimiter,
	clock Clock,
	config AuthConfig,
) *AuthService {
	return &AuthService{
		accounts:     accounts,
		credentials:  credentials,
		securityLogs: securityLogs,
		tokens:       tokens,
		sessions:     sessions,
		tx:           tx,
		emailSender:  emailSender,
		passwords:    passwords,
		accessTokens: accessTokens,
		limiter:      limiter,
		clock:        clock,
		config:       config,
	}
}

// Signup registers a new account and emails a verification link. A signup
// against an already registered email succeeds silently so the endpoint
// cannot be used to enumerate accounts.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) error {
	if strings.TrimSpace(input.Email) == "" || strings.TrimSpace(input.Password) == "" {
		return ErrInvalidInput
	}
	email := utils.NormalizeEmail(input.Email)

	return s.tx.Do(ctx, func(ctx context.Context) error {
		exists, err := s.accounts.ExistsByEmail(ctx, email)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		account := &entity.Account{Email: email}
		if err := s.accounts.Create(ctx, account); err != nil {
			return err
		}

		hash, err := s.passwords.Hash(input.Password)
		if err != nil {
			return err
		}
		credential := &entity.Credential{
			AccountID:    account.ID,
			PasswordHash: hash,
			SetAt:        s.clock.Now(),
		}
		if err := s.credentials.Create(ctx, credential); err != nil {
			return err
		}

		rawToken, err := s.tokens.Issue(ctx, account.ID, entity.PurposeEmailVerify, s.verificationTokenTTL())
		if err != nil {
			return err
		}
		if s.emailSender == nil {
			return nil
		}
		return s.emailSender.SendVerificationEmail(ctx, account.Email, rawToken)
	})
}

// VerifyEmail consumes an email_verify token, stamps the account verified and
// opens the first session.
func (s *AuthService) VerifyEmail(ctx context.Context, rawToken string, ipAddress *string, userAgent *string) (*AuthResult, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, ErrInvalidInput
	}

	var result *AuthResult
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		token, err := s.tokens.Consume(ctx, rawToken, entity.PurposeEmailVerify)
		if err != nil {
			return err
		}

		account, err := s.accounts.FindByID(ctx, token.AccountID)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrAccountNotFound
		}

		now := s.clock.Now()
		if err := s.accounts.MarkEmailVerified(ctx, account.ID, now); err != nil {
			return err
		}
		account.EmailVerifiedAt = &now

		result, err = s.openSession(ctx, account, ipAddress, userAgent)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ResendVerification re-issues the email_verify token. Unknown or already
// verified accounts are a silent no-op, same enumeration posture as Signup.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return ErrInvalidInput
	}
	email = utils.NormalizeEmail(email)

	return s.tx.Do(ctx, func(ctx context.Context) error {
		account, err := s.accounts.FindByEmail(ctx, email)
		if err != nil {
			return err
		}
		if account == nil || account.EmailVerifiedAt != nil {
			return nil
		}

		rawToken, err := s.tokens.Issue(ctx, account.ID, entity.PurposeEmailVerify, s.verificationTokenTTL())
		if err != nil {
			return err
		}
		if s.emailSender == nil {
			return nil
		}
		return s.emailSender.SendVerificationEmail(ctx, account.Email, rawToken)
	})
}

// Login authenticates a password against the stored credential. An unknown
// email and a wrong password fail with the same error, and the unknown-email
// path still pays for a hash compare so the two are not distinguishable by
// timing either. Rate limiting is checked first and does not consume the
// login failure budget.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	if strings.TrimSpace(input.Email) == "" || strings.TrimSpace(input.Password) == "" {
		return nil, ErrInvalidInput
	}
	email := utils.NormalizeEmail(input.Email)

	limitKey, err := s.checkLimit(ctx, "login", input.IPAddress, s.loginMaxAttempts(), s.loginWindow())
	if err != nil {
		return nil, err
	}

	var result *AuthResult
	txErr := s.tx.Do(ctx, func(ctx context.Context) error {
		account, err := s.accounts.FindByEmail(ctx, email)
		if err != nil {
			return err
		}
		if account == nil {
			_ = s.passwords.Matches(input.Password, dummyPasswordHash)
			return ErrInvalidCredentials
		}

		credential, err := s.credentials.FindByAccount(ctx, account.ID)
		if err != nil {
			return err
		}
		if credential == nil {
			_ = s.passwords.Matches(input.Password, dummyPasswordHash)
			return ErrInvalidCredentials
		}
		if !s.passwords.Matches(input.Password, credential.PasswordHash) {
			return ErrInvalidCredentials
		}

		if account.EmailVerifiedAt == nil {
			return ErrEmailNotVerified
		}

		result, err = s.openSession(ctx, account, input.IPAddress, input.UserAgent)
		return err
	})

	if txErr != nil {
		if errors.Is(txErr, ErrInvalidCredentials) {
			s.logSecurity(ctx, nil, input.IPAddress, entity.LoginFailed, map[string]any{"email": email})
		}
		return nil, txErr
	}

	if limitKey != "" {
		_ = s.limiter.Reset(ctx, limitKey)
	}
	s.logSecurity(ctx, &result.Account.ID, input.IPAddress, entity.LoginSuccess, nil)
	return result, nil
}

// Refresh rotates the session behind the presented secret and mints a fresh
// access token. A stale secret fails with ErrInvalidRefreshToken, which
// callers should treat as a possible replay signal.
func (s *AuthService) Refresh(ctx context.Context, rawRefreshSecret string) (*AuthResult, error) {
	if strings.TrimSpace(rawRefreshSecret) == "" {
		return nil, ErrInvalidInput
	}

	var result *AuthResult
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		newSecret, session, err := s.sessions.ValidateAndRotate(ctx, rawRefreshSecret)
		if err != nil {
			return err
		}

		account, err := s.accounts.FindByID(ctx, session.AccountID)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrAccountNotFound
		}

		accessToken, expiresIn, err := s.accessTokens.IssueAccessToken(*account)
		if err != nil {
			return err
		}
		result = &AuthResult{
			Account:          account,
			AccessToken:      accessToken,
			ExpiresIn:        int64(expiresIn.Seconds()),
			RefreshToken:     newSecret,
			RefreshExpiresIn: int64(session.ExpiresAt.Sub(s.clock.Now()).Seconds()),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Logout revokes the session behind the presented refresh secret.
func (s *AuthService) Logout(ctx context.Context, rawRefreshSecret string, ipAddress *string) error {
	if strings.TrimSpace(rawRefreshSecret) == "" {
		return ErrInvalidSession
	}

	var accountID uuid.UUID
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		session, err := s.sessions.FindValidSession(ctx, rawRefreshSecret)
		if errors.Is(err, ErrInvalidRefreshToken) {
			return ErrInvalidSession
		}
		if err != nil {
			return err
		}
		accountID = session.AccountID
		return s.sessions.Revoke(ctx, session)
	})
	if err != nil {
		return err
	}

	s.logSecurity(ctx, &accountID, ipAddress, entity.Logout, nil)
	return nil
}

// LogoutAll revokes every live session of the account. The caller is
// expected to have taken the identity from a verified access token.
func (s *AuthService) LogoutAll(ctx context.Context, accountID uuid.UUID, ipAddress *string) error {
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		account, err := s.accounts.FindByID(ctx, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrAccountNotFound
		}
		return s.sessions.RevokeAll(ctx, account.ID)
	})
	if err != nil {
		return err
	}

	s.logSecurity(ctx, &accountID, ipAddress, entity.SessionRevoked, map[string]any{"scope": "all"})
	return nil
}

// ForgotPassword issues a password_reset token. Unknown emails are a silent
// no-op. Rate limited per client IP.
func (s *AuthService) ForgotPassword(ctx context.Context, email string, ipAddress *string) error {
	if strings.TrimSpace(email) == "" {
		return ErrInvalidInput
	}
	email = utils.NormalizeEmail(email)

	if _, err := s.checkLimit(ctx, "forgot", ipAddress, s.forgotMaxAttempts(), s.forgotWindow()); err != nil {
		return err
	}

	return s.tx.Do(ctx, func(ctx context.Context) error {
		account, err := s.accounts.FindByEmail(ctx, email)
		if err != nil {
			return err
		}
		if account == nil {
			return nil
		}

		rawToken, err := s.tokens.Issue(ctx, account.ID, entity.PurposePasswordReset, s.resetTokenTTL())
		if err != nil {
			return err
		}
		if s.emailSender == nil {
			return nil
		}
		return s.emailSender.SendPasswordResetEmail(ctx, account.Email, rawToken)
	})
}

// ResetPassword consumes a password_reset token, replaces the credential
// wholesale and revokes every outstanding session, forcing re-authentication
// everywhere.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken string, newPassword string) error {
	if strings.TrimSpace(rawToken) == "" || strings.TrimSpace(newPassword) == "" {
		return ErrInvalidInput
	}

	var accountID uuid.UUID
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		token, err := s.tokens.Consume(ctx, rawToken, entity.PurposePasswordReset)
		if err != nil {
			return err
		}

		account, err := s.accounts.FindByID(ctx, token.AccountID)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrAccountNotFound
		}
		accountID = account.ID

		hash, err := s.passwords.Hash(newPassword)
		if err != nil {
			return err
		}
		if err := s.credentials.Replace(ctx, account.ID, hash, s.clock.Now()); err != nil {
			return err
		}
		return s.sessions.RevokeAll(ctx, account.ID)
	})
	if err != nil {
		return err
	}

	s.logSecurity(ctx, &accountID, nil, entity.Reset, nil)
	return nil
}

// ParseAccessToken resolves the account identity carried by a bearer token.
func (s *AuthService) ParseAccessToken(token string) (uuid.UUID, error) {
	return s.accessTokens.ParseAccessToken(token)
}

func (s *AuthService) openSession(
	ctx context.Context,
	account *entity.Account,
	ipAddress *string,
	userAgent *string,
) (*AuthResult, error) {
	rawSecret, session, err := s.sessions.Create(ctx, account.ID, ipAddress, userAgent, s.refreshTokenTTL())
	if err != nil {
		return nil, err
	}

	accessToken, expiresIn, err := s.accessTokens.IssueAccessToken(*account)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		Account:          account,
		AccessToken:      accessToken,
		ExpiresIn:        int64(expiresIn.Seconds()),
		RefreshToken:     rawSecret,
		RefreshExpiresIn: int64(session.ExpiresAt.Sub(s.clock.Now()).Seconds()),
	}, nil
}

// checkLimit gates a use case before it touches the store. A rate-limited
// request is rejected up front and never counted as a failed attempt of the
// underlying operation.
func (s *AuthService) checkLimit(ctx context.Context, action string, ipAddress *string, maxAttempts int, window time.Duration) (string, error) {
	if s.limiter == nil || ipAddress == nil || *ipAddress == "" {
		return "", nil
	}
	key := action + ":" + *ipAddress
	allowed, err := s.limiter.IsAllowed(ctx, key, maxAttempts, window)
	if err != nil {
		return "", err
	}
	if !allowed {
		return "", ErrRateLimited
	}
	return key, nil
}

func (s *AuthService) logSecurity(ctx context.Context, accountID *uuid.UUID, ipAddress *string, action entity.SecurityAction, metadata map[string]any) {
	if s.securityLogs == nil {
		return
	}
	var payload datatypes.JSON
	if metadata != nil {
		bytes, err := json.Marshal(metadata)
		if err != nil {
			return
		}
		payload = datatypes.JSON(bytes)
	}

	_ = s.securityLogs.Log(ctx, &entity.SecurityLog{
		AccountID: accountID,
		IPAddress: ipAddress,
		Action:    action,
		Metadata:  payload,
	})
}

func (s *AuthService) verificationTokenTTL() time.Duration {
	if s.config.VerificationTokenTTL > 0 {
		return s.config.VerificationTokenTTL
	}
	return 30 * time.Minute
}

func (s *AuthService) resetTokenTTL() time.Duration {
	if s.config.ResetTokenTTL > 0 {
		return s.config.ResetTokenTTL
	}
	return 30 * time.Minute
}

func (s *AuthService) refreshTokenTTL() time.Duration {
	if s.config.RefreshTokenTTL > 0 {
		return s.config.RefreshTokenTTL
	}
	return 30 * 24 * time.Hour
}

func (s *AuthService) loginMaxAttempts() int {
	if s.config.LoginMaxAttempts > 0 {
		return s.config.LoginMaxAttempts
	}
	return 5
}

func (s *AuthService) loginWindow() time.Duration {
	if s.config.LoginWindow > 0 {
		return s.config.LoginWindow
	}
	return 15 * time.Minute
}

func (s *AuthService) forgotMaxAttempts() int {
	if s.config.ForgotMaxAttempts > 0 {
		return s.config.ForgotMaxAttempts
	}
	return 3
}

func (s *AuthService) forgotWindow() time.Duration {
	if s.config.ForgotWindow > 0 {
		return s.config.ForgotWindow
	}
	return time.Hour
}
