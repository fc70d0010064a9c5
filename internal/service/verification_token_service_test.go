package service

import (
	"context"
	"testing"
	"time"

	"habitbeat/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenServiceForTest() (*VerificationTokenService, *fakeVerificationTokenRepo, *fakeClock) {
	repo := newFakeVerificationTokenRepo()
	clock := newFakeClock()
	svc := NewVerificationTokenService(repo, HMACTokenHasher{Key: []byte("test-key")}, clock)
	return svc, repo, clock
}

func TestVerificationTokenIssueAndConsume(t *testing.T) {
	svc, _, _ := newTokenServiceForTest()
	ctx := context.Background()
	accountID := uuid.New()

	raw, err := svc.Issue(ctx, accountID, entity.PurposeEmailVerify, 30*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	token, err := svc.Consume(ctx, raw, entity.PurposeEmailVerify)
	require.NoError(t, err)
	assert.Equal(t, accountID, token.AccountID)
	assert.NotNil(t, token.ConsumedAt)
}

func TestVerificationTokenConsumeIsSingleUse(t *testing.T) {
	svc, _, _ := newTokenServiceForTest()
	ctx := context.Background()

	raw, err := svc.Issue(ctx, uuid.New(), entity.PurposeEmailVerify, 30*time.Minute)
	require.NoError(t, err)

	_, err = svc.Consume(ctx, raw, entity.PurposeEmailVerify)
	require.NoError(t, err)

	_, err = svc.Consume(ctx, raw, entity.PurposeEmailVerify)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerificationTokenReissueInvalidatesPrior(t *testing.T) {
	svc, _, _ := newTokenServiceForTest()
	ctx := context.Background()
	accountID := uuid.New()

	first, err := svc.Issue(ctx, accountID, entity.PurposeEmailVerify, 30*time.Minute)
	require.NoError(t, err)
	second, err := svc.Issue(ctx, accountID, entity.PurposeEmailVerify, 30*time.Minute)
	require.NoError(t, err)

	_, err = svc.Consume(ctx, first, entity.PurposeEmailVerify)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Consume(ctx, second, entity.PurposeEmailVerify)
	assert.NoError(t, err)
}

func TestVerificationTokenReissueLeavesOtherPurposeAlive(t *testing.T) {
	svc, _, _ := newTokenServiceForTest()
	ctx := context.Background()
	accountID := uuid.New()

	resetToken, err := svc.Issue(ctx, accountID, entity.PurposePasswordReset, 30*time.Minute)
	require.NoError(t, err)
	_, err = svc.Issue(ctx, accountID, entity.PurposeEmailVerify, 30*time.Minute)
	require.NoError(t, err)

	_, err = svc.Consume(ctx, resetToken, entity.PurposePasswordReset)
	assert.NoError(t, err)
}

func TestVerificationTokenPurposeScoping(t *testing.T) {
	svc, _, _ := newTokenServiceForTest()
	ctx := context.Background()

	raw, err := svc.Issue(ctx, uuid.New(), entity.PurposePasswordReset, 30*time.Minute)
	require.NoError(t, err)

	// A password-reset token must never validate an email verification.
	_, err = svc.Consume(ctx, raw, entity.PurposeEmailVerify)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerificationTokenExpiry(t *testing.T) {
	svc, _, clock := newTokenServiceForTest()
	ctx := context.Background()

	raw, err := svc.Issue(ctx, uuid.New(), entity.PurposeEmailVerify, 30*time.Minute)
	require.NoError(t, err)

	clock.Advance(31 * time.Minute)

	_, err = svc.Consume(ctx, raw, entity.PurposeEmailVerify)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerificationTokenUnknownRaw(t *testing.T) {
	svc, _, _ := newTokenServiceForTest()
	ctx := context.Background()

	_, err := svc.Issue(ctx, uuid.New(), entity.PurposeEmailVerify, 30*time.Minute)
	require.NoError(t, err)

	_, err = svc.Consume(ctx, "definitely-not-the-token", entity.PurposeEmailVerify)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerificationTokenRawNeverStored(t *testing.T) {
	svc, repo, _ := newTokenServiceForTest()
	ctx := context.Background()

	raw, err := svc.Issue(ctx, uuid.New(), entity.PurposeEmailVerify, 30*time.Minute)
	require.NoError(t, err)

	for _, token := range repo.tokens {
		assert.NotEqual(t, raw, token.TokenHash)
	}
}
