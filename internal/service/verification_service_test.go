package service

import (
	"context"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type verificationFixture struct {
	svc   *VerificationService
	users *UserService
	redis *miniredis.Miniredis
	user  *domain.User
}

func newVerificationFixture(t *testing.T) verificationFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	users, _ := newUserService()
	user := registerUser(t, users, "Ana", "ana@example.com", "52998224725", domain.RoleUser)
	svc := NewVerificationService(repository.NewVerificationCodeRepository(client), users, 15*time.Minute)
	return verificationFixture{svc: svc, users: users, redis: mr, user: user}
}

func TestCreateCodeFormat(t *testing.T) {
	f := newVerificationFixture(t)
	sixDigits := regexp.MustCompile(`^\d{6}$`)

	for i := 0; i < 20; i++ {
		code, err := f.svc.CreateCode(context.Background(), f.user.ID, f.user.Email)
		require.NoError(t, err)
		assert.Regexp(t, sixDigits, code.Code)
		assert.Equal(t, 15*time.Minute, code.ExpiresAt.Sub(code.CreatedAt))
	}
}

func TestValidateCodeIsSingleUse(t *testing.T) {
	f := newVerificationFixture(t)
	ctx := context.Background()
	code, err := f.svc.CreateCode(ctx, f.user.ID, "ANA@example.com")
	require.NoError(t, err)

	assertStatus(t, f.svc.ValidateCode(ctx, f.user.ID, f.user.Email, "not-it"), http.StatusBadRequest)
	require.NoError(t, f.svc.ValidateCode(ctx, f.user.ID, f.user.Email, code.Code))
	assertStatus(t, f.svc.ValidateCode(ctx, f.user.ID, f.user.Email, code.Code), http.StatusBadRequest)
}

func TestValidateCodeExpires(t *testing.T) {
	f := newVerificationFixture(t)
	ctx := context.Background()
	code, err := f.svc.CreateCode(ctx, f.user.ID, f.user.Email)
	require.NoError(t, err)

	f.redis.FastForward(15*time.Minute + time.Second)
	assertStatus(t, f.svc.ValidateCode(ctx, f.user.ID, f.user.Email, code.Code), http.StatusBadRequest)
}

func TestDeleteCode(t *testing.T) {
	f := newVerificationFixture(t)
	ctx := context.Background()
	code, err := f.svc.CreateCode(ctx, f.user.ID, f.user.Email)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteCode(ctx, f.user.ID, f.user.Email))
	assertStatus(t, f.svc.ValidateCode(ctx, f.user.ID, f.user.Email, code.Code), http.StatusBadRequest)
}

func TestRequestAndConfirmVerification(t *testing.T) {
	f := newVerificationFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.RequestVerification(ctx, f.user.ID, VerificationRequestInput{Email: "someone@example.com"})
	assertStatus(t, err, http.StatusBadRequest)

	_, _, err = f.svc.RequestVerification(ctx, "1b4e28ba-2fa1-11d2-883f-0016d3cca427", VerificationRequestInput{Email: "ana@example.com"})
	assertStatus(t, err, http.StatusNotFound)

	user, first, err := f.svc.RequestVerification(ctx, f.user.ID, VerificationRequestInput{Email: "ana@example.com"})
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, user.ID)

	_, second, err := f.svc.RequestVerification(ctx, f.user.ID, VerificationRequestInput{Email: "ana@example.com"})
	require.NoError(t, err)

	if first.Code != second.Code {
		_, err = f.svc.ConfirmVerification(ctx, f.user.ID, VerificationConfirmInput{Email: "ana@example.com", Code: first.Code})
		assertStatus(t, err, http.StatusBadRequest)
	}

	_, err = f.svc.ConfirmVerification(ctx, f.user.ID, VerificationConfirmInput{Email: "ana@example.com", Code: "12a456"})
	assertStatus(t, err, http.StatusBadRequest)

	verified, err := f.svc.ConfirmVerification(ctx, f.user.ID, VerificationConfirmInput{Email: "ana@example.com", Code: second.Code})
	require.NoError(t, err)
	assert.True(t, verified.EmailVerified)

	reloaded, err := f.users.GetUserByID(ctx, f.user.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.EmailVerified)
}

func TestConfirmVerificationLocksAfterRepeatedMisses(t *testing.T) {
	f := newVerificationFixture(t)
	ctx := context.Background()
	_, code, err := f.svc.RequestVerification(ctx, f.user.ID, VerificationRequestInput{Email: "ana@example.com"})
	require.NoError(t, err)

	wrong := "000000"
	if code.Code == wrong {
		wrong = "000001"
	}
	for i := 0; i < repository.MaxVerificationAttempts; i++ {
		_, err = f.svc.ConfirmVerification(ctx, f.user.ID, VerificationConfirmInput{Email: "ana@example.com", Code: wrong})
		assertStatus(t, err, http.StatusBadRequest)
	}

	_, err = f.svc.ConfirmVerification(ctx, f.user.ID, VerificationConfirmInput{Email: "ana@example.com", Code: code.Code})
	assertStatus(t, err, http.StatusBadRequest)

	_, fresh, err := f.svc.RequestVerification(ctx, f.user.ID, VerificationRequestInput{Email: "ana@example.com"})
	require.NoError(t, err)
	verified, err := f.svc.ConfirmVerification(ctx, f.user.ID, VerificationConfirmInput{Email: "ana@example.com", Code: fresh.Code})
	require.NoError(t, err)
	assert.True(t, verified.EmailVerified)
}
