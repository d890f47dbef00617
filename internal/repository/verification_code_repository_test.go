package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, VerificationCodeRepository) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewVerificationCodeRepository(client)
}

func saveCode(t *testing.T, repo VerificationCodeRepository, code string) {
	t.Helper()
	err := repo.Save(context.Background(), &domain.EmailVerificationCode{
		UserID: "user-1",
		Email:  "Ana@Example.com",
		Code:   code,
	}, 15*time.Minute)
	require.NoError(t, err)
}

func TestVerificationCodeConsumeIsSingleUse(t *testing.T) {
	_, repo := setupMiniRedis(t)
	ctx := context.Background()
	saveCode(t, repo, "123456")

	ok, err := repo.Consume(ctx, "user-1", "ana@example.com", "000000")
	require.NoError(t, err)
	assert.False(t, ok, "wrong code must not match")

	ok, err = repo.Consume(ctx, "user-1", "ana@example.com", "123456")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Consume(ctx, "user-1", "ana@example.com", "123456")
	require.NoError(t, err)
	assert.False(t, ok, "code is gone after first use")
}

func TestVerificationCodeExpires(t *testing.T) {
	mr, repo := setupMiniRedis(t)
	saveCode(t, repo, "654321")

	mr.FastForward(15*time.Minute + time.Second)

	ok, err := repo.Consume(context.Background(), "user-1", "ana@example.com", "654321")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerificationCodeNewCodeSupersedesOld(t *testing.T) {
	_, repo := setupMiniRedis(t)
	ctx := context.Background()
	saveCode(t, repo, "111111")
	saveCode(t, repo, "222222")

	ok, err := repo.Consume(ctx, "user-1", "ana@example.com", "111111")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Consume(ctx, "user-1", "ana@example.com", "222222")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerificationCodeDelete(t *testing.T) {
	mr, repo := setupMiniRedis(t)
	ctx := context.Background()
	saveCode(t, repo, "333333")

	require.NoError(t, repo.Delete(ctx, "user-1", "ana@example.com"))
	assert.False(t, mr.Exists(verificationKey("user-1", "ana@example.com")))
}

func TestVerificationCodeRejectsNonPositiveTTL(t *testing.T) {
	_, repo := setupMiniRedis(t)
	err := repo.Save(context.Background(), &domain.EmailVerificationCode{UserID: "u", Email: "e", Code: "1"}, 0)
	assert.Error(t, err)
}

func TestVerificationCodeDiscardedAfterTooManyMisses(t *testing.T) {
	mr, repo := setupMiniRedis(t)
	ctx := context.Background()
	saveCode(t, repo, "424242")
	key := verificationKey("user-1", "ana@example.com")

	for i := 0; i < MaxVerificationAttempts-1; i++ {
		ok, err := repo.Consume(ctx, "user-1", "ana@example.com", "000000")
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.True(t, mr.Exists(key), "code survives until the last allowed miss")
	assert.Greater(t, mr.TTL(attemptsKey(key)), time.Duration(0), "counter expires with the code")

	ok, err := repo.Consume(ctx, "user-1", "ana@example.com", "000001")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists(key))
	assert.False(t, mr.Exists(attemptsKey(key)))

	ok, err = repo.Consume(ctx, "user-1", "ana@example.com", "424242")
	require.NoError(t, err)
	assert.False(t, ok, "the right code no longer works once discarded")
}

func TestVerificationCodeNewCodeResetsMisses(t *testing.T) {
	_, repo := setupMiniRedis(t)
	ctx := context.Background()
	saveCode(t, repo, "111111")
	for i := 0; i < MaxVerificationAttempts-1; i++ {
		_, err := repo.Consume(ctx, "user-1", "ana@example.com", "999999")
		require.NoError(t, err)
	}

	saveCode(t, repo, "222222")
	_, err := repo.Consume(ctx, "user-1", "ana@example.com", "999999")
	require.NoError(t, err)

	ok, err := repo.Consume(ctx, "user-1", "ana@example.com", "222222")
	require.NoError(t, err)
	assert.True(t, ok)
}
