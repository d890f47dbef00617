package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

const verificationKeyPrefix = "helpdesk:email_verification"

// MaxVerificationAttempts is how many wrong guesses a code survives. The code
// is discarded on the last one and a new code must be requested.
const MaxVerificationAttempts = 5

// consumeScript deletes the stored code only when it matches, so a code can be
// redeemed exactly once. Misses are counted in KEYS[2], which expires with the
// code; reaching ARGV[2] misses discards both keys.
var consumeScript = redis.NewScript(`
local stored = redis.call("GET", KEYS[1])
if not stored then
    return 0
end
if stored == ARGV[1] then
    redis.call("DEL", KEYS[1], KEYS[2])
    return 1
end
local attempts = redis.call("INCR", KEYS[2])
if attempts == 1 then
    local ttl = redis.call("PTTL", KEYS[1])
    if ttl > 0 then
        redis.call("PEXPIRE", KEYS[2], ttl)
    end
end
if attempts >= tonumber(ARGV[2]) then
    redis.call("DEL", KEYS[1], KEYS[2])
end
return 0
`)

// VerificationCodeRepository stores self-expiring email verification codes.
type VerificationCodeRepository interface {
	// Save stores code for its (user, email) pair, replacing any earlier code.
	// The record expires after ttl.
	Save(ctx context.Context, code *domain.EmailVerificationCode, ttl time.Duration) error
	// Consume atomically deletes the record when code matches and reports
	// whether it did. After MaxVerificationAttempts misses the record is gone.
	Consume(ctx context.Context, userID, email, code string) (bool, error)
	Delete(ctx context.Context, userID, email string) error
}

type verificationCodeRepository struct {
	client redis.UniversalClient
}

// NewVerificationCodeRepository returns a Redis-backed implementation.
func NewVerificationCodeRepository(client redis.UniversalClient) VerificationCodeRepository {
	return &verificationCodeRepository{client: client}
}

func (r *verificationCodeRepository) Save(ctx context.Context, code *domain.EmailVerificationCode, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("verification code ttl must be positive")
	}
	key := verificationKey(code.UserID, code.Email)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, code.Code, ttl)
		pipe.Del(ctx, attemptsKey(key))
		return nil
	})
	return err
}

func (r *verificationCodeRepository) Consume(ctx context.Context, userID, email, code string) (bool, error) {
	key := verificationKey(userID, email)
	deleted, err := consumeScript.Run(ctx, r.client, []string{key, attemptsKey(key)}, code, MaxVerificationAttempts).Int()
	if err != nil {
		return false, fmt.Errorf("consume verification code: %w", err)
	}
	return deleted == 1, nil
}

func (r *verificationCodeRepository) Delete(ctx context.Context, userID, email string) error {
	key := verificationKey(userID, email)
	return r.client.Del(ctx, key, attemptsKey(key)).Err()
}

// verificationKey hash-tags the pair so the code and its attempt counter share
// a cluster slot.
func verificationKey(userID, email string) string {
	return fmt.Sprintf("%s:{%s:%s}", verificationKeyPrefix, userID, strings.ToLower(strings.TrimSpace(email)))
}

func attemptsKey(key string) string {
	return key + ":attempts"
}
