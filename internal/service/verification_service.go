package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/validation"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

var codeSpace = big.NewInt(1_000_000)

// VerificationRequestInput names the address to verify.
type VerificationRequestInput struct {
	Email string `json:"email" validate:"required,email"`
}

// VerificationConfirmInput carries the code sent to the address.
type VerificationConfirmInput struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// VerificationService issues and redeems one-time email verification codes.
type VerificationService struct {
	codes repository.VerificationCodeRepository
	users *UserService
	ttl   time.Duration
	now   func() time.Time
}

func NewVerificationService(codes repository.VerificationCodeRepository, users *UserService, ttl time.Duration) *VerificationService {
	return &VerificationService{codes: codes, users: users, ttl: ttl, now: time.Now}
}

// TTL reports how long issued codes stay valid.
func (s *VerificationService) TTL() time.Duration {
	return s.ttl
}

// CreateCode issues a random six digit code for the pair, superseding any
// earlier code for it.
func (s *VerificationService) CreateCode(ctx context.Context, userID, email string) (*domain.EmailVerificationCode, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	now := s.now().UTC()
	code := &domain.EmailVerificationCode{
		UserID:    userID,
		Email:     normalizeEmail(email),
		Code:      fmt.Sprintf("%06d", n.Int64()),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.codes.Save(ctx, code, s.ttl); err != nil {
		return nil, storeError(err, "verification code")
	}
	return code, nil
}

// ValidateCode redeems code. Wrong, expired and already used codes are
// indistinguishable to the caller.
func (s *VerificationService) ValidateCode(ctx context.Context, userID, email, code string) error {
	ok, err := s.codes.Consume(ctx, userID, normalizeEmail(email), code)
	if err != nil {
		return storeError(err, "verification code")
	}
	if !ok {
		return apperrors.NewValidationError("invalid or expired verification code", nil)
	}
	return nil
}

func (s *VerificationService) DeleteCode(ctx context.Context, userID, email string) error {
	return storeError(s.codes.Delete(ctx, userID, normalizeEmail(email)), "verification code")
}

// RequestVerification issues a code for the user's current email address.
func (s *VerificationService) RequestVerification(ctx context.Context, userID string, input VerificationRequestInput) (*domain.User, *domain.EmailVerificationCode, error) {
	input.Email = normalizeEmail(input.Email)
	if err := validation.Struct(input); err != nil {
		return nil, nil, err
	}
	user, err := s.accountFor(ctx, userID, input.Email)
	if err != nil {
		return nil, nil, err
	}
	code, err := s.CreateCode(ctx, user.ID, user.Email)
	if err != nil {
		return nil, nil, err
	}
	return user, code, nil
}

// ConfirmVerification redeems the code and marks the email verified.
func (s *VerificationService) ConfirmVerification(ctx context.Context, userID string, input VerificationConfirmInput) (*domain.User, error) {
	input.Email = normalizeEmail(input.Email)
	input.Code = strings.TrimSpace(input.Code)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	user, err := s.accountFor(ctx, userID, input.Email)
	if err != nil {
		return nil, err
	}
	if err := s.ValidateCode(ctx, user.ID, user.Email, input.Code); err != nil {
		return nil, err
	}
	return s.users.MarkEmailVerified(ctx, user.ID)
}

func (s *VerificationService) accountFor(ctx context.Context, userID, email string) (*domain.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(user.Email, email) {
		return nil, apperrors.NewValidationError("email does not match the account", map[string]any{"email": email})
	}
	return user, nil
}
