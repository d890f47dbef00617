package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/validation"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// CreateUserInput is the registration payload.
type CreateUserInput struct {
	Name     string      `json:"name" validate:"required,notblank,max=120"`
	Email    string      `json:"email" validate:"required,email,max=254"`
	CPF      string      `json:"cpf" validate:"required,cpf"`
	Password string      `json:"password" validate:"required,min=8,max=72"`
	Role     domain.Role `json:"role" validate:"required,oneof=user technician"`
	Phone    string      `json:"phone" validate:"required,notblank,max=20"`
}

// UpdateUserInput is a partial profile update; nil fields are left untouched.
type UpdateUserInput struct {
	Name     *string `json:"name" validate:"omitempty,notblank,max=120"`
	Email    *string `json:"email" validate:"omitempty,email,max=254"`
	CPF      *string `json:"cpf" validate:"omitempty,cpf"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
	Phone    *string `json:"phone" validate:"omitempty,notblank,max=20"`
}

// UserListFilter narrows GetUsers.
type UserListFilter struct {
	Role   *domain.Role
	Limit  int
	Offset int
}

// UserService manages accounts. Every user it returns is sanitized.
type UserService struct {
	users      repository.UserRepository
	bcryptCost int
}

func NewUserService(users repository.UserRepository, bcryptCost int) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost}
}

// CreateUser registers an account after checking email and cpf are unused.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	cpf := validation.NormalizeCPF(input.CPF)

	if err := s.ensureUnique(ctx, input.Email, cpf, ""); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		CPF:          cpf,
		Role:         input.Role,
		PasswordHash: hash,
		Phone:        input.Phone,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, s.writeError(err)
	}
	return user.Sanitized(), nil
}

func (s *UserService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	if err := requireID(id, "user"); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "user")
	}
	return user.Sanitized(), nil
}

func (s *UserService) GetUsers(ctx context.Context, filter UserListFilter) ([]domain.User, error) {
	if filter.Role != nil && !filter.Role.Valid() {
		return nil, apperrors.NewValidationError("role must be one of [user technician]", nil)
	}
	users, err := s.users.List(ctx, repository.UserFilter{Role: filter.Role, Limit: filter.Limit, Offset: filter.Offset})
	if err != nil {
		return nil, storeError(err, "user")
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// UpdateUser applies a partial update. Changing the email clears EmailVerified.
func (s *UserService) UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error) {
	if err := requireID(id, "user"); err != nil {
		return nil, err
	}
	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		input.Name = &trimmed
	}
	if input.Email != nil {
		normalized := normalizeEmail(*input.Email)
		input.Email = &normalized
	}
	if input.Phone != nil {
		trimmed := strings.TrimSpace(*input.Phone)
		input.Phone = &trimmed
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "user")
	}

	var email, cpf string
	if input.Email != nil && !strings.EqualFold(*input.Email, user.Email) {
		email = *input.Email
	}
	if input.CPF != nil {
		if normalized := validation.NormalizeCPF(*input.CPF); normalized != user.CPF {
			cpf = normalized
		}
	}
	if err := s.ensureUnique(ctx, email, cpf, user.ID); err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if email != "" {
		user.Email = email
		user.EmailVerified = false
	}
	if cpf != "" {
		user.CPF = cpf
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.Password != nil {
		hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, s.writeError(err)
	}
	return user.Sanitized(), nil
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := requireID(id, "user"); err != nil {
		return err
	}
	return storeError(s.users.Delete(ctx, id), "user")
}

// VerifyPassword reports whether plaintext matches the stored hash. A mismatch is
// not an error.
func (s *UserService) VerifyPassword(ctx context.Context, id, plaintext string) (bool, error) {
	if err := requireID(id, "user"); err != nil {
		return false, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return false, storeError(err, "user")
	}
	ok, err := auth.PasswordMatches(user.PasswordHash, plaintext)
	if err != nil {
		return false, apperrors.NewInternalError(err)
	}
	return ok, nil
}

// MarkEmailVerified flags the account's current email as verified.
func (s *UserService) MarkEmailVerified(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "user")
	}
	if user.EmailVerified {
		return user.Sanitized(), nil
	}
	user.EmailVerified = true
	if err := s.users.Update(ctx, user); err != nil {
		return nil, s.writeError(err)
	}
	return user.Sanitized(), nil
}

func (s *UserService) ensureUnique(ctx context.Context, email, cpf, excludeID string) error {
	if email == "" && cpf == "" {
		return nil
	}
	existing, err := s.users.FindConflicting(ctx, email, cpf, excludeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return storeError(err, "user")
	}
	details := map[string]any{}
	if email != "" && strings.EqualFold(existing.Email, email) {
		details["email"] = "already in use"
	}
	if cpf != "" && existing.CPF == cpf {
		details["cpf"] = "already in use"
	}
	return apperrors.NewConflict("email or cpf already in use", details)
}

// writeError turns a unique violation that slipped past ensureUnique into a Conflict.
func (s *UserService) writeError(err error) error {
	if apperrors.IsUniqueViolation(err) {
		return apperrors.NewConflict("email or cpf already in use", nil)
	}
	return storeError(err, "user")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
