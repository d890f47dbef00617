package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository/testutil"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

const testCost = bcrypt.MinCost

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, status, domainErr.HTTPStatus, "unexpected error: %v", err)
}

func registerUser(t *testing.T, svc *UserService, name, email, cpf string, role domain.Role) *domain.User {
	t.Helper()
	user, err := svc.CreateUser(context.Background(), CreateUserInput{
		Name:     name,
		Email:    email,
		CPF:      cpf,
		Password: "s3cret-pass",
		Role:     role,
		Phone:    "(11) 99999-0000",
	})
	require.NoError(t, err)
	return user
}

func newUserService() (*UserService, *testutil.MockUserRepository) {
	repo := testutil.NewMockUserRepository()
	return NewUserService(repo, testCost), repo
}

