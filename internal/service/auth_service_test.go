package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestLogin(t *testing.T) {
	users, repo := newUserService()
	tokens := auth.NewTokenManager("test-secret", 60)
	svc := NewAuthService(repo, tokens)
	ana := registerUser(t, users, "Ana", "ana@example.com", "52998224725", domain.RoleUser)

	result, err := svc.Login(context.Background(), LoginInput{Email: "ANA@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, ana.ID, result.User.ID)
	assert.Empty(t, result.User.PasswordHash)
	assert.NotEmpty(t, result.Token.Value)

	claims, err := tokens.ParseToken(result.Token.Value)
	require.NoError(t, err)
	identity := claims.Identity()
	assert.Equal(t, ana.ID, identity.UserID)
	assert.Equal(t, domain.RoleUser, identity.Role)
	assert.Equal(t, "ana@example.com", identity.Email)
	assert.Equal(t, "Ana", identity.Name)
}

func TestLoginFailures(t *testing.T) {
	users, repo := newUserService()
	svc := NewAuthService(repo, auth.NewTokenManager("test-secret", 60))
	registerUser(t, users, "Ana", "ana@example.com", "52998224725", domain.RoleUser)

	_, err := svc.Login(context.Background(), LoginInput{Email: "ana@example.com", Password: "wrong-pass"})
	assertStatus(t, err, http.StatusUnauthorized)

	_, err = svc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "whatever"})
	assertStatus(t, err, http.StatusNotFound)

	_, err = svc.Login(context.Background(), LoginInput{Email: "ana@example.com"})
	assertStatus(t, err, http.StatusBadRequest)
}
