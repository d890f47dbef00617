package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestCreateUser(t *testing.T) {
	svc, repo := newUserService()
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, CreateUserInput{
		Name:     "  Ana Souza ",
		Email:    " Ana@Example.com ",
		CPF:      "529.982.247-25",
		Password: "s3cret-pass",
		Role:     domain.RoleUser,
		Phone:    "11999990000",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", user.Name)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, "52998224725", user.CPF)
	assert.Empty(t, user.PasswordHash)
	assert.False(t, user.EmailVerified)

	stored, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordHash)
}

func TestCreateUserValidation(t *testing.T) {
	svc, _ := newUserService()
	valid := CreateUserInput{Name: "Ana", Email: "ana@example.com", CPF: "52998224725", Password: "s3cret-pass", Role: domain.RoleUser, Phone: "11999990000"}

	cases := map[string]func(in *CreateUserInput){
		"missing name":  func(in *CreateUserInput) { in.Name = "   " },
		"bad email":     func(in *CreateUserInput) { in.Email = "not-an-email" },
		"bad cpf":       func(in *CreateUserInput) { in.CPF = "52998224726" },
		"short pass":    func(in *CreateUserInput) { in.Password = "short" },
		"unknown role":  func(in *CreateUserInput) { in.Role = "admin" },
		"missing phone": func(in *CreateUserInput) { in.Phone = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			input := valid
			mutate(&input)
			_, err := svc.CreateUser(context.Background(), input)
			assertStatus(t, err, http.StatusBadRequest)
		})
	}
}

func TestCreateUserDuplicateEmailOrCPF(t *testing.T) {
	svc, _ := newUserService()
	registerUser(t, svc, "Ana", "ana@example.com", "52998224725", domain.RoleUser)

	_, err := svc.CreateUser(context.Background(), CreateUserInput{
		Name: "Other", Email: "ANA@example.com", CPF: "11144477735", Password: "s3cret-pass", Role: domain.RoleUser, Phone: "1",
	})
	assertStatus(t, err, http.StatusConflict)

	_, err = svc.CreateUser(context.Background(), CreateUserInput{
		Name: "Other", Email: "other@example.com", CPF: "529.982.247-25", Password: "s3cret-pass", Role: domain.RoleUser, Phone: "1",
	})
	assertStatus(t, err, http.StatusConflict)
}

func TestGetUserByID(t *testing.T) {
	svc, _ := newUserService()
	user := registerUser(t, svc, "Ana", "ana@example.com", "52998224725", domain.RoleUser)

	found, err := svc.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Empty(t, found.PasswordHash)

	_, err = svc.GetUserByID(context.Background(), "not-a-uuid")
	assertStatus(t, err, http.StatusBadRequest)

	_, err = svc.GetUserByID(context.Background(), "1b4e28ba-2fa1-11d2-883f-0016d3cca427")
	assertStatus(t, err, http.StatusNotFound)
}

func TestGetUsersFiltersByRoleAndStripsHashes(t *testing.T) {
	svc, _ := newUserService()
	registerUser(t, svc, "Ana", "ana@example.com", "52998224725", domain.RoleUser)
	registerUser(t, svc, "Tina", "tina@example.com", "11144477735", domain.RoleTechnician)

	all, err := svc.GetUsers(context.Background(), UserListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	for _, u := range all {
		assert.Empty(t, u.PasswordHash)
	}

	role := domain.RoleTechnician
	techs, err := svc.GetUsers(context.Background(), UserListFilter{Role: &role})
	require.NoError(t, err)
	require.Len(t, techs, 1)
	assert.Equal(t, "Tina", techs[0].Name)

	bad := domain.Role("admin")
	_, err = svc.GetUsers(context.Background(), UserListFilter{Role: &bad})
	assertStatus(t, err, http.StatusBadRequest)
}

func TestUpdateUser(t *testing.T) {
	svc, repo := newUserService()
	ctx := context.Background()
	ana := registerUser(t, svc, "Ana", "ana@example.com", "52998224725", domain.RoleUser)
	registerUser(t, svc, "Bob", "bob@example.com", "11144477735", domain.RoleUser)

	stored, _ := repo.GetByID(ctx, ana.ID)
	stored.EmailVerified = true
	require.NoError(t, repo.Update(ctx, stored))

	name := "Ana Maria"
	updated, err := svc.UpdateUser(ctx, ana.ID, UpdateUserInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", updated.Name)
	assert.True(t, updated.EmailVerified, "email unchanged keeps verification")

	taken := "BOB@example.com"
	_, err = svc.UpdateUser(ctx, ana.ID, UpdateUserInput{Email: &taken})
	assertStatus(t, err, http.StatusConflict)

	takenCPF := "111.444.777-35"
	_, err = svc.UpdateUser(ctx, ana.ID, UpdateUserInput{CPF: &takenCPF})
	assertStatus(t, err, http.StatusConflict)

	invalidCPF := "12345678900"
	_, err = svc.UpdateUser(ctx, ana.ID, UpdateUserInput{CPF: &invalidCPF})
	assertStatus(t, err, http.StatusBadRequest)

	sameEmail := "ana@example.com"
	_, err = svc.UpdateUser(ctx, ana.ID, UpdateUserInput{Email: &sameEmail})
	require.NoError(t, err, "own email is not a conflict")

	newEmail := "ana.maria@example.com"
	updated, err = svc.UpdateUser(ctx, ana.ID, UpdateUserInput{Email: &newEmail})
	require.NoError(t, err)
	assert.Equal(t, newEmail, updated.Email)
	assert.False(t, updated.EmailVerified)

	password := "another-pass"
	_, err = svc.UpdateUser(ctx, ana.ID, UpdateUserInput{Password: &password})
	require.NoError(t, err)
	ok, err := svc.VerifyPassword(ctx, ana.ID, "another-pass")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDeleteUser(t *testing.T) {
	svc, _ := newUserService()
	ana := registerUser(t, svc, "Ana", "ana@example.com", "52998224725", domain.RoleUser)

	require.NoError(t, svc.DeleteUser(context.Background(), ana.ID))
	assertStatus(t, svc.DeleteUser(context.Background(), ana.ID), http.StatusNotFound)
	assertStatus(t, svc.DeleteUser(context.Background(), "bogus"), http.StatusBadRequest)
}

func TestVerifyPassword(t *testing.T) {
	svc, _ := newUserService()
	ana := registerUser(t, svc, "Ana", "ana@example.com", "52998224725", domain.RoleUser)

	ok, err := svc.VerifyPassword(context.Background(), ana.ID, "s3cret-pass")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.VerifyPassword(context.Background(), ana.ID, "wrong")
	require.NoError(t, err, "mismatch is not an error")
	assert.False(t, ok)

	_, err = svc.VerifyPassword(context.Background(), "1b4e28ba-2fa1-11d2-883f-0016d3cca427", "x")
	assertStatus(t, err, http.StatusNotFound)
}

func TestStoreTimeoutIsUnavailable(t *testing.T) {
	svc, repo := newUserService()
	repo.Err = context.DeadlineExceeded

	_, err := svc.GetUserByID(context.Background(), "1b4e28ba-2fa1-11d2-883f-0016d3cca427")
	assertStatus(t, err, http.StatusServiceUnavailable)
}
