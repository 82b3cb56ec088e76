package services

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"creditsync-backend/internal/apperrors"
	"creditsync-backend/internal/models"
)

const testJWTSecret = "test-secret-key-for-jwt-signing-must-be-long-enough"

func seedCredentials(t *testing.T, m *memStores, username, password, role string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	m.users[user.ID] = user
	return user
}

func TestLogin(t *testing.T) {
	m := newMemStores()
	svc := NewAuthService(m, testJWTSecret, 24)
	user := seedCredentials(t, m, "staff_1", "staff123456", models.RoleStaff)

	token, loggedIn, err := svc.Login(context.Background(), models.LoginRequest{
		Username: "staff_1",
		Password: "staff123456",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.True(t, m.users[user.ID].LastLoginAt.Valid)

	// The token carries sub, username and role.
	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, user.ID.String(), claims["sub"])
	assert.Equal(t, "staff_1", claims["username"])
	assert.Equal(t, models.RoleStaff, claims["role"])
}

func TestLoginFailuresAreUniform(t *testing.T) {
	m := newMemStores()
	svc := NewAuthService(m, testJWTSecret, 24)
	seedCredentials(t, m, "staff_1", "staff123456", models.RoleStaff)
	disabled := seedCredentials(t, m, "former_staff", "staff123456", models.RoleStaff)
	disabled.IsActive = false

	cases := []models.LoginRequest{
		{Username: "nobody", Password: "staff123456"},
		{Username: "staff_1", Password: "wrong"},
		{Username: "former_staff", Password: "staff123456"},
	}
	for _, req := range cases {
		_, _, err := svc.Login(context.Background(), req)
		require.Error(t, err, req.Username)
		assert.True(t, apperrors.Is(err, apperrors.CodeUnauthorized), req.Username)
		assert.Equal(t, "invalid username or password", apperrors.As(err).Message, req.Username)
	}
}

func TestRefresh(t *testing.T) {
	m := newMemStores()
	svc := NewAuthService(m, testJWTSecret, 24)
	user := seedCredentials(t, m, "staff_1", "staff123456", models.RoleStaff)
	p := models.Principal{ID: user.ID, Username: user.Username, Role: user.Role}

	token, refreshed, err := svc.Refresh(context.Background(), p)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, refreshed.ID)

	// A disabled account cannot refresh even with a valid token.
	m.users[user.ID].IsActive = false
	_, _, err = svc.Refresh(context.Background(), p)
	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthorized))
}
