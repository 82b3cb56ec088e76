package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"creditsync-backend/internal/handlers"
	"creditsync-backend/internal/models"
	"creditsync-backend/internal/services"
)

// fakeUserStore serves a single seeded account.
type fakeUserStore struct {
	user models.User
}

func (f *fakeUserStore) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	if id != f.user.ID {
		return nil, services.ErrNotFound
	}
	cp := f.user
	return &cp, nil
}

func (f *fakeUserStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	if username != f.user.Username {
		return nil, services.ErrNotFound
	}
	cp := f.user
	return &cp, nil
}

func (f *fakeUserStore) TouchLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	return nil
}

func loginRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("staff123456"), bcrypt.MinCost)
	require.NoError(t, err)
	store := &fakeUserStore{user: models.User{
		ID:           uuid.New(),
		Username:     "staff_1",
		PasswordHash: string(hash),
		Role:         models.RoleStaff,
		IsActive:     true,
	}}

	authService := services.NewAuthService(store, "test-secret", 24)
	authHandler := handlers.NewAuthHandler(authService)

	router := gin.New()
	router.POST("/api/v1/auth/login", authHandler.Login)
	return router
}

func TestLoginSuccess(t *testing.T) {
	router := loginRouter(t)

	body, _ := json.Marshal(models.LoginRequest{Username: "staff_1", Password: "staff123456"})
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			Token string          `json:"token"`
			User  models.UserView `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.NotEmpty(t, envelope.Data.Token)
	assert.Equal(t, "staff_1", envelope.Data.User.Username)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestLoginBadCredentials(t *testing.T) {
	router := loginRouter(t)

	body, _ := json.Marshal(models.LoginRequest{Username: "staff_1", Password: "wrong"})
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestLoginMissingFields(t *testing.T) {
	router := loginRouter(t)

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_FAILED")
}
