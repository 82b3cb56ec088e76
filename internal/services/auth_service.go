package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"creditsync-backend/internal/apperrors"
	"creditsync-backend/internal/logger"
	"creditsync-backend/internal/models"
)

type AuthService struct {
	users       UserStore
	jwtSecret   []byte
	tokenExpiry time.Duration
}

func NewAuthService(users UserStore, jwtSecret string, expiryHours int) *AuthService {
	return &AuthService{
		users:       users,
		jwtSecret:   []byte(jwtSecret),
		tokenExpiry: time.Duration(expiryHours) * time.Hour,
	}
}

// Login verifies the credentials and issues an HS256 bearer token. The
// error is the same for unknown user, disabled account and wrong
// password so the response does not leak which usernames exist.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (string, *models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, apperrors.Unauthorized("invalid username or password")
		}
		return "", nil, apperrors.Upstream("failed to load user", err)
	}
	if !user.IsActive {
		return "", nil, apperrors.Unauthorized("invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, apperrors.Unauthorized("invalid username or password")
	}

	if err := s.users.TouchLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		logger.L.Warn("failed to record last login",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, apperrors.Upstream("failed to issue token", err)
	}

	logger.L.Info("user logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.String("role", user.Role),
	)
	return token, user, nil
}

// IssueToken signs a fresh bearer token for the user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":      user.ID.String(),
		"username": user.Username,
		"role":     user.Role,
		"iat":      now.Unix(),
		"exp":      now.Add(s.tokenExpiry).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// Profile returns the caller's own user record.
func (s *AuthService) Profile(ctx context.Context, principal models.Principal) (*models.User, error) {
	user, err := s.users.GetUser(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Upstream("failed to load user", err)
	}
	return user, nil
}

// Refresh re-issues a token for a still-valid principal.
func (s *AuthService) Refresh(ctx context.Context, principal models.Principal) (string, *models.User, error) {
	user, err := s.Profile(ctx, principal)
	if err != nil {
		return "", nil, err
	}
	if !user.IsActive {
		return "", nil, apperrors.Unauthorized("account is disabled")
	}
	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, apperrors.Upstream("failed to issue token", err)
	}
	return token, user, nil
}
