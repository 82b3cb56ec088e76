package handlers

import (
	"github.com/gin-gonic/gin"

	"creditsync-backend/internal/middleware"
	"creditsync-backend/internal/models"
	"creditsync-backend/internal/services"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login godoc
// @Summary     Log in with username and password
// @Description Validates credentials and returns a signed JWT together with the user profile
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body models.LoginRequest true "Credentials"
// @Success     200 {object} models.Response
// @Failure     400 {object} models.Response
// @Failure     401 {object} models.Response
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	token, user, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "login successful", models.LoginResponse{
		Token: token,
		User:  models.NewUserView(user),
	})
}

// Logout godoc
// @Summary     Log out
// @Description Stateless tokens cannot be revoked server side; clients discard the token
// @Tags        auth
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.Response
// @Router      /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	respondOK(c, "logged out", nil)
}

// Profile godoc
// @Summary     Get the authenticated user's profile
// @Tags        auth
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.Response
// @Failure     401 {object} models.Response
// @Router      /auth/profile [get]
func (h *AuthHandler) Profile(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	user, err := h.auth.Profile(c.Request.Context(), *p)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", models.NewUserView(user))
}

// Refresh godoc
// @Summary     Exchange a valid token for a fresh one
// @Tags        auth
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.Response
// @Failure     401 {object} models.Response
// @Router      /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	token, user, err := h.auth.Refresh(c.Request.Context(), *p)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "token refreshed", models.LoginResponse{
		Token: token,
		User:  models.NewUserView(user),
	})
}
