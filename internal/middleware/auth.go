package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"creditsync-backend/internal/apperrors"
	"creditsync-backend/internal/models"
)

const PrincipalKey = "principal"

// Auth validates the Bearer token and stores the authenticated
// principal in the gin context under PrincipalKey.
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			abortUnauthorized(c, "empty token")
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(jwtSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortUnauthorized(c, "invalid token claims")
			return
		}
		sub, _ := claims["sub"].(string)
		userID, err := uuid.Parse(sub)
		if err != nil {
			abortUnauthorized(c, "missing user id in token")
			return
		}
		username, _ := claims["username"].(string)
		role, _ := claims["role"].(string)
		if role != models.RoleAdmin && role != models.RoleStaff {
			abortUnauthorized(c, "unknown role in token")
			return
		}

		c.Set(PrincipalKey, &models.Principal{
			ID:       userID,
			Username: username,
			Role:     role,
		})
		c.Next()
	}
}

// RequireAdmin must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := PrincipalFrom(c)
		if p == nil || p.Role != models.RoleAdmin {
			err := apperrors.Forbidden("admin access required")
			c.AbortWithStatusJSON(err.Status(), models.Fail(err))
			return
		}
		c.Next()
	}
}

// PrincipalFrom returns the authenticated principal, or nil on
// unauthenticated routes.
func PrincipalFrom(c *gin.Context) *models.Principal {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*models.Principal)
	return p
}

func abortUnauthorized(c *gin.Context, msg string) {
	err := apperrors.Unauthorized(msg)
	c.AbortWithStatusJSON(err.Status(), models.Fail(err))
}
