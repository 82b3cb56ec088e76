package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"creditsync-backend/internal/apperrors"
	"creditsync-backend/internal/logger"
	"creditsync-backend/internal/models"
)

func respondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, models.OK(message, data))
}

func respondCreated(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, models.OK(message, data))
}

// respondError renders any service error through the taxonomy. Upstream
// failures are logged with their cause; the caller only sees the
// sanitized message.
func respondError(c *gin.Context, err error) {
	appErr := apperrors.As(err)
	if appErr.Status() >= http.StatusInternalServerError {
		logger.L.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.JSON(appErr.Status(), models.Fail(appErr))
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.Fail(
		apperrors.ValidationFailed("invalid request", err.Error()),
	))
}

// uuidParam parses a path parameter as UUID, rendering a validation
// error and returning false when it is malformed.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.Fail(
			apperrors.ValidationFailed("invalid "+name),
		))
		return uuid.Nil, false
	}
	return id, true
}
