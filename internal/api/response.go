package api

import (
	"errors"
	"net/http"

	"github.com/civicworks/infra-report/internal/workflow"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps workflow errors onto HTTP status codes and a structured
// {kind, message} body. Unknown errors are logged and hidden behind a 500.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, workflow.ErrReportNotFound):
		c.JSON(http.StatusNotFound, gin.H{"kind": "NotFound", "message": err.Error()})
	case errors.Is(err, workflow.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"kind": "Forbidden", "message": err.Error()})
	case errors.Is(err, workflow.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"kind": "ValidationError", "message": err.Error()})
	case errors.Is(err, workflow.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"kind": "InvalidTransition", "message": err.Error()})
	case errors.Is(err, workflow.ErrTransitionConflict):
		c.JSON(http.StatusConflict, gin.H{"kind": "Conflict", "message": err.Error()})
	default:
		logger.Error("Unhandled request error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"kind": "Internal", "message": "internal server error"})
	}
}
