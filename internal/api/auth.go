package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/civicworks/infra-report/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const actorContextKey = "actor"

// SessionClaims are the JWT claims the identity collaborator issues for a
// signed-in user.
type SessionClaims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthRequired validates the bearer token and places the acting user's
// identity into the request context.
func AuthRequired(secret string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"kind":    "Unauthorized",
				"message": "missing bearer token",
			})
			return
		}

		claims := &SessionClaims{}
		token, err := jwt.ParseWithClaims(strings.TrimPrefix(header, "Bearer "), claims,
			func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(secret), nil
			})
		if err != nil || !token.Valid {
			logger.Warn("Rejected bearer token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"kind":    "Unauthorized",
				"message": "invalid bearer token",
			})
			return
		}

		c.Set(actorContextKey, models.Actor{
			ID:   claims.Subject,
			Name: claims.Name,
			Role: models.Role(claims.Role),
		})
		c.Next()
	}
}

// StaffRequired rejects callers whose role is not part of the approval chain.
// It must run after AuthRequired.
func StaffRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := CurrentActor(c)
		if !actor.Role.IsStaff() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"kind":    "Forbidden",
				"message": "staff role required",
			})
			return
		}
		c.Next()
	}
}

// CurrentActor returns the authenticated actor from the request context
func CurrentActor(c *gin.Context) models.Actor {
	if v, ok := c.Get(actorContextKey); ok {
		if actor, ok := v.(models.Actor); ok {
			return actor
		}
	}
	return models.Actor{}
}
