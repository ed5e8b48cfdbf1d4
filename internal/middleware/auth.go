package middleware

import (
	"strings"

	"property-catalog/internal/auth"
	apperrors "property-catalog/internal/errors"
	"property-catalog/pkg/logger"

	"github.com/gin-gonic/gin"
)

// RequireScope rejects requests without a valid bearer token carrying scope.
// An empty secret disables the check.
func RequireScope(secret, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.Error(apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		claims, err := auth.ValidateJWT(strings.TrimSpace(token), secret)
		if err != nil {
			logger.GlobalLogger.Warnf("rejected bearer token from %s: %v", c.ClientIP(), err)
			c.Error(apperrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !claims.HasScope(scope) {
			c.Error(apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set("subject", claims.Subject)
		c.Next()
	}
}
