package middleware

import (
	"net/http"

	"property-catalog/internal/errors"
	"property-catalog/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error pushed with c.Error as
// {"error":{"message","code"}}. 204 responses carry no body.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		appErr := errors.MapError(c.Errors.Last().Err)

		switch {
		case appErr.HTTPStatus >= http.StatusInternalServerError:
			logger.GlobalLogger.Errorf("request failed: method=%s path=%s client_ip=%s error=%s",
				c.Request.Method, c.Request.URL.Path, c.ClientIP(), appErr.TechnicalMessage)
		case appErr.HTTPStatus != http.StatusNoContent:
			logger.GlobalLogger.Debugf("request rejected: method=%s path=%s status=%d error=%s",
				c.Request.Method, c.Request.URL.Path, appErr.HTTPStatus, appErr.TechnicalMessage)
		}

		if c.Writer.Written() {
			return
		}
		if appErr.HTTPStatus == http.StatusNoContent {
			c.Status(http.StatusNoContent)
			c.Writer.WriteHeaderNow()
			return
		}
		c.JSON(appErr.HTTPStatus, gin.H{
			"error": gin.H{
				"message": appErr.UserMessage,
				"code":    appErr.Code,
			},
		})
	}
}
