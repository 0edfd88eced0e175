package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/cloudmesa/console-backend-go/pkg/utils"
)

// ErrorHandlingMiddleware recovers panics and returns a standard error
// response instead of crashing the request.
func ErrorHandlingMiddleware(logger *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"ip":      c.ClientIP(),
			"recover": recovered,
		}).Error("Panic recovered in API handler")

		utils.SendError(c, http.StatusInternalServerError, "Internal server error")
		c.Abort()
	})
}
