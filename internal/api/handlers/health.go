package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cloudmesa/console-backend-go/pkg/utils"
	"github.com/cloudmesa/console-backend-go/pkg/version"
)

// Health reports service liveness, build info and hub statistics.
func (h *Handlers) Health(c *gin.Context) {
	utils.SendSuccess(c, gin.H{
		"status":    "healthy",
		"time":      time.Now().UTC(),
		"build":     version.Get(),
		"websocket": h.hub.Stats(),
	})
}
