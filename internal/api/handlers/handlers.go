// Package handlers implements the console's HTTP API.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	apperrors "github.com/cloudmesa/console-backend-go/pkg/errors"
	"github.com/cloudmesa/console-backend-go/pkg/utils"

	"github.com/cloudmesa/console-backend-go/internal/config"
	"github.com/cloudmesa/console-backend-go/internal/core/alerts"
	"github.com/cloudmesa/console-backend-go/internal/core/autoscaling"
	"github.com/cloudmesa/console-backend-go/internal/core/controls"
	"github.com/cloudmesa/console-backend-go/internal/core/dashboard"
	"github.com/cloudmesa/console-backend-go/internal/core/metrics"
	"github.com/cloudmesa/console-backend-go/internal/websocket"
)

// Handlers holds all HTTP handlers and their dependencies.
type Handlers struct {
	cfg         *config.Config
	log         *logrus.Logger
	dashboard   *dashboard.Service
	controllers map[metrics.Kind]*controls.Controller
	alerts      *alerts.Service
	autoscaling *autoscaling.Service
	hub         *websocket.Hub
}

// NewHandlers creates a handlers instance.
func NewHandlers(cfg *config.Config, log *logrus.Logger, dash *dashboard.Service, controllers map[metrics.Kind]*controls.Controller, alertSvc *alerts.Service, asgSvc *autoscaling.Service, hub *websocket.Hub) *Handlers {
	return &Handlers{
		cfg:         cfg,
		log:         log,
		dashboard:   dash,
		controllers: controllers,
		alerts:      alertSvc,
		autoscaling: asgSvc,
		hub:         hub,
	}
}

// respondError translates a core error into the response envelope. Field
// validation failures carry their field map.
func (h *Handlers) respondError(c *gin.Context, err error) {
	var valErr *apperrors.ValidationError
	if errors.As(err, &valErr) {
		utils.SendValidationError(c, valErr.Fields)
		return
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		msg := appErr.Message
		if appErr.Details != "" {
			msg = appErr.Details
		}
		utils.SendError(c, appErr.Code, msg)
		return
	}

	h.log.WithError(err).Error("Unhandled error in API handler")
	utils.SendError(c, http.StatusInternalServerError, "Internal server error")
}

func (h *Handlers) controller(c *gin.Context) (*controls.Controller, metrics.Kind, bool) {
	kind, err := metrics.ParseKind(c.Param("kind"))
	if err != nil {
		utils.SendError(c, http.StatusBadRequest, err.Error())
		return nil, "", false
	}
	ctrl, ok := h.controllers[kind]
	if !ok {
		utils.SendError(c, http.StatusBadRequest, "no controller for kind "+string(kind))
		return nil, "", false
	}
	return ctrl, kind, true
}
