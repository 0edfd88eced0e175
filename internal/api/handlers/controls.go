package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cloudmesa/console-backend-go/pkg/utils"

	"github.com/cloudmesa/console-backend-go/internal/core/metrics"
)

type controlsState struct {
	Pending           interface{} `json:"pending"`
	Active            interface{} `json:"active"`
	HasPendingChanges bool        `json:"has_pending_changes"`
	CanConfirm        bool        `json:"can_confirm"`
}

// GetControls returns pending and active configuration for a kind.
func (h *Handlers) GetControls(c *gin.Context) {
	ctrl, _, ok := h.controller(c)
	if !ok {
		return
	}
	utils.SendSuccess(c, controlsState{
		Pending:           ctrl.Pending(),
		Active:            ctrl.Active(),
		HasPendingChanges: ctrl.HasPendingChanges(),
		CanConfirm:        ctrl.CanConfirm(),
	})
}

// SelectResource applies a resource selection immediately.
func (h *Handlers) SelectResource(c *gin.Context) {
	ctrl, kind, ok := h.controller(c)
	if !ok {
		return
	}

	var body struct {
		Resource string `json:"resource"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.SendError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if !metrics.HasResource(kind, body.Resource) {
		utils.SendError(c, http.StatusBadRequest, "unknown resource: "+body.Resource)
		return
	}

	if err := ctrl.SelectResource(body.Resource); err != nil {
		utils.SendError(c, http.StatusBadRequest, err.Error())
		return
	}
	utils.SendSuccess(c, ctrl.Active())
}

// SetTimeRange stages a preset or custom time range.
func (h *Handlers) SetTimeRange(c *gin.Context) {
	ctrl, _, ok := h.controller(c)
	if !ok {
		return
	}

	var body struct {
		Hours  int        `json:"hours"`
		Custom bool       `json:"custom"`
		From   *time.Time `json:"from"`
		To     *time.Time `json:"to"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.SendError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	var err error
	if body.Custom {
		err = ctrl.SetPendingCustomRange(body.From, body.To)
	} else {
		err = ctrl.SetPendingTimeRange(body.Hours)
	}
	if err != nil {
		utils.SendError(c, http.StatusBadRequest, err.Error())
		return
	}
	utils.SendSuccess(c, ctrl.Pending())
}

// SetGranularity stages a granularity.
func (h *Handlers) SetGranularity(c *gin.Context) {
	ctrl, _, ok := h.controller(c)
	if !ok {
		return
	}

	var body struct {
		Minutes int `json:"minutes"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.SendError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := ctrl.SetPendingGranularity(body.Minutes); err != nil {
		utils.SendError(c, http.StatusBadRequest, err.Error())
		return
	}
	utils.SendSuccess(c, ctrl.Pending())
}

// ConfirmControls applies the staged configuration.
func (h *Handlers) ConfirmControls(c *gin.Context) {
	ctrl, _, ok := h.controller(c)
	if !ok {
		return
	}

	if err := ctrl.Confirm(); err != nil {
		utils.SendError(c, http.StatusConflict, err.Error())
		return
	}
	utils.SendSuccess(c, ctrl.Active())
}
