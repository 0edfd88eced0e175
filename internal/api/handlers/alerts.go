package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cloudmesa/console-backend-go/pkg/utils"

	"github.com/cloudmesa/console-backend-go/internal/core/alerts"
	"github.com/cloudmesa/console-backend-go/internal/core/metrics"
	"github.com/cloudmesa/console-backend-go/internal/database/models"
)

// alertView decorates a stored alert with its display symbol and unit.
type alertView struct {
	*models.ConfiguredAlert
	ConditionSymbol string `json:"condition_symbol"`
	Unit            string `json:"unit"`
}

func toAlertView(a *models.ConfiguredAlert) alertView {
	return alertView{
		ConfiguredAlert: a,
		ConditionSymbol: alerts.FormatCondition(a.Condition),
		Unit:            metrics.MetricUnit(metrics.Kind(a.Service), a.Metric),
	}
}

// ListAlerts returns all configured alerts.
func (h *Handlers) ListAlerts(c *gin.Context) {
	list, err := h.alerts.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	views := make([]alertView, 0, len(list))
	for _, a := range list {
		views = append(views, toAlertView(a))
	}
	utils.SendSuccessWithMeta(c, views, gin.H{"count": len(views)})
}

// CreateAlert creates a new alert from the creation form payload.
func (h *Handlers) CreateAlert(c *gin.Context) {
	var in alerts.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.SendError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	alert, err := h.alerts.Create(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.SendCreated(c, toAlertView(alert))
}

// GetAlert returns one alert by id.
func (h *Handlers) GetAlert(c *gin.Context) {
	alert, err := h.alerts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.SendSuccess(c, toAlertView(alert))
}

// UpdateAlert edits an alert. Service and metric are immutable.
func (h *Handlers) UpdateAlert(c *gin.Context) {
	var in alerts.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.SendError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	alert, err := h.alerts.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.SendSuccess(c, toAlertView(alert))
}

// DeleteAlert removes an alert permanently.
func (h *Handlers) DeleteAlert(c *gin.Context) {
	if err := h.alerts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	utils.SendSuccess(c, gin.H{"deleted": c.Param("id")})
}

// ToggleAlert flips an alert between active and paused.
func (h *Handlers) ToggleAlert(c *gin.Context) {
	alert, err := h.alerts.Toggle(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.SendSuccess(c, toAlertView(alert))
}

// GetAlertHistory returns the triggered records within a trailing day window.
func (h *Handlers) GetAlertHistory(c *gin.Context) {
	days := h.cfg.Alerting.HistoryDefaultDays
	if raw := c.Query("days"); raw != "" {
		var err error
		if days, err = strconv.Atoi(raw); err != nil {
			utils.SendError(c, http.StatusBadRequest, "invalid days")
			return
		}
	}

	records, err := h.alerts.History(c.Request.Context(), c.Param("id"), days)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.SendSuccessWithMeta(c, records, gin.H{"days": days, "count": len(records)})
}

// GetNotificationSettings reports the organization-wide switches.
func (h *Handlers) GetNotificationSettings(c *gin.Context) {
	settings, err := h.alerts.GetNotificationSettings()
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.SendSuccess(c, settings)
}

// EnableEmailNotifications turns on the one-way email channel. Requires an
// explicit acknowledgement of topic provisioning.
func (h *Handlers) EnableEmailNotifications(c *gin.Context) {
	var body struct {
		Acknowledged bool `json:"acknowledged"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.SendError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.alerts.EnableEmailNotifications(body.Acknowledged); err != nil {
		h.respondError(c, err)
		return
	}

	settings, err := h.alerts.GetNotificationSettings()
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.SendSuccess(c, settings)
}
