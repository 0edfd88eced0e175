package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cloudmesa/console-backend-go/pkg/utils"

	"github.com/cloudmesa/console-backend-go/internal/core/controls"
	"github.com/cloudmesa/console-backend-go/internal/core/metrics"
)

// GetMetricDefinitions returns the metric catalog of a resource kind.
func (h *Handlers) GetMetricDefinitions(c *gin.Context) {
	kind, err := metrics.ParseKind(c.Param("kind"))
	if err != nil {
		utils.SendError(c, http.StatusBadRequest, err.Error())
		return
	}
	utils.SendSuccess(c, gin.H{
		"kind":        kind,
		"definitions": metrics.Definitions(kind),
		"resources":   metrics.Resources(kind),
	})
}

// GetMetrics performs a direct fetch for the query's resource and window,
// outside the dashboard refresh loop.
func (h *Handlers) GetMetrics(c *gin.Context) {
	kind, err := metrics.ParseKind(c.Param("kind"))
	if err != nil {
		utils.SendError(c, http.StatusBadRequest, err.Error())
		return
	}

	resource := c.Query("resource")
	if resource == "" {
		utils.SendError(c, http.StatusBadRequest, "query parameter 'resource' is required")
		return
	}

	granularity, err := strconv.Atoi(c.DefaultQuery("granularity", "1"))
	if err != nil {
		utils.SendError(c, http.StatusBadRequest, "invalid granularity")
		return
	}

	cfg := controls.Config{Resource: resource, Granularity: granularity}

	if from, to := c.Query("from"), c.Query("to"); from != "" || to != "" {
		fromTime, err1 := time.Parse(time.RFC3339, from)
		toTime, err2 := time.Parse(time.RFC3339, to)
		if err1 != nil || err2 != nil {
			utils.SendError(c, http.StatusBadRequest, "'from' and 'to' must both be RFC3339 timestamps")
			return
		}
		cfg.TimeRange = controls.TimeRange{Custom: true}
		cfg.CustomRange = controls.DateRange{From: &fromTime, To: &toTime}
	} else {
		hours, err := strconv.Atoi(c.DefaultQuery("hours", "6"))
		if err != nil {
			utils.SendError(c, http.StatusBadRequest, "invalid hours")
			return
		}
		cfg.TimeRange = controls.TimeRange{Hours: hours}
	}

	data, err := h.dashboard.FetchOnce(c.Request.Context(), kind, cfg)
	if err != nil {
		utils.SendError(c, http.StatusBadGateway, err.Error())
		return
	}
	utils.SendSuccess(c, data)
}

// GetDashboardSnapshot returns the latest auto-refreshed metrics state.
func (h *Handlers) GetDashboardSnapshot(c *gin.Context) {
	kind, err := metrics.ParseKind(c.Param("kind"))
	if err != nil {
		utils.SendError(c, http.StatusBadRequest, err.Error())
		return
	}
	utils.SendSuccess(c, h.dashboard.Snapshot(kind))
}
