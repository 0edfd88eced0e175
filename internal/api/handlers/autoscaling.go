package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cloudmesa/console-backend-go/pkg/utils"

	"github.com/cloudmesa/console-backend-go/internal/core/autoscaling"
)

// ListGroups returns all auto-scaling groups.
func (h *Handlers) ListGroups(c *gin.Context) {
	groups, err := h.autoscaling.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.SendSuccessWithMeta(c, groups, gin.H{"count": len(groups)})
}

// CreateGroup creates a new auto-scaling group.
func (h *Handlers) CreateGroup(c *gin.Context) {
	var in autoscaling.GroupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.SendError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	group, err := h.autoscaling.Create(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.SendCreated(c, group)
}

// GetGroup returns one group by id.
func (h *Handlers) GetGroup(c *gin.Context) {
	group, err := h.autoscaling.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.SendSuccess(c, group)
}

// UpdateGroup edits a group, re-validating capacity bounds.
func (h *Handlers) UpdateGroup(c *gin.Context) {
	var in autoscaling.GroupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.SendError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	group, err := h.autoscaling.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.SendSuccess(c, group)
}

// DeleteGroup removes a group.
func (h *Handlers) DeleteGroup(c *gin.Context) {
	if err := h.autoscaling.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	utils.SendSuccess(c, gin.H{"deleted": c.Param("id")})
}

// SetGroupCapacity adjusts desired capacity within the group's bounds.
func (h *Handlers) SetGroupCapacity(c *gin.Context) {
	var body struct {
		Desired *int `json:"desired"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Desired == nil {
		utils.SendError(c, http.StatusBadRequest, "body must carry a numeric 'desired'")
		return
	}

	group, err := h.autoscaling.SetDesiredCapacity(c.Request.Context(), c.Param("id"), *body.Desired)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.SendSuccess(c, group)
}

// EvaluateGroupPolicy returns a capacity recommendation for an observed
// metric average against a target.
func (h *Handlers) EvaluateGroupPolicy(c *gin.Context) {
	var body struct {
		MetricAverage *float64 `json:"metric_average"`
		Target        *float64 `json:"target"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.MetricAverage == nil || body.Target == nil {
		utils.SendError(c, http.StatusBadRequest, "body must carry numeric 'metric_average' and 'target'")
		return
	}

	rec, err := h.autoscaling.EvaluatePolicy(c.Request.Context(), c.Param("id"), *body.MetricAverage, *body.Target)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.SendSuccess(c, rec)
}
