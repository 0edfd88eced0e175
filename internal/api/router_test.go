package api

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/cloudmesa/console-backend-go/pkg/errors"

	"github.com/cloudmesa/console-backend-go/internal/config"
	"github.com/cloudmesa/console-backend-go/internal/core/alerts"
	"github.com/cloudmesa/console-backend-go/internal/core/autoscaling"
	"github.com/cloudmesa/console-backend-go/internal/core/controls"
	"github.com/cloudmesa/console-backend-go/internal/core/dashboard"
	"github.com/cloudmesa/console-backend-go/internal/core/metrics"
	"github.com/cloudmesa/console-backend-go/internal/core/refresh"
	"github.com/cloudmesa/console-backend-go/internal/database/models"
	"github.com/cloudmesa/console-backend-go/internal/websocket"
)

// memAlertRepo backs the alert service without sqlite.
type memAlertRepo struct {
	mu     sync.Mutex
	alerts map[string]*models.ConfiguredAlert
}

func newMemAlertRepo() *memAlertRepo {
	return &memAlertRepo{alerts: make(map[string]*models.ConfiguredAlert)}
}

func (r *memAlertRepo) Create(_ context.Context, a *models.ConfiguredAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.alerts[a.ID] = &cp
	return nil
}

func (r *memAlertRepo) GetByID(_ context.Context, id string) (*models.ConfiguredAlert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.alerts[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memAlertRepo) GetAll(_ context.Context) ([]*models.ConfiguredAlert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.ConfiguredAlert, 0, len(r.alerts))
	for _, a := range r.alerts {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memAlertRepo) GetByStatus(_ context.Context, status models.AlertStatus) ([]*models.ConfiguredAlert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ConfiguredAlert
	for _, a := range r.alerts {
		if a.Status == status {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memAlertRepo) Update(_ context.Context, a *models.ConfiguredAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.alerts[a.ID]; !ok {
		return apperrors.ErrNotFound
	}
	cp := *a
	r.alerts[a.ID] = &cp
	return nil
}

func (r *memAlertRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.alerts[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.alerts, id)
	return nil
}

type memTriggeredRepo struct {
	mu      sync.Mutex
	records []*models.TriggeredAlert
}

func newMemTriggeredRepo() *memTriggeredRepo { return &memTriggeredRepo{} }

func (r *memTriggeredRepo) Insert(_ context.Context, rec *models.TriggeredAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rec
	r.records = append(r.records, &cp)
	return nil
}

func (r *memTriggeredRepo) GetByAlertID(_ context.Context, alertID string, since time.Time) ([]*models.TriggeredAlert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.TriggeredAlert
	for _, rec := range r.records {
		if rec.AlertID == alertID && rec.TriggeredAt.After(since) {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memTriggeredRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records), nil
}

func (r *memTriggeredRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*models.TriggeredAlert
	var removed int64
	for _, rec := range r.records {
		if rec.TriggeredAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	r.records = kept
	return removed, nil
}

type memGroupRepo struct {
	mu     sync.Mutex
	groups map[string]*models.AutoScalingGroup
}

func newMemGroupRepo() *memGroupRepo {
	return &memGroupRepo{groups: make(map[string]*models.AutoScalingGroup)}
}

func (r *memGroupRepo) Create(_ context.Context, g *models.AutoScalingGroup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *g
	r.groups[g.ID] = &cp
	return nil
}

func (r *memGroupRepo) GetByID(_ context.Context, id string) (*models.AutoScalingGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (r *memGroupRepo) GetAll(_ context.Context) ([]*models.AutoScalingGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.AutoScalingGroup, 0, len(r.groups))
	for _, g := range r.groups {
		cp := *g
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memGroupRepo) Update(_ context.Context, g *models.AutoScalingGroup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[g.ID]; !ok {
		return apperrors.ErrNotFound
	}
	cp := *g
	r.groups[g.ID] = &cp
	return nil
}

func (r *memGroupRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.groups, id)
	return nil
}

type testEnv struct {
	router http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	cfg := &config.Config{}
	cfg.Server.Mode = "production"
	cfg.Alerting.HistoryDefaultDays = 15

	rng := rand.New(rand.NewSource(11))
	gen := metrics.NewGenerator(rng)
	provider := metrics.NewSimulatedProvider(gen, 0, 0, rng, logger)

	scheduler := refresh.NewScheduler(logger)
	dash := dashboard.NewService(provider, scheduler, nil, logger)
	t.Cleanup(dash.Stop)

	store := controls.NewMemoryStore()
	controllers := map[metrics.Kind]*controls.Controller{
		metrics.KindVM: controls.NewController(metrics.KindVM, store, controls.Overrides{}, logger),
		metrics.KindLB: controls.NewController(metrics.KindLB, store, controls.Overrides{}, logger),
	}
	for _, ctrl := range controllers {
		dash.Bind(ctrl)
	}

	alertSvc := alerts.NewService(newMemAlertRepo(), newMemTriggeredRepo(), store, logger)
	asgSvc := autoscaling.NewService(newMemGroupRepo(), logger)

	hub := websocket.NewHub(logger)
	go hub.Run()

	return &testEnv{
		router: NewRouter(cfg, logger, dash, controllers, alertSvc, asgSvc, hub),
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var envelope map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	}
	return rec, envelope
}

func TestRouter_Health(t *testing.T) {
	env := newTestEnv(t)

	rec, envelope := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, envelope["success"])
}

func TestRouter_MetricDefinitions(t *testing.T) {
	env := newTestEnv(t)

	rec, envelope := env.do(t, http.MethodGet, "/api/v1/metrics/definitions/vm", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := envelope["data"].(map[string]interface{})
	assert.Len(t, data["definitions"], 5)
	assert.Len(t, data["resources"], 4)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/metrics/definitions/dns", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_GetMetricsDirectFetch(t *testing.T) {
	env := newTestEnv(t)

	rec, envelope := env.do(t, http.MethodGet,
		"/api/v1/metrics/lb?resource=lb-frontend-01&hours=6&granularity=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := envelope["data"].(map[string]interface{})
	series := data["metrics"].([]interface{})
	require.Len(t, series, 5)
	first := series[0].(map[string]interface{})
	assert.Len(t, first["data"], 73)
}

func TestRouter_ControlsConfirmFlow(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodPost, "/api/v1/controls/vm/resource",
		map[string]string{"resource": "web-server-01"})
	require.Equal(t, http.StatusOK, rec.Code)

	// Unknown resources are rejected.
	rec, _ = env.do(t, http.MethodPost, "/api/v1/controls/vm/resource",
		map[string]string{"resource": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = env.do(t, http.MethodPut, "/api/v1/controls/vm/timerange",
		map[string]interface{}{"hours": 6})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, envelope := env.do(t, http.MethodGet, "/api/v1/controls/vm", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, true, data["has_pending_changes"])
	assert.Equal(t, true, data["can_confirm"])

	rec, _ = env.do(t, http.MethodPost, "/api/v1/controls/vm/confirm", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, envelope = env.do(t, http.MethodGet, "/api/v1/controls/vm", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data = envelope["data"].(map[string]interface{})
	assert.Equal(t, false, data["has_pending_changes"])

	// Confirming again with nothing staged conflicts.
	rec, _ = env.do(t, http.MethodPost, "/api/v1/controls/vm/confirm", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRouter_AlertLifecycle(t *testing.T) {
	env := newTestEnv(t)

	payload := map[string]interface{}{
		"name":      "High CPU",
		"service":   "vm",
		"metric":    "CPU Usage",
		"condition": "greater-than",
		"threshold": 80,
	}
	rec, envelope := env.do(t, http.MethodPost, "/api/v1/alerts", payload)
	require.Equal(t, http.StatusCreated, rec.Code)

	data := envelope["data"].(map[string]interface{})
	id := data["id"].(string)
	assert.Equal(t, "active", data["status"])
	assert.Equal(t, ">", data["condition_symbol"])
	assert.Equal(t, "%", data["unit"])

	rec, _ = env.do(t, http.MethodPost, "/api/v1/alerts/"+id+"/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, envelope = env.do(t, http.MethodGet, "/api/v1/alerts/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data = envelope["data"].(map[string]interface{})
	assert.Equal(t, "paused", data["status"])

	rec, envelope = env.do(t, http.MethodGet, "/api/v1/alerts/"+id+"/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, envelope["data"])

	rec, _ = env.do(t, http.MethodDelete, "/api/v1/alerts/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/alerts/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_AlertValidationErrorShape(t *testing.T) {
	env := newTestEnv(t)

	payload := map[string]interface{}{
		"name":                 "Bad",
		"service":              "vm",
		"metric":               "CPU Usage",
		"condition":            "greater-than",
		"threshold":            80,
		"notification_enabled": true,
	}
	rec, envelope := env.do(t, http.MethodPost, "/api/v1/alerts", payload)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, false, envelope["success"])
	details := envelope["details"].(map[string]interface{})
	fields := details["fields"].(map[string]interface{})
	assert.Contains(t, fields, "notification_emails")
}

func TestRouter_NotificationSwitches(t *testing.T) {
	env := newTestEnv(t)

	rec, envelope := env.do(t, http.MethodGet, "/api/v1/alerts/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, false, data["email_notifications_enabled"])

	rec, _ = env.do(t, http.MethodPost, "/api/v1/alerts/notifications/enable",
		map[string]bool{"acknowledged": false})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, envelope = env.do(t, http.MethodPost, "/api/v1/alerts/notifications/enable",
		map[string]bool{"acknowledged": true})
	require.Equal(t, http.StatusOK, rec.Code)
	data = envelope["data"].(map[string]interface{})
	assert.Equal(t, true, data["notifications_enabled"])
	assert.Equal(t, true, data["email_notifications_enabled"])
}

func TestRouter_AutoscalingCapacity(t *testing.T) {
	env := newTestEnv(t)

	payload := map[string]interface{}{
		"name":             "web-tier",
		"type":             "vm",
		"flavour":          "m1.large",
		"min_capacity":     2,
		"desired_capacity": 4,
		"max_capacity":     10,
		"vpc":              "vpc-1",
	}
	rec, envelope := env.do(t, http.MethodPost, "/api/v1/autoscaling/groups", payload)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := envelope["data"].(map[string]interface{})["id"].(string)

	rec, _ = env.do(t, http.MethodPut, "/api/v1/autoscaling/groups/"+id+"/capacity",
		map[string]int{"desired": 8})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = env.do(t, http.MethodPut, "/api/v1/autoscaling/groups/"+id+"/capacity",
		map[string]int{"desired": 11})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// desired 8 at 1.5x load recommends 12, clamped to max 10.
	rec, envelope = env.do(t, http.MethodPost, "/api/v1/autoscaling/groups/"+id+"/policy/evaluate",
		map[string]float64{"metric_average": 105, "target": 70})
	require.Equal(t, http.StatusOK, rec.Code)
	recData := envelope["data"].(map[string]interface{})
	assert.Equal(t, float64(10), recData["recommended_capacity"])
	assert.Equal(t, float64(8), recData["current_capacity"])
}
