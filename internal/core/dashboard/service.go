// Package dashboard coordinates the observability dashboards: it owns the
// latest fetched metrics per resource kind, reacts to control-config
// changes, and drives the auto-refresh loop.
package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cloudmesa/console-backend-go/internal/core/controls"
	"github.com/cloudmesa/console-backend-go/internal/core/metrics"
	"github.com/cloudmesa/console-backend-go/internal/core/refresh"
)

// Broadcaster pushes refreshed snapshots to connected dashboard clients.
type Broadcaster interface {
	BroadcastMetrics(kind metrics.Kind, data *metrics.MetricsData)
}

// Snapshot is the dashboard-visible fetch state for one resource kind.
type Snapshot struct {
	Resource  string               `json:"resource"`
	Loading   bool                 `json:"loading"`
	Data      *metrics.MetricsData `json:"data,omitempty"`
	FetchedAt *time.Time           `json:"fetched_at,omitempty"`
	Error     string               `json:"error,omitempty"`
}

type kindState struct {
	snapshot Snapshot
	token    uint64
	task     *refresh.Task
}

// Service drives metric fetches for both resource kinds.
type Service struct {
	provider  metrics.Provider
	scheduler *refresh.Scheduler
	broadcast Broadcaster
	logger    *logrus.Logger

	mu    sync.Mutex
	state map[metrics.Kind]*kindState
}

// NewService creates a dashboard service. broadcast may be nil.
func NewService(provider metrics.Provider, scheduler *refresh.Scheduler, broadcast Broadcaster, logger *logrus.Logger) *Service {
	return &Service{
		provider:  provider,
		scheduler: scheduler,
		broadcast: broadcast,
		logger:    logger,
		state: map[metrics.Kind]*kindState{
			metrics.KindVM: {},
			metrics.KindLB: {},
		},
	}
}

// Bind registers the service as the apply hook of a controller. Each applied
// configuration cancels the previous refresh loop for the kind and starts a
// new one, or a single fetch for custom (historical) ranges.
func (s *Service) Bind(c *controls.Controller) {
	kind := c.Kind()
	c.OnApply(func(cfg controls.Config) {
		s.Apply(kind, cfg)
	})
}

// Apply reconfigures fetching for a kind from a newly applied config.
func (s *Service) Apply(kind metrics.Kind, cfg controls.Config) {
	s.mu.Lock()
	st := s.state[kind]
	if st.task != nil {
		st.task.Stop()
		st.task = nil
	}
	if cfg.Resource == "" {
		s.mu.Unlock()
		return
	}

	// Custom ranges are historical snapshots: fetch once, never auto-refresh.
	if cfg.TimeRange.Custom {
		s.mu.Unlock()
		go s.fetch(context.Background(), kind, cfg)
		return
	}

	interval := time.Duration(cfg.Granularity) * time.Minute
	st.task = s.scheduler.Start(interval, func(ctx context.Context) {
		s.fetch(ctx, kind, cfg)
	})
	s.mu.Unlock()
}

// Stop cancels all refresh loops. Called on shutdown.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.state {
		if st.task != nil {
			st.task.Stop()
			st.task = nil
		}
	}
}

// Snapshot returns the latest fetch state for a kind.
func (s *Service) Snapshot(kind metrics.Kind) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state[kind].snapshot
}

// FetchOnce performs a one-off fetch outside the refresh loop, for direct
// API queries. The result is not stored.
func (s *Service) FetchOnce(ctx context.Context, kind metrics.Kind, cfg controls.Config) (*metrics.MetricsData, error) {
	return s.callProvider(ctx, kind, cfg)
}

// fetch loads metrics for the config and publishes the result, unless a
// newer fetch was issued for the kind in the meantime. The token fences out
// stale responses overwriting fresher data.
func (s *Service) fetch(ctx context.Context, kind metrics.Kind, cfg controls.Config) {
	s.mu.Lock()
	st := s.state[kind]
	st.token++
	token := st.token
	st.snapshot.Resource = cfg.Resource
	st.snapshot.Loading = true
	s.mu.Unlock()

	data, err := s.callProvider(ctx, kind, cfg)

	s.mu.Lock()
	if st.token != token {
		s.mu.Unlock()
		s.logger.WithField("kind", kind).Debug("Discarding stale metrics fetch")
		return
	}
	st.snapshot.Loading = false
	if err != nil {
		st.snapshot.Error = err.Error()
		s.mu.Unlock()
		s.logger.WithError(err).WithField("kind", kind).Error("Metrics fetch failed")
		return
	}
	now := time.Now()
	st.snapshot.Data = data
	st.snapshot.FetchedAt = &now
	st.snapshot.Error = ""
	s.mu.Unlock()

	if s.broadcast != nil {
		s.broadcast.BroadcastMetrics(kind, data)
	}
}

func (s *Service) callProvider(ctx context.Context, kind metrics.Kind, cfg controls.Config) (*metrics.MetricsData, error) {
	if cfg.TimeRange.Custom && cfg.CustomRange.Complete() {
		return s.provider.FetchMetricsRange(ctx, kind, cfg.Resource,
			*cfg.CustomRange.From, *cfg.CustomRange.To, cfg.Granularity)
	}
	return s.provider.FetchMetrics(ctx, kind, cfg.Resource, cfg.EffectiveHours(), cfg.Granularity)
}
