package alerts

import (
	"context"
	"database/sql"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cloudmesa/console-backend-go/internal/core/metrics"
	"github.com/cloudmesa/console-backend-go/internal/database/models"
	"github.com/cloudmesa/console-backend-go/internal/database/repositories"
)

// Sweeper periodically evaluates every active alert against a fresh metric
// window and records breaches as triggered alerts. Scheduled via cron from
// main.
type Sweeper struct {
	alerts        repositories.AlertRepository
	triggered     repositories.TriggeredAlertRepository
	gen           *metrics.Generator
	windowMinutes int
	logger        *logrus.Logger
	onTriggered   func(record *models.TriggeredAlert)

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSweeper creates a sweeper. onTriggered, when non-nil, is invoked for
// every stored breach record (the dashboard hooks WebSocket pushes here).
func NewSweeper(alerts repositories.AlertRepository, triggered repositories.TriggeredAlertRepository, gen *metrics.Generator, windowMinutes int, rng *rand.Rand, logger *logrus.Logger, onTriggered func(*models.TriggeredAlert)) *Sweeper {
	return &Sweeper{
		alerts:        alerts,
		triggered:     triggered,
		gen:           gen,
		windowMinutes: windowMinutes,
		logger:        logger,
		onTriggered:   onTriggered,
		rng:           rng,
	}
}

// Run evaluates all active alerts once.
func (s *Sweeper) Run(ctx context.Context) {
	active, err := s.alerts.GetByStatus(ctx, models.AlertStatusActive)
	if err != nil {
		s.logger.WithError(err).Error("Alert sweep: failed to load active alerts")
		return
	}

	now := time.Now()
	start := now.Add(-time.Duration(s.windowMinutes) * time.Minute)
	fired := 0

	for _, alert := range active {
		kind, err := metrics.ParseKind(alert.Service)
		if err != nil {
			s.logger.WithField("alert_id", alert.ID).WithError(err).Warn("Alert sweep: skipping alert with unknown service")
			continue
		}

		data := s.gen.GenerateKindMetricsAt(kind, start, now, 1)
		series := data.SeriesByName(alert.Metric)
		ev := Evaluate(alert, series, 1)
		if !ev.Breached {
			continue
		}

		record := &models.TriggeredAlert{
			ID:              uuid.New().String(),
			AlertID:         alert.ID,
			AlertName:       alert.Name,
			TriggeredAt:     now.UTC(),
			ResourceName:    s.pickResource(kind),
			Service:         alert.Service,
			Condition:       alert.Condition,
			Threshold:       alert.Threshold,
			Metric:          alert.Metric,
			AverageValue:    ev.AverageValue,
			PeakValue:       ev.PeakValue,
			DurationMinutes: ev.DurationMinutes,
		}

		if err := s.triggered.Insert(ctx, record); err != nil {
			s.logger.WithError(err).WithField("alert_id", alert.ID).Error("Alert sweep: failed to store triggered alert")
			continue
		}

		alert.LastTriggeredAt = sql.NullTime{Time: record.TriggeredAt, Valid: true}
		if err := s.alerts.Update(ctx, alert); err != nil {
			s.logger.WithError(err).WithField("alert_id", alert.ID).Warn("Alert sweep: failed to update last-triggered time")
		}

		fired++
		s.logger.WithFields(logrus.Fields{
			"alert_id": alert.ID,
			"metric":   alert.Metric,
			"average":  ev.AverageValue,
			"peak":     ev.PeakValue,
		}).Warn("Alert triggered")

		if s.onTriggered != nil {
			s.onTriggered(record)
		}
	}

	s.logger.WithFields(logrus.Fields{"evaluated": len(active), "fired": fired}).Debug("Alert sweep completed")
}

// Prune drops triggered history older than the retention window.
func (s *Sweeper) Prune(ctx context.Context, retentionDays int) {
	cutoff := time.Now().UTC().Add(-time.Duration(retentionDays) * 24 * time.Hour)
	n, err := s.triggered.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.WithError(err).Error("Failed to prune triggered alert history")
		return
	}
	if n > 0 {
		s.logger.WithField("removed", n).Info("Pruned triggered alert history")
	}
}

func (s *Sweeper) pickResource(kind metrics.Kind) string {
	resources := metrics.Resources(kind)
	if len(resources) == 0 {
		return "unknown"
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return resources[s.rng.Intn(len(resources))]
}
