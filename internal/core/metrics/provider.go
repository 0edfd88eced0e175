package metrics

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Provider fetches metric data for a resource. The console ships the
// simulated implementation; a real monitoring backend can be substituted
// without touching callers.
type Provider interface {
	FetchMetrics(ctx context.Context, kind Kind, resource string, hours, granularityMinutes int) (*MetricsData, error)
	FetchMetricsRange(ctx context.Context, kind Kind, resource string, from, to time.Time, granularityMinutes int) (*MetricsData, error)
}

// SimulatedProvider serves generated series after a randomized delay that
// stands in for network latency.
type SimulatedProvider struct {
	gen        *Generator
	minLatency time.Duration
	maxLatency time.Duration
	logger     *logrus.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedProvider creates a provider around the generator. Latencies
// bound the simulated delay; rng drives the delay draw.
func NewSimulatedProvider(gen *Generator, minLatency, maxLatency time.Duration, rng *rand.Rand, logger *logrus.Logger) *SimulatedProvider {
	return &SimulatedProvider{
		gen:        gen,
		minLatency: minLatency,
		maxLatency: maxLatency,
		rng:        rng,
		logger:     logger,
	}
}

// FetchMetrics fetches metrics over the trailing window [now-hours, now].
func (p *SimulatedProvider) FetchMetrics(ctx context.Context, kind Kind, resource string, hours, granularityMinutes int) (*MetricsData, error) {
	if err := p.validate(kind, resource, granularityMinutes); err != nil {
		return nil, err
	}
	if hours < 1 || hours > 360 {
		return nil, fmt.Errorf("time range %dh outside supported window [1, 360]", hours)
	}

	if err := p.simulateLatency(ctx); err != nil {
		return nil, err
	}

	data := p.gen.GenerateKindMetrics(kind, hours, granularityMinutes)
	p.logger.WithFields(logrus.Fields{
		"kind":        kind,
		"resource":    resource,
		"hours":       hours,
		"granularity": granularityMinutes,
		"series":      len(data.Metrics),
	}).Debug("Served simulated metrics")

	return data, nil
}

// FetchMetricsRange fetches metrics over an explicit historical window.
func (p *SimulatedProvider) FetchMetricsRange(ctx context.Context, kind Kind, resource string, from, to time.Time, granularityMinutes int) (*MetricsData, error) {
	if err := p.validate(kind, resource, granularityMinutes); err != nil {
		return nil, err
	}
	if !to.After(from) {
		return nil, fmt.Errorf("invalid range: from %s is not before to %s", from, to)
	}

	if err := p.simulateLatency(ctx); err != nil {
		return nil, err
	}

	return p.gen.GenerateKindMetricsAt(kind, from, to, granularityMinutes), nil
}

func (p *SimulatedProvider) validate(kind Kind, resource string, granularityMinutes int) error {
	if len(Definitions(kind)) == 0 {
		return fmt.Errorf("unknown resource kind: %q", kind)
	}
	if resource == "" {
		return fmt.Errorf("resource name is required")
	}
	if granularityMinutes <= 0 {
		return fmt.Errorf("granularity must be positive, got %d", granularityMinutes)
	}
	return nil
}

// simulateLatency blocks for a random delay in [minLatency, maxLatency),
// honoring context cancellation.
func (p *SimulatedProvider) simulateLatency(ctx context.Context) error {
	delay := p.minLatency
	if spread := p.maxLatency - p.minLatency; spread > 0 {
		p.mu.Lock()
		delay += time.Duration(p.rng.Int63n(int64(spread)))
		p.mu.Unlock()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
