package metrics

import (
	"math/rand"
	"sync"
	"time"
)

// MetricDataPoint is one sample of a series. Timestamps are epoch
// milliseconds, strictly increasing and evenly spaced within a series.
type MetricDataPoint struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}

// MetricSeries is the ordered samples of one metric over the fetched window.
type MetricSeries struct {
	Name string            `json:"name"`
	Data []MetricDataPoint `json:"data"`
}

// MetricsData is the result of one fetch: one series per metric definition,
// in definition order. Instances are never mutated after they are returned;
// callers replace their held reference on refresh.
type MetricsData struct {
	Metrics     []MetricSeries `json:"metrics"`
	LastUpdated int64          `json:"last_updated"`
}

// Generator produces synthetic metric series as a bounded random walk. The
// random source is injected so tests can seed it.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a generator over the given random source.
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// Generate walks from start to end inclusive in increments of step. The
// running value begins at base; each step perturbs it by a uniform delta in
// [-variance/2, +variance/2] scaled by the bounds span, then clamps the value
// to the bounds. Output length is floor((end-start)/step)+1.
func (g *Generator) Generate(start, end time.Time, step time.Duration, base, variance float64, bounds Bounds) []MetricDataPoint {
	if step <= 0 || end.Before(start) {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	n := int(end.Sub(start)/step) + 1
	points := make([]MetricDataPoint, 0, n)
	span := bounds.Max - bounds.Min
	value := base

	ts := start
	for i := 0; i < n; i++ {
		delta := (g.rng.Float64() - 0.5) * variance * span
		value = clamp(value+delta, bounds)
		points = append(points, MetricDataPoint{
			Timestamp: ts.UnixMilli(),
			Value:     value,
		})
		ts = ts.Add(step)
	}

	return points
}

// GenerateKindMetrics produces a full MetricsData for a resource kind over
// [now-hours, now] at the given granularity, one series per definition.
func (g *Generator) GenerateKindMetrics(kind Kind, hours, granularityMinutes int) *MetricsData {
	now := time.Now()
	return g.GenerateKindMetricsAt(kind, now.Add(-time.Duration(hours)*time.Hour), now, granularityMinutes)
}

// GenerateKindMetricsAt is GenerateKindMetrics with an explicit window, used
// for custom historical ranges.
func (g *Generator) GenerateKindMetricsAt(kind Kind, start, end time.Time, granularityMinutes int) *MetricsData {
	step := time.Duration(granularityMinutes) * time.Minute
	defs := Definitions(kind)

	data := &MetricsData{
		Metrics:     make([]MetricSeries, 0, len(defs)),
		LastUpdated: time.Now().UnixMilli(),
	}

	for _, def := range defs {
		p, ok := profiles[def.ID]
		if !ok {
			p = profile{BaseMin: 30, BaseMax: 70, Variance: 0.2, Bounds: Bounds{0, 100}}
		}
		base := p.BaseMin + g.randFloat()*(p.BaseMax-p.BaseMin)
		data.Metrics = append(data.Metrics, MetricSeries{
			Name: def.Name,
			Data: g.Generate(start, end, step, base, p.Variance, p.Bounds),
		})
	}

	return data
}

func (g *Generator) randFloat() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64()
}

func clamp(v float64, b Bounds) float64 {
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

// SeriesByName finds a series in the fetched data. Returns nil when absent.
func (d *MetricsData) SeriesByName(name string) *MetricSeries {
	for i := range d.Metrics {
		if d.Metrics[i].Name == name {
			return &d.Metrics[i]
		}
	}
	return nil
}
