package metrics

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator() *Generator {
	return NewGenerator(rand.New(rand.NewSource(42)))
}

func TestGenerator_Generate(t *testing.T) {
	gen := newTestGenerator()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(6 * time.Hour)
	step := 5 * time.Minute

	points := gen.Generate(start, end, step, 60, 0.15, Bounds{0, 100})

	// floor(6h/5min)+1
	require.Len(t, points, 73)

	for i, p := range points {
		assert.GreaterOrEqual(t, p.Value, 0.0)
		assert.LessOrEqual(t, p.Value, 100.0)
		if i > 0 {
			assert.Equal(t, step.Milliseconds(), p.Timestamp-points[i-1].Timestamp,
				"points must be evenly spaced")
		}
	}
}

func TestGenerator_GenerateBounds(t *testing.T) {
	gen := newTestGenerator()
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	// High variance forces the walk against the clamp.
	points := gen.Generate(start, end, time.Minute, 450, 0.9, Bounds{0, 500})
	for _, p := range points {
		assert.GreaterOrEqual(t, p.Value, 0.0)
		assert.LessOrEqual(t, p.Value, 500.0)
	}
}

func TestGenerator_GenerateDegenerateInput(t *testing.T) {
	gen := newTestGenerator()
	now := time.Now()

	assert.Nil(t, gen.Generate(now, now.Add(-time.Hour), time.Minute, 50, 0.1, Bounds{0, 100}))
	assert.Nil(t, gen.Generate(now, now.Add(time.Hour), 0, 50, 0.1, Bounds{0, 100}))

	// Equal start and end yields exactly one point.
	points := gen.Generate(now, now, time.Minute, 50, 0.1, Bounds{0, 100})
	assert.Len(t, points, 1)
}

func TestGenerator_GenerateDeterministicWithSeed(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	a := NewGenerator(rand.New(rand.NewSource(7))).Generate(start, end, time.Minute, 50, 0.2, Bounds{0, 100})
	b := NewGenerator(rand.New(rand.NewSource(7))).Generate(start, end, time.Minute, 50, 0.2, Bounds{0, 100})

	assert.Equal(t, a, b)
}

func TestGenerator_GenerateKindMetrics(t *testing.T) {
	tests := []struct {
		name       string
		kind       Kind
		wantSeries []string
	}{
		{
			name: "vm definitions in order",
			kind: KindVM,
			wantSeries: []string{
				"CPU Usage", "Memory Usage", "Disk I/O", "Network In", "Network Out",
			},
		},
		{
			name: "lb definitions in order",
			kind: KindLB,
			wantSeries: []string{
				"Request Rate", "Response Time", "Error Rate", "Active Connections", "Throughput",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := newTestGenerator()
			data := gen.GenerateKindMetrics(tt.kind, 6, 5)

			require.Len(t, data.Metrics, 5)
			for i, s := range data.Metrics {
				assert.Equal(t, tt.wantSeries[i], s.Name)
				assert.Len(t, s.Data, 73)
			}
			assert.Greater(t, data.LastUpdated, int64(0))
		})
	}
}

func TestGenerator_LBMetricsBeyondPercentScale(t *testing.T) {
	gen := newTestGenerator()
	data := gen.GenerateKindMetrics(KindLB, 1, 1)

	rate := data.SeriesByName("Request Rate")
	require.NotNil(t, rate)

	// Base values for request rate start in the hundreds; the old [0,100]
	// clamp would have flattened them.
	exceeded := false
	for _, p := range rate.Data {
		if p.Value > 100 {
			exceeded = true
			break
		}
	}
	assert.True(t, exceeded, "request rate should not be clamped to a percent scale")
}

func TestMetricUnit(t *testing.T) {
	assert.Equal(t, "%", MetricUnit(KindVM, "CPU Usage"))
	assert.Equal(t, "ms", MetricUnit(KindLB, "Response Time"))
	assert.Equal(t, "", MetricUnit(KindVM, "Request Rate"))
}

func TestParseKind(t *testing.T) {
	for _, valid := range []string{"vm", "lb"} {
		k, err := ParseKind(valid)
		require.NoError(t, err)
		assert.Equal(t, Kind(valid), k)
	}
	_, err := ParseKind("dns")
	assert.Error(t, err)
}
