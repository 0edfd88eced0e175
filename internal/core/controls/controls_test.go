package controls

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudmesa/console-backend-go/internal/core/metrics"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newTestController(kind metrics.Kind) *Controller {
	return NewController(kind, NewMemoryStore(), Overrides{}, testLogger())
}

func TestNewController_Defaults(t *testing.T) {
	lb := newTestController(metrics.KindLB)
	assert.Equal(t, TimeRange{Hours: 6}, lb.Active().TimeRange)
	assert.Equal(t, 1, lb.Active().Granularity)

	vm := newTestController(metrics.KindVM)
	assert.Equal(t, TimeRange{Hours: 24}, vm.Active().TimeRange)
	assert.Equal(t, 1, vm.Active().Granularity)

	assert.False(t, lb.HasPendingChanges())
}

func TestController_SelectResourceAppliesImmediately(t *testing.T) {
	c := newTestController(metrics.KindVM)

	var applied []Config
	c.OnApply(func(cfg Config) { applied = append(applied, cfg) })

	require.NoError(t, c.SelectResource("web-server-01"))

	assert.Equal(t, "web-server-01", c.Active().Resource)
	assert.Equal(t, "web-server-01", c.Pending().Resource)
	assert.False(t, c.HasPendingChanges(), "resource selection does not stage changes")
	require.Len(t, applied, 1)
	assert.Equal(t, "web-server-01", applied[0].Resource)

	assert.Error(t, c.SelectResource(""))
}

func TestController_ConfirmFlow(t *testing.T) {
	c := newTestController(metrics.KindVM)
	require.NoError(t, c.SelectResource("web-server-01"))

	var applied []Config
	c.OnApply(func(cfg Config) { applied = append(applied, cfg) })

	require.NoError(t, c.SetPendingTimeRange(6))
	require.NoError(t, c.SetPendingGranularity(5))

	assert.True(t, c.HasPendingChanges())
	assert.True(t, c.CanConfirm())
	assert.Equal(t, TimeRange{Hours: 24}, c.Active().TimeRange, "active is untouched before Confirm")
	assert.Empty(t, applied)

	require.NoError(t, c.Confirm())

	assert.Equal(t, TimeRange{Hours: 6}, c.Active().TimeRange)
	assert.Equal(t, 5, c.Active().Granularity)
	assert.False(t, c.HasPendingChanges(), "pending equals active after Confirm")
	assert.False(t, c.CanConfirm())
	require.Len(t, applied, 1)

	// Nothing staged now.
	assert.Error(t, c.Confirm())
	assert.Len(t, applied, 1)
}

func TestController_SetPendingTimeRangeValidation(t *testing.T) {
	c := newTestController(metrics.KindVM)

	for _, hours := range TimeRangePresets {
		assert.NoError(t, c.SetPendingTimeRange(hours))
	}
	assert.Error(t, c.SetPendingTimeRange(2))
	assert.Error(t, c.SetPendingTimeRange(0))

	for _, minutes := range GranularityValues {
		assert.NoError(t, c.SetPendingGranularity(minutes))
	}
	assert.Error(t, c.SetPendingGranularity(7))
}

func TestController_CustomRange(t *testing.T) {
	c := newTestController(metrics.KindVM)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(48 * time.Hour)

	assert.Error(t, c.SetPendingCustomRange(nil, &to), "start date is required")
	assert.Error(t, c.SetPendingCustomRange(&to, &from), "end must be after start")

	// From-only is a valid staged state but blocks Confirm.
	require.NoError(t, c.SetPendingCustomRange(&from, nil))
	assert.True(t, c.HasPendingChanges())
	assert.False(t, c.CanConfirm())
	assert.Error(t, c.Confirm())

	require.NoError(t, c.SetPendingCustomRange(&from, &to))
	require.NoError(t, c.Confirm())

	active := c.Active()
	assert.True(t, active.TimeRange.Custom)
	assert.Equal(t, 48, active.EffectiveHours())
}

func TestController_PresetClearsCustomRange(t *testing.T) {
	c := newTestController(metrics.KindVM)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(2 * time.Hour)
	require.NoError(t, c.SetPendingCustomRange(&from, &to))
	require.NoError(t, c.SetPendingTimeRange(12))

	pending := c.Pending()
	assert.False(t, pending.TimeRange.Custom)
	assert.Nil(t, pending.CustomRange.From)
	assert.Nil(t, pending.CustomRange.To)
}

func TestController_PersistenceRoundTrip(t *testing.T) {
	store := NewMemoryStore()

	c := NewController(metrics.KindLB, store, Overrides{}, testLogger())
	require.NoError(t, c.SelectResource("lb-api-01"))
	require.NoError(t, c.SetPendingTimeRange(168))
	require.NoError(t, c.SetPendingGranularity(30))
	require.NoError(t, c.Confirm())

	// A fresh controller over the same store resumes the applied state.
	restored := NewController(metrics.KindLB, store, Overrides{}, testLogger())
	active := restored.Active()
	assert.Equal(t, "lb-api-01", active.Resource)
	assert.Equal(t, TimeRange{Hours: 168}, active.TimeRange)
	assert.Equal(t, 30, active.Granularity)
	assert.False(t, restored.HasPendingChanges())
}

func TestController_PersistenceCustomRange(t *testing.T) {
	store := NewMemoryStore()
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(72 * time.Hour)

	c := NewController(metrics.KindVM, store, Overrides{}, testLogger())
	require.NoError(t, c.SetPendingCustomRange(&from, &to))
	require.NoError(t, c.Confirm())

	restored := NewController(metrics.KindVM, store, Overrides{}, testLogger())
	active := restored.Active()
	require.True(t, active.TimeRange.Custom)
	require.True(t, active.CustomRange.Complete())
	assert.True(t, active.CustomRange.From.Equal(from))
	assert.True(t, active.CustomRange.To.Equal(to))
}

func TestController_PersistedStateIsolatedPerKind(t *testing.T) {
	store := NewMemoryStore()

	vm := NewController(metrics.KindVM, store, Overrides{}, testLogger())
	require.NoError(t, vm.SetPendingTimeRange(168))
	require.NoError(t, vm.Confirm())

	lb := NewController(metrics.KindLB, store, Overrides{}, testLogger())
	assert.Equal(t, TimeRange{Hours: 6}, lb.Active().TimeRange)
}

func TestController_OverridesWinOverStore(t *testing.T) {
	store := NewMemoryStore()

	seeded := NewController(metrics.KindVM, store, Overrides{}, testLogger())
	require.NoError(t, seeded.SelectResource("web-server-01"))
	require.NoError(t, seeded.SetPendingTimeRange(12))
	require.NoError(t, seeded.Confirm())

	c := NewController(metrics.KindVM, store, Overrides{
		Resource:    "db-server-01",
		Hours:       6,
		Granularity: 10,
	}, testLogger())

	active := c.Active()
	assert.Equal(t, "db-server-01", active.Resource)
	assert.Equal(t, TimeRange{Hours: 6}, active.TimeRange)
	assert.Equal(t, 10, active.Granularity)
}

func TestController_OverridesOutsideEnumIgnored(t *testing.T) {
	c := NewController(metrics.KindVM, NewMemoryStore(), Overrides{
		Hours:       2,
		Granularity: 7,
	}, testLogger())

	active := c.Active()
	assert.Equal(t, TimeRange{Hours: 24}, active.TimeRange)
	assert.Equal(t, 1, active.Granularity)
}

func TestConfig_EffectiveHours(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		cfg  Config
		want int
	}{
		{
			name: "preset passes through",
			cfg:  Config{TimeRange: TimeRange{Hours: 24}},
			want: 24,
		},
		{
			name: "custom range below minimum clamps up",
			cfg: Config{
				TimeRange:   TimeRange{Custom: true},
				CustomRange: DateRange{From: &from, To: timePtr(from.Add(20 * time.Minute))},
			},
			want: MinRangeHours,
		},
		{
			name: "custom range above maximum clamps down",
			cfg: Config{
				TimeRange:   TimeRange{Custom: true},
				CustomRange: DateRange{From: &from, To: timePtr(from.Add(30 * 24 * time.Hour))},
			},
			want: MaxRangeHours,
		},
		{
			name: "incomplete custom range yields zero",
			cfg: Config{
				TimeRange:   TimeRange{Custom: true},
				CustomRange: DateRange{From: &from},
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.EffectiveHours())
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }
