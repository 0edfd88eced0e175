// Package controls holds the dashboard control configuration: the staged
// (pending) and applied (active) selection of resource, time range and
// granularity, persisted per resource kind.
package controls

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cloudmesa/console-backend-go/internal/core/metrics"
)

// Supported selections. Values outside these sets are rejected on mutation
// and ignored while seeding.
var (
	TimeRangePresets  = []int{1, 6, 12, 24, 168}
	GranularityValues = []int{1, 5, 10, 30, 60}
)

// Custom ranges are capped at 15 days when converted to an hour count.
const (
	MinRangeHours = 1
	MaxRangeHours = 360
)

// TimeRange is either a preset trailing window (Hours set, Custom false) or
// the custom sentinel paired with an explicit date range on the config.
type TimeRange struct {
	Hours  int  `json:"hours,omitempty"`
	Custom bool `json:"custom,omitempty"`
}

// DateRange is an explicit window. From may be set while To is still unset
// while the user is picking the end date; such a range is incomplete and
// blocks Confirm.
type DateRange struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// Complete reports whether both endpoints are present.
func (r DateRange) Complete() bool {
	return r.From != nil && r.To != nil
}

func (r DateRange) equal(o DateRange) bool {
	return timePtrEqual(r.From, o.From) && timePtrEqual(r.To, o.To)
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// Config is one control configuration instance. Two live per controller:
// pending, mutated freely by the user, and active, overwritten atomically on
// Confirm.
type Config struct {
	Resource    string    `json:"resource"`
	TimeRange   TimeRange `json:"time_range"`
	CustomRange DateRange `json:"custom_range"`
	Granularity int       `json:"granularity"`
}

// EffectiveHours converts the time range to the hour count handed to the
// metrics provider, clamping custom ranges to the product's 15-day limit.
func (c Config) EffectiveHours() int {
	if !c.TimeRange.Custom {
		return c.TimeRange.Hours
	}
	if !c.CustomRange.Complete() {
		return 0
	}
	hours := int(c.CustomRange.To.Sub(*c.CustomRange.From).Hours())
	if hours < MinRangeHours {
		return MinRangeHours
	}
	if hours > MaxRangeHours {
		return MaxRangeHours
	}
	return hours
}

// ApplyFunc is invoked with the new active config whenever a selection is
// applied (resource change or Confirm). The dashboard service hooks fetches
// and refresh rescheduling here.
type ApplyFunc func(cfg Config)

// Controller is the pending/active state machine for one resource kind.
type Controller struct {
	mu      sync.Mutex
	kind    metrics.Kind
	store   Store
	logger  *logrus.Logger
	onApply ApplyFunc

	pending Config
	active  Config
}

// Overrides seed initial state ahead of the persisted store, mirroring the
// console's URL query parameters. Zero values mean "not supplied".
type Overrides struct {
	Resource    string
	Hours       int
	Custom      bool
	Granularity int
}

// NewController seeds pending and active from, in priority order, overrides,
// the persisted store, then the kind's defaults (LB 6h/1min, VM 24h/1min).
func NewController(kind metrics.Kind, store Store, overrides Overrides, logger *logrus.Logger) *Controller {
	c := &Controller{
		kind:   kind,
		store:  store,
		logger: logger,
	}
	c.active = c.seed(overrides)
	c.pending = c.active
	return c
}

// OnApply registers the apply callback. Must be called before any mutation.
func (c *Controller) OnApply(fn ApplyFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onApply = fn
}

// Kind returns the resource kind this controller manages.
func (c *Controller) Kind() metrics.Kind { return c.kind }

// Pending returns a copy of the staged configuration.
func (c *Controller) Pending() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Active returns a copy of the applied configuration.
func (c *Controller) Active() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// SelectResource applies the resource immediately to both pending and
// active, persists it, and triggers an apply. Resource selection is not
// staged behind Confirm.
func (c *Controller) SelectResource(name string) error {
	if name == "" {
		return fmt.Errorf("resource name is required")
	}

	c.mu.Lock()
	c.pending.Resource = name
	c.active.Resource = name
	c.persistLocked()
	applied := c.active
	fn := c.onApply
	c.mu.Unlock()

	c.logger.WithFields(logrus.Fields{"kind": c.kind, "resource": name}).Info("Resource selected")
	if fn != nil {
		fn(applied)
	}
	return nil
}

// SetPendingTimeRange stages a preset trailing window. Choosing a preset
// clears any staged custom range.
func (c *Controller) SetPendingTimeRange(hours int) error {
	if !containsInt(TimeRangePresets, hours) {
		return fmt.Errorf("unsupported time range: %dh", hours)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending.TimeRange = TimeRange{Hours: hours}
	c.pending.CustomRange = DateRange{}
	return nil
}

// SetPendingCustomRange stages the custom sentinel with the given endpoints.
// To may be nil while the end date is still being picked.
func (c *Controller) SetPendingCustomRange(from, to *time.Time) error {
	if from == nil {
		return fmt.Errorf("custom range requires a start date")
	}
	if to != nil && !to.After(*from) {
		return fmt.Errorf("custom range end must be after start")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending.TimeRange = TimeRange{Custom: true}
	c.pending.CustomRange = DateRange{From: from, To: to}
	return nil
}

// SetPendingGranularity stages a granularity in minutes.
func (c *Controller) SetPendingGranularity(minutes int) error {
	if !containsInt(GranularityValues, minutes) {
		return fmt.Errorf("unsupported granularity: %dmin", minutes)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending.Granularity = minutes
	return nil
}

// HasPendingChanges reports deep inequality between pending and active
// across time range, custom range and granularity. Resource is excluded; it
// applies immediately.
func (c *Controller) HasPendingChanges() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasPendingChangesLocked()
}

func (c *Controller) hasPendingChangesLocked() bool {
	if c.pending.TimeRange != c.active.TimeRange {
		return true
	}
	if !c.pending.CustomRange.equal(c.active.CustomRange) {
		return true
	}
	return c.pending.Granularity != c.active.Granularity
}

// CanConfirm reports whether Confirm would succeed: there are staged changes
// and a staged custom range, if any, has both endpoints.
func (c *Controller) CanConfirm() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasPendingChangesLocked() {
		return false
	}
	if c.pending.TimeRange.Custom && !c.pending.CustomRange.Complete() {
		return false
	}
	return true
}

// Confirm atomically copies pending into active (time range, custom range
// and granularity; resource is already live), persists the result, and
// triggers an apply with the new active config.
func (c *Controller) Confirm() error {
	c.mu.Lock()
	if !c.hasPendingChangesLocked() {
		c.mu.Unlock()
		return fmt.Errorf("no pending changes to confirm")
	}
	if c.pending.TimeRange.Custom && !c.pending.CustomRange.Complete() {
		c.mu.Unlock()
		return fmt.Errorf("custom range is incomplete")
	}

	c.active.TimeRange = c.pending.TimeRange
	c.active.CustomRange = c.pending.CustomRange
	c.active.Granularity = c.pending.Granularity
	c.persistLocked()
	applied := c.active
	fn := c.onApply
	c.mu.Unlock()

	c.logger.WithFields(logrus.Fields{
		"kind":        c.kind,
		"time_range":  applied.TimeRange,
		"granularity": applied.Granularity,
	}).Info("Control configuration confirmed")
	if fn != nil {
		fn(applied)
	}
	return nil
}

// Storage keys per kind, matching the console's session-storage namespaces.
func (c *Controller) key(suffix string) string {
	return fmt.Sprintf("observability_%s_%s", c.kind, suffix)
}

func (c *Controller) resourceKey() string {
	return fmt.Sprintf("observability_selected_%s", c.kind)
}

func (c *Controller) persistLocked() {
	set := func(key, value string) {
		if err := c.store.Set(key, value); err != nil {
			c.logger.WithError(err).WithField("key", key).Warn("Failed to persist control config")
		}
	}

	if c.active.Resource != "" {
		set(c.resourceKey(), c.active.Resource)
	}
	if c.active.TimeRange.Custom {
		set(c.key("time_range"), "custom")
		if raw, err := json.Marshal(c.active.CustomRange); err == nil {
			set(c.key("custom_range"), string(raw))
		}
	} else {
		set(c.key("time_range"), fmt.Sprintf("%d", c.active.TimeRange.Hours))
		if err := c.store.Delete(c.key("custom_range")); err != nil {
			c.logger.WithError(err).Warn("Failed to clear stale custom range")
		}
	}
	set(c.key("granularity"), fmt.Sprintf("%d", c.active.Granularity))
}

func (c *Controller) seed(ov Overrides) Config {
	cfg := defaultConfig(c.kind)

	// Persisted values override defaults.
	if v, ok, err := c.store.Get(c.resourceKey()); err == nil && ok {
		cfg.Resource = v
	}
	if v, ok, err := c.store.Get(c.key("time_range")); err == nil && ok {
		if v == "custom" {
			if raw, ok, err := c.store.Get(c.key("custom_range")); err == nil && ok {
				var dr DateRange
				if json.Unmarshal([]byte(raw), &dr) == nil && dr.Complete() {
					cfg.TimeRange = TimeRange{Custom: true}
					cfg.CustomRange = dr
				}
			}
		} else if hours, err := parsePositive(v); err == nil && containsInt(TimeRangePresets, hours) {
			cfg.TimeRange = TimeRange{Hours: hours}
			cfg.CustomRange = DateRange{}
		}
	}
	if v, ok, err := c.store.Get(c.key("granularity")); err == nil && ok {
		if minutes, err := parsePositive(v); err == nil && containsInt(GranularityValues, minutes) {
			cfg.Granularity = minutes
		}
	}

	// Explicit overrides win over everything; out-of-enum values are ignored.
	if ov.Resource != "" {
		cfg.Resource = ov.Resource
	}
	if ov.Custom {
		cfg.TimeRange = TimeRange{Custom: true}
		cfg.CustomRange = DateRange{}
	} else if containsInt(TimeRangePresets, ov.Hours) {
		cfg.TimeRange = TimeRange{Hours: ov.Hours}
		cfg.CustomRange = DateRange{}
	}
	if containsInt(GranularityValues, ov.Granularity) {
		cfg.Granularity = ov.Granularity
	}

	return cfg
}

func defaultConfig(kind metrics.Kind) Config {
	hours := 6
	if kind == metrics.KindVM {
		hours = 24
	}
	return Config{
		TimeRange:   TimeRange{Hours: hours},
		Granularity: 1,
	}
}

func parsePositive(s string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("not positive: %d", n)
	}
	return n, nil
}

func containsInt(set []int, v int) bool {
	for _, x := range set {
		if x == v {
			return true
		}
	}
	return false
}
