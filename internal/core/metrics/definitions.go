// Package metrics provides the console's metric catalog and the synthetic
// time-series provider backing the observability dashboards.
package metrics

import "fmt"

// Kind identifies the resource kind metrics are scoped to.
type Kind string

const (
	KindVM Kind = "vm"
	KindLB Kind = "lb"
)

// ParseKind validates a kind string from an API path or query.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindVM, KindLB:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown resource kind: %q", s)
}

// MetricDefinition describes one metric of a resource kind. The definition
// lists are fixed; they are never mutated at runtime.
type MetricDefinition struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Unit string `json:"unit"`
}

var vmDefinitions = []MetricDefinition{
	{ID: "cpu_usage", Name: "CPU Usage", Unit: "%"},
	{ID: "memory_usage", Name: "Memory Usage", Unit: "%"},
	{ID: "disk_io", Name: "Disk I/O", Unit: "MB/s"},
	{ID: "network_in", Name: "Network In", Unit: "MB/s"},
	{ID: "network_out", Name: "Network Out", Unit: "MB/s"},
}

var lbDefinitions = []MetricDefinition{
	{ID: "request_rate", Name: "Request Rate", Unit: "req/s"},
	{ID: "response_time", Name: "Response Time", Unit: "ms"},
	{ID: "error_rate", Name: "Error Rate", Unit: "%"},
	{ID: "active_connections", Name: "Active Connections", Unit: "conns"},
	{ID: "throughput", Name: "Throughput", Unit: "MB/s"},
}

// Definitions returns the metric definition list for a kind, in display order.
func Definitions(kind Kind) []MetricDefinition {
	switch kind {
	case KindVM:
		return vmDefinitions
	case KindLB:
		return lbDefinitions
	}
	return nil
}

// MetricUnit resolves the display unit of a metric by name. Returns the empty
// string for a metric the kind does not define.
func MetricUnit(kind Kind, name string) string {
	for _, def := range Definitions(kind) {
		if def.Name == name {
			return def.Unit
		}
	}
	return ""
}

// HasMetric reports whether the kind defines a metric with the given name.
func HasMetric(kind Kind, name string) bool {
	for _, def := range Definitions(kind) {
		if def.Name == name {
			return true
		}
	}
	return false
}

// Bounds is the valid value range of a metric series.
type Bounds struct {
	Min float64
	Max float64
}

// profile captures the generation parameters of a metric: the range its base
// value is drawn from, the per-step variance as a fraction of the bounds
// span, and the clamp bounds.
//
// The upstream console clamped every metric to [0, 100], which is wrong for
// request rate and response time; bounds are per-metric here.
type profile struct {
	BaseMin  float64
	BaseMax  float64
	Variance float64
	Bounds   Bounds
}

var profiles = map[string]profile{
	// VM
	"cpu_usage":    {BaseMin: 45, BaseMax: 75, Variance: 0.15, Bounds: Bounds{0, 100}},
	"memory_usage": {BaseMin: 50, BaseMax: 80, Variance: 0.15, Bounds: Bounds{0, 100}},
	"disk_io":      {BaseMin: 20, BaseMax: 60, Variance: 0.25, Bounds: Bounds{0, 100}},
	"network_in":   {BaseMin: 10, BaseMax: 50, Variance: 0.2, Bounds: Bounds{0, 100}},
	"network_out":  {BaseMin: 10, BaseMax: 45, Variance: 0.2, Bounds: Bounds{0, 100}},

	// LB
	"request_rate":       {BaseMin: 150, BaseMax: 350, Variance: 0.2, Bounds: Bounds{0, 500}},
	"response_time":      {BaseMin: 40, BaseMax: 120, Variance: 0.25, Bounds: Bounds{0, 300}},
	"error_rate":         {BaseMin: 0.5, BaseMax: 4, Variance: 0.2, Bounds: Bounds{0, 100}},
	"active_connections": {BaseMin: 200, BaseMax: 600, Variance: 0.2, Bounds: Bounds{0, 1000}},
	"throughput":         {BaseMin: 20, BaseMax: 70, Variance: 0.25, Bounds: Bounds{0, 100}},
}
