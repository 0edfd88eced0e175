package alerts

import (
	"github.com/cloudmesa/console-backend-go/internal/core/metrics"
	"github.com/cloudmesa/console-backend-go/internal/database/models"
)

// Evaluation is the outcome of checking an alert against a metric series.
type Evaluation struct {
	Breached        bool
	AverageValue    float64
	PeakValue       float64
	DurationMinutes int
}

// Evaluate checks an alert's condition against a series. The windowed
// average is compared with the threshold; peak and breach duration are
// computed over the same window. Duration counts the trailing run of points
// that individually satisfy the condition, at the series' granularity.
func Evaluate(alert *models.ConfiguredAlert, series *metrics.MetricSeries, granularityMinutes int) Evaluation {
	if series == nil || len(series.Data) == 0 {
		return Evaluation{}
	}

	var sum float64
	peak := series.Data[0].Value
	for _, p := range series.Data {
		sum += p.Value
		if p.Value > peak {
			peak = p.Value
		}
	}
	avg := sum / float64(len(series.Data))

	ev := Evaluation{
		AverageValue: avg,
		PeakValue:    peak,
		Breached:     Compare(alert.Condition, avg, alert.Threshold),
	}
	if !ev.Breached {
		return ev
	}

	trailing := 0
	for i := len(series.Data) - 1; i >= 0; i-- {
		if !Compare(alert.Condition, series.Data[i].Value, alert.Threshold) {
			break
		}
		trailing++
	}
	if trailing == 0 {
		// Average breaches even though the latest sample does not; report one step.
		trailing = 1
	}
	ev.DurationMinutes = trailing * granularityMinutes

	return ev
}
