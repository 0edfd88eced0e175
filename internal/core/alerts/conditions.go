// Package alerts implements configured alert rules: creation and lifecycle,
// condition evaluation against metric series, and the triggered-alert
// history.
package alerts

import "github.com/cloudmesa/console-backend-go/internal/database/models"

// Conditions enumerates the supported comparison kinds.
var Conditions = []models.AlertCondition{
	models.ConditionLessThan,
	models.ConditionGreaterThan,
	models.ConditionLessThanEqual,
	models.ConditionGreaterThanEqual,
}

// FormatCondition maps a condition to its display symbol. Total over the
// four condition kinds; unknown input yields the empty string.
func FormatCondition(cond models.AlertCondition) string {
	switch cond {
	case models.ConditionLessThan:
		return "<"
	case models.ConditionGreaterThan:
		return ">"
	case models.ConditionLessThanEqual:
		return "≤"
	case models.ConditionGreaterThanEqual:
		return "≥"
	}
	return ""
}

// ValidCondition reports whether cond is one of the supported kinds.
func ValidCondition(cond models.AlertCondition) bool {
	for _, c := range Conditions {
		if c == cond {
			return true
		}
	}
	return false
}

// Compare applies cond to (value, threshold).
func Compare(cond models.AlertCondition, value, threshold float64) bool {
	switch cond {
	case models.ConditionLessThan:
		return value < threshold
	case models.ConditionGreaterThan:
		return value > threshold
	case models.ConditionLessThanEqual:
		return value <= threshold
	case models.ConditionGreaterThanEqual:
		return value >= threshold
	}
	return false
}
