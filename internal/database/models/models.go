package models

import (
	"database/sql"
	"time"
)

// AlertStatus is the lifecycle state of a configured alert.
type AlertStatus string

const (
	AlertStatusActive   AlertStatus = "active"
	AlertStatusInactive AlertStatus = "inactive"
	AlertStatusPaused   AlertStatus = "paused"
)

// AlertCondition is the comparison an alert applies to its metric.
type AlertCondition string

const (
	ConditionLessThan         AlertCondition = "less-than"
	ConditionGreaterThan      AlertCondition = "greater-than"
	ConditionLessThanEqual    AlertCondition = "less-than-equal"
	ConditionGreaterThanEqual AlertCondition = "greater-than-equal"
)

// ConfiguredAlert is an alert rule configured through the console. Service
// and Metric are immutable after creation.
type ConfiguredAlert struct {
	ID                  string         `json:"id" db:"id"`
	Name                string         `json:"name" db:"name"`
	Description         string         `json:"description" db:"description"`
	Status              AlertStatus    `json:"status" db:"status"`
	Service             string         `json:"service" db:"service"`
	Metric              string         `json:"metric" db:"metric"`
	Condition           AlertCondition `json:"condition" db:"condition"`
	Threshold           float64        `json:"threshold" db:"threshold"`
	NotificationEnabled bool           `json:"notification_enabled" db:"notification_enabled"`
	NotificationEmails  StringList     `json:"notification_emails" db:"notification_emails"`
	LastTriggeredAt     sql.NullTime   `json:"last_triggered_at" db:"last_triggered_at"`
	CreatedOn           time.Time      `json:"created_on" db:"created_on"`
	UpdatedAt           time.Time      `json:"updated_at" db:"updated_at"`
}

// TriggeredAlert is a read-only historical record of an alert condition
// having been met. Never mutated after insert.
type TriggeredAlert struct {
	ID              string         `json:"id" db:"id"`
	AlertID         string         `json:"alert_id" db:"alert_id"`
	AlertName       string         `json:"alert_name" db:"alert_name"`
	TriggeredAt     time.Time      `json:"triggered_at" db:"triggered_at"`
	ResourceName    string         `json:"resource_name" db:"resource_name"`
	Service         string         `json:"service" db:"service"`
	Condition       AlertCondition `json:"condition" db:"condition"`
	Threshold       float64        `json:"threshold" db:"threshold"`
	Metric          string         `json:"metric" db:"metric"`
	AverageValue    float64        `json:"average_value" db:"average_value"`
	PeakValue       float64        `json:"peak_value" db:"peak_value"`
	DurationMinutes int            `json:"duration_minutes" db:"duration_minutes"`
}

// AutoScalingGroup is a managed compute scaling group. The capacity
// invariant Min <= Desired <= Max is enforced by the autoscaling service.
type AutoScalingGroup struct {
	ID              string    `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Type            string    `json:"type" db:"type"`
	Flavour         string    `json:"flavour" db:"flavour"`
	MinCapacity     int       `json:"min_capacity" db:"min_capacity"`
	DesiredCapacity int       `json:"desired_capacity" db:"desired_capacity"`
	MaxCapacity     int       `json:"max_capacity" db:"max_capacity"`
	Status          string    `json:"status" db:"status"`
	VPC             string    `json:"vpc" db:"vpc"`
	CreatedOn       time.Time `json:"created_on" db:"created_on"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Preference is one persisted console preference entry.
type Preference struct {
	Key       string    `json:"key" db:"key"`
	Value     string    `json:"value" db:"value"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
