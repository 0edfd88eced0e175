// Package repositories defines the storage interfaces consumed by the core
// services. Sqlite implementations live in the sibling sqlite package.
package repositories

import (
	"context"
	"time"

	"github.com/cloudmesa/console-backend-go/internal/database/models"
)

// AlertRepository stores configured alert rules.
type AlertRepository interface {
	Create(ctx context.Context, alert *models.ConfiguredAlert) error
	GetByID(ctx context.Context, id string) (*models.ConfiguredAlert, error)
	GetAll(ctx context.Context) ([]*models.ConfiguredAlert, error)
	GetByStatus(ctx context.Context, status models.AlertStatus) ([]*models.ConfiguredAlert, error)
	Update(ctx context.Context, alert *models.ConfiguredAlert) error
	Delete(ctx context.Context, id string) error
}

// TriggeredAlertRepository stores the triggered-alert history.
type TriggeredAlertRepository interface {
	Insert(ctx context.Context, record *models.TriggeredAlert) error
	GetByAlertID(ctx context.Context, alertID string, since time.Time) ([]*models.TriggeredAlert, error)
	Count(ctx context.Context) (int, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// AutoScalingRepository stores auto-scaling groups.
type AutoScalingRepository interface {
	Create(ctx context.Context, group *models.AutoScalingGroup) error
	GetByID(ctx context.Context, id string) (*models.AutoScalingGroup, error)
	GetAll(ctx context.Context) ([]*models.AutoScalingGroup, error)
	Update(ctx context.Context, group *models.AutoScalingGroup) error
	Delete(ctx context.Context, id string) error
}

// PreferenceRepository is the durable key-value store behind the console's
// persistence port.
type PreferenceRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
