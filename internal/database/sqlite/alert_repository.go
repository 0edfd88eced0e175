package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	apperrors "github.com/cloudmesa/console-backend-go/pkg/errors"

	"github.com/cloudmesa/console-backend-go/internal/database/models"
	"github.com/cloudmesa/console-backend-go/internal/database/repositories"
)

// AlertRepository is the sqlite implementation of repositories.AlertRepository.
type AlertRepository struct {
	db *sqlx.DB
}

// NewAlertRepository creates an AlertRepository.
func NewAlertRepository(db *sqlx.DB) repositories.AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Create(ctx context.Context, alert *models.ConfiguredAlert) error {
	alert.CreatedOn = time.Now().UTC()
	alert.UpdatedAt = alert.CreatedOn

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO configured_alerts
		(id, name, description, status, service, metric, condition, threshold,
		 notification_enabled, notification_emails, last_triggered_at, created_on, updated_at)
		VALUES (:id, :name, :description, :status, :service, :metric, :condition, :threshold,
		 :notification_enabled, :notification_emails, :last_triggered_at, :created_on, :updated_at)`,
		alert)
	if err != nil {
		return fmt.Errorf("inserting configured alert: %w", err)
	}
	return nil
}

func (r *AlertRepository) GetByID(ctx context.Context, id string) (*models.ConfiguredAlert, error) {
	var alert models.ConfiguredAlert
	err := r.db.GetContext(ctx, &alert,
		`SELECT * FROM configured_alerts WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying configured alert %s: %w", id, err)
	}
	return &alert, nil
}

func (r *AlertRepository) GetAll(ctx context.Context) ([]*models.ConfiguredAlert, error) {
	var alerts []*models.ConfiguredAlert
	err := r.db.SelectContext(ctx, &alerts,
		`SELECT * FROM configured_alerts ORDER BY created_on DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying configured alerts: %w", err)
	}
	return alerts, nil
}

func (r *AlertRepository) GetByStatus(ctx context.Context, status models.AlertStatus) ([]*models.ConfiguredAlert, error) {
	var alerts []*models.ConfiguredAlert
	err := r.db.SelectContext(ctx, &alerts,
		`SELECT * FROM configured_alerts WHERE status = ? ORDER BY created_on DESC`, status)
	if err != nil {
		return nil, fmt.Errorf("querying configured alerts by status %s: %w", status, err)
	}
	return alerts, nil
}

func (r *AlertRepository) Update(ctx context.Context, alert *models.ConfiguredAlert) error {
	alert.UpdatedAt = time.Now().UTC()

	res, err := r.db.NamedExecContext(ctx, `
		UPDATE configured_alerts SET
			name = :name, description = :description, status = :status,
			condition = :condition, threshold = :threshold,
			notification_enabled = :notification_enabled,
			notification_emails = :notification_emails,
			last_triggered_at = :last_triggered_at, updated_at = :updated_at
		WHERE id = :id`, alert)
	if err != nil {
		return fmt.Errorf("updating configured alert %s: %w", alert.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *AlertRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM configured_alerts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting configured alert %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
