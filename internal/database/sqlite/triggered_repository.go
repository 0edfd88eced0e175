package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cloudmesa/console-backend-go/internal/database/models"
	"github.com/cloudmesa/console-backend-go/internal/database/repositories"
)

// TriggeredAlertRepository is the sqlite implementation of
// repositories.TriggeredAlertRepository.
type TriggeredAlertRepository struct {
	db *sqlx.DB
}

// NewTriggeredAlertRepository creates a TriggeredAlertRepository.
func NewTriggeredAlertRepository(db *sqlx.DB) repositories.TriggeredAlertRepository {
	return &TriggeredAlertRepository{db: db}
}

func (r *TriggeredAlertRepository) Insert(ctx context.Context, record *models.TriggeredAlert) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO triggered_alerts
		(id, alert_id, alert_name, triggered_at, resource_name, service, condition,
		 threshold, metric, average_value, peak_value, duration_minutes)
		VALUES (:id, :alert_id, :alert_name, :triggered_at, :resource_name, :service, :condition,
		 :threshold, :metric, :average_value, :peak_value, :duration_minutes)`,
		record)
	if err != nil {
		return fmt.Errorf("inserting triggered alert: %w", err)
	}
	return nil
}

func (r *TriggeredAlertRepository) GetByAlertID(ctx context.Context, alertID string, since time.Time) ([]*models.TriggeredAlert, error) {
	var records []*models.TriggeredAlert
	err := r.db.SelectContext(ctx, &records, `
		SELECT * FROM triggered_alerts
		WHERE alert_id = ? AND triggered_at >= ?
		ORDER BY triggered_at DESC`, alertID, since)
	if err != nil {
		return nil, fmt.Errorf("querying triggered alerts for %s: %w", alertID, err)
	}
	return records, nil
}

func (r *TriggeredAlertRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM triggered_alerts`); err != nil {
		return 0, fmt.Errorf("counting triggered alerts: %w", err)
	}
	return n, nil
}

func (r *TriggeredAlertRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM triggered_alerts WHERE triggered_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning triggered alerts: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
