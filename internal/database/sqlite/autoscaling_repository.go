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

// AutoScalingRepository is the sqlite implementation of
// repositories.AutoScalingRepository.
type AutoScalingRepository struct {
	db *sqlx.DB
}

// NewAutoScalingRepository creates an AutoScalingRepository.
func NewAutoScalingRepository(db *sqlx.DB) repositories.AutoScalingRepository {
	return &AutoScalingRepository{db: db}
}

func (r *AutoScalingRepository) Create(ctx context.Context, group *models.AutoScalingGroup) error {
	group.CreatedOn = time.Now().UTC()
	group.UpdatedAt = group.CreatedOn

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO autoscaling_groups
		(id, name, type, flavour, min_capacity, desired_capacity, max_capacity,
		 status, vpc, created_on, updated_at)
		VALUES (:id, :name, :type, :flavour, :min_capacity, :desired_capacity, :max_capacity,
		 :status, :vpc, :created_on, :updated_at)`,
		group)
	if err != nil {
		return fmt.Errorf("inserting autoscaling group: %w", err)
	}
	return nil
}

func (r *AutoScalingRepository) GetByID(ctx context.Context, id string) (*models.AutoScalingGroup, error) {
	var group models.AutoScalingGroup
	err := r.db.GetContext(ctx, &group,
		`SELECT * FROM autoscaling_groups WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying autoscaling group %s: %w", id, err)
	}
	return &group, nil
}

func (r *AutoScalingRepository) GetAll(ctx context.Context) ([]*models.AutoScalingGroup, error) {
	var groups []*models.AutoScalingGroup
	err := r.db.SelectContext(ctx, &groups,
		`SELECT * FROM autoscaling_groups ORDER BY created_on DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying autoscaling groups: %w", err)
	}
	return groups, nil
}

func (r *AutoScalingRepository) Update(ctx context.Context, group *models.AutoScalingGroup) error {
	group.UpdatedAt = time.Now().UTC()

	res, err := r.db.NamedExecContext(ctx, `
		UPDATE autoscaling_groups SET
			name = :name, type = :type, flavour = :flavour,
			min_capacity = :min_capacity, desired_capacity = :desired_capacity,
			max_capacity = :max_capacity, status = :status, vpc = :vpc,
			updated_at = :updated_at
		WHERE id = :id`, group)
	if err != nil {
		return fmt.Errorf("updating autoscaling group %s: %w", group.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *AutoScalingRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM autoscaling_groups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting autoscaling group %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
