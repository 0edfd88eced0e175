// Package autoscaling manages compute auto-scaling groups and enforces the
// capacity invariant min <= desired <= max.
package autoscaling

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	apperrors "github.com/cloudmesa/console-backend-go/pkg/errors"

	"github.com/cloudmesa/console-backend-go/internal/database/models"
	"github.com/cloudmesa/console-backend-go/internal/database/repositories"
)

// Service manages auto-scaling groups.
type Service struct {
	groups repositories.AutoScalingRepository
	logger *logrus.Logger
}

// NewService creates an autoscaling service.
func NewService(groups repositories.AutoScalingRepository, logger *logrus.Logger) *Service {
	return &Service{groups: groups, logger: logger}
}

// GroupInput carries the create/update form fields.
type GroupInput struct {
	Name            string `json:"name"`
	Type            string `json:"type"`
	Flavour         string `json:"flavour"`
	MinCapacity     *int   `json:"min_capacity"`
	DesiredCapacity *int   `json:"desired_capacity"`
	MaxCapacity     *int   `json:"max_capacity"`
	VPC             string `json:"vpc"`
}

// Create validates and stores a new group.
func (s *Service) Create(ctx context.Context, in GroupInput) (*models.AutoScalingGroup, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	group := &models.AutoScalingGroup{
		ID:              uuid.New().String(),
		Name:            strings.TrimSpace(in.Name),
		Type:            in.Type,
		Flavour:         in.Flavour,
		MinCapacity:     *in.MinCapacity,
		DesiredCapacity: *in.DesiredCapacity,
		MaxCapacity:     *in.MaxCapacity,
		Status:          "active",
		VPC:             in.VPC,
	}

	if err := s.groups.Create(ctx, group); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"group_id": group.ID,
		"name":     group.Name,
		"min":      group.MinCapacity,
		"desired":  group.DesiredCapacity,
		"max":      group.MaxCapacity,
	}).Info("Auto-scaling group created")
	return group, nil
}

// Get returns one group by id.
func (s *Service) Get(ctx context.Context, id string) (*models.AutoScalingGroup, error) {
	return s.groups.GetByID(ctx, id)
}

// List returns all groups.
func (s *Service) List(ctx context.Context) ([]*models.AutoScalingGroup, error) {
	return s.groups.GetAll(ctx)
}

// Update edits a stored group, re-validating the capacity invariant.
func (s *Service) Update(ctx context.Context, id string, in GroupInput) (*models.AutoScalingGroup, error) {
	group, err := s.groups.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	group.Name = strings.TrimSpace(in.Name)
	group.Type = in.Type
	group.Flavour = in.Flavour
	group.MinCapacity = *in.MinCapacity
	group.DesiredCapacity = *in.DesiredCapacity
	group.MaxCapacity = *in.MaxCapacity
	group.VPC = in.VPC

	if err := s.groups.Update(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// Delete removes a group.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.groups.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.WithField("group_id", id).Info("Auto-scaling group deleted")
	return nil
}

// SetDesiredCapacity adjusts the desired capacity within the group's bounds.
func (s *Service) SetDesiredCapacity(ctx context.Context, id string, desired int) (*models.AutoScalingGroup, error) {
	group, err := s.groups.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if desired < group.MinCapacity || desired > group.MaxCapacity {
		return nil, apperrors.WithDetails(apperrors.ErrConflict,
			fmt.Sprintf("desired capacity %d outside bounds [%d, %d]",
				desired, group.MinCapacity, group.MaxCapacity))
	}

	group.DesiredCapacity = desired
	if err := s.groups.Update(ctx, group); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"group_id": id, "desired": desired}).Info("Desired capacity updated")
	return group, nil
}

// Recommendation is the outcome of a scaling-policy check.
type Recommendation struct {
	CurrentCapacity     int     `json:"current_capacity"`
	RecommendedCapacity int     `json:"recommended_capacity"`
	MetricAverage       float64 `json:"metric_average"`
	Target              float64 `json:"target"`
}

// EvaluatePolicy recommends a capacity so that the observed metric average
// moves toward the target, clamped to the group's bounds. A target of zero
// is rejected.
func (s *Service) EvaluatePolicy(ctx context.Context, id string, metricAverage, target float64) (*Recommendation, error) {
	if target <= 0 {
		return nil, apperrors.WithDetails(apperrors.ErrBadRequest, "target must be positive")
	}

	group, err := s.groups.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Proportional scaling: capacity * observed/target, rounded up.
	raw := float64(group.DesiredCapacity) * metricAverage / target
	recommended := int(raw)
	if raw > float64(recommended) {
		recommended++
	}
	if recommended < group.MinCapacity {
		recommended = group.MinCapacity
	}
	if recommended > group.MaxCapacity {
		recommended = group.MaxCapacity
	}

	return &Recommendation{
		CurrentCapacity:     group.DesiredCapacity,
		RecommendedCapacity: recommended,
		MetricAverage:       metricAverage,
		Target:              target,
	}, nil
}

func validateInput(in GroupInput) error {
	v := apperrors.NewValidation()
	if strings.TrimSpace(in.Name) == "" {
		v.Add("name", "name is required")
	}
	if in.MinCapacity == nil || in.DesiredCapacity == nil || in.MaxCapacity == nil {
		v.Add("capacity", "min, desired and max capacity are required")
		return v
	}
	if *in.MinCapacity < 0 {
		v.Add("min_capacity", "min capacity cannot be negative")
	}
	if *in.MinCapacity > *in.DesiredCapacity || *in.DesiredCapacity > *in.MaxCapacity {
		v.Add("capacity", fmt.Sprintf("capacities must satisfy min <= desired <= max, got %d/%d/%d",
			*in.MinCapacity, *in.DesiredCapacity, *in.MaxCapacity))
	}
	if v.HasErrors() {
		return v
	}
	return nil
}
