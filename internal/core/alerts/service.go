package alerts

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	apperrors "github.com/cloudmesa/console-backend-go/pkg/errors"

	"github.com/cloudmesa/console-backend-go/internal/core/controls"
	"github.com/cloudmesa/console-backend-go/internal/core/metrics"
	"github.com/cloudmesa/console-backend-go/internal/database/models"
	"github.com/cloudmesa/console-backend-go/internal/database/repositories"
)

// Organization-wide notification switches. Both are one-way: once enabled
// they cannot be turned back off through the API.
const (
	NotificationsEnabledKey      = "alert_notifications_enabled"
	EmailNotificationsEnabledKey = "alert_email_notifications_enabled"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Service manages configured alerts and the triggered-alert history.
type Service struct {
	alerts    repositories.AlertRepository
	triggered repositories.TriggeredAlertRepository
	prefs     controls.Store
	logger    *logrus.Logger
}

// NewService creates an alert service.
func NewService(alerts repositories.AlertRepository, triggered repositories.TriggeredAlertRepository, prefs controls.Store, logger *logrus.Logger) *Service {
	return &Service{
		alerts:    alerts,
		triggered: triggered,
		prefs:     prefs,
		logger:    logger,
	}
}

// CreateInput carries the creation form fields.
type CreateInput struct {
	Name                string   `json:"name"`
	Description         string   `json:"description"`
	Service             string   `json:"service"`
	Metric              string   `json:"metric"`
	Condition           string   `json:"condition"`
	Threshold           *float64 `json:"threshold"`
	NotificationEnabled bool     `json:"notification_enabled"`
	NotificationEmails  []string `json:"notification_emails"`
}

// UpdateInput carries the edit form fields. Service and metric are immutable
// after creation and are absent here.
type UpdateInput struct {
	Name                string   `json:"name"`
	Description         string   `json:"description"`
	Condition           string   `json:"condition"`
	Threshold           *float64 `json:"threshold"`
	NotificationEnabled bool     `json:"notification_enabled"`
	NotificationEmails  []string `json:"notification_emails"`
}

// Create validates the input and stores a new alert in active status.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.ConfiguredAlert, error) {
	v := apperrors.NewValidation()

	if strings.TrimSpace(in.Name) == "" {
		v.Add("name", "name is required")
	}
	kind, err := metrics.ParseKind(in.Service)
	if err != nil {
		v.Add("service", "service must be one of: vm, lb")
	} else if !metrics.HasMetric(kind, in.Metric) {
		v.Add("metric", fmt.Sprintf("metric %q is not defined for service %q", in.Metric, in.Service))
	}
	if !ValidCondition(models.AlertCondition(in.Condition)) {
		v.Add("condition", "condition must be one of: less-than, greater-than, less-than-equal, greater-than-equal")
	}
	if in.Threshold == nil {
		v.Add("threshold", "a numeric threshold is required")
	}
	s.validateEmails(v, in.NotificationEnabled, in.NotificationEmails)

	if v.HasErrors() {
		return nil, v
	}

	alert := &models.ConfiguredAlert{
		ID:                  uuid.New().String(),
		Name:                strings.TrimSpace(in.Name),
		Description:         in.Description,
		Status:              models.AlertStatusActive,
		Service:             in.Service,
		Metric:              in.Metric,
		Condition:           models.AlertCondition(in.Condition),
		Threshold:           *in.Threshold,
		NotificationEnabled: in.NotificationEnabled,
		NotificationEmails:  dedupeEmails(in.NotificationEmails),
	}

	if err := s.alerts.Create(ctx, alert); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"alert_id": alert.ID,
		"name":     alert.Name,
		"service":  alert.Service,
		"metric":   alert.Metric,
	}).Info("Alert created")
	return alert, nil
}

// Update edits a stored alert. Service and metric cannot change.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*models.ConfiguredAlert, error) {
	alert, err := s.alerts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	v := apperrors.NewValidation()
	if strings.TrimSpace(in.Name) == "" {
		v.Add("name", "name is required")
	}
	if !ValidCondition(models.AlertCondition(in.Condition)) {
		v.Add("condition", "condition must be one of: less-than, greater-than, less-than-equal, greater-than-equal")
	}
	if in.Threshold == nil {
		v.Add("threshold", "a numeric threshold is required")
	}
	s.validateEmails(v, in.NotificationEnabled, in.NotificationEmails)
	if v.HasErrors() {
		return nil, v
	}

	alert.Name = strings.TrimSpace(in.Name)
	alert.Description = in.Description
	alert.Condition = models.AlertCondition(in.Condition)
	alert.Threshold = *in.Threshold
	alert.NotificationEnabled = in.NotificationEnabled
	alert.NotificationEmails = dedupeEmails(in.NotificationEmails)

	if err := s.alerts.Update(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

// Get returns one alert by id.
func (s *Service) Get(ctx context.Context, id string) (*models.ConfiguredAlert, error) {
	return s.alerts.GetByID(ctx, id)
}

// List returns all configured alerts.
func (s *Service) List(ctx context.Context) ([]*models.ConfiguredAlert, error) {
	return s.alerts.GetAll(ctx)
}

// Toggle flips an alert between active and paused. Round-tripping leaves
// every other field untouched.
func (s *Service) Toggle(ctx context.Context, id string) (*models.ConfiguredAlert, error) {
	alert, err := s.alerts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch alert.Status {
	case models.AlertStatusActive:
		alert.Status = models.AlertStatusPaused
	case models.AlertStatusPaused:
		alert.Status = models.AlertStatusActive
	default:
		return nil, apperrors.WithDetails(apperrors.ErrConflict,
			fmt.Sprintf("alert in status %q cannot be paused or resumed", alert.Status))
	}

	if err := s.alerts.Update(ctx, alert); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"alert_id": id, "status": alert.Status}).Info("Alert status toggled")
	return alert, nil
}

// Delete removes an alert permanently, along with its history (cascade).
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.alerts.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.WithField("alert_id", id).Info("Alert deleted")
	return nil
}

// History returns the triggered records for an alert within the trailing day
// window. Unknown alert ids yield an empty list.
func (s *Service) History(ctx context.Context, alertID string, days int) ([]*models.TriggeredAlert, error) {
	if days <= 0 {
		return nil, apperrors.WithDetails(apperrors.ErrBadRequest, "days must be positive")
	}
	since := time.Now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
	records, err := s.triggered.GetByAlertID(ctx, alertID, since)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []*models.TriggeredAlert{}
	}
	return records, nil
}

// NotificationSettings reports the organization-wide switches.
type NotificationSettings struct {
	NotificationsEnabled      bool `json:"notifications_enabled"`
	EmailNotificationsEnabled bool `json:"email_notifications_enabled"`
}

// GetNotificationSettings reads the current switch state.
func (s *Service) GetNotificationSettings() (NotificationSettings, error) {
	var settings NotificationSettings
	if v, ok, err := s.prefs.Get(NotificationsEnabledKey); err != nil {
		return settings, err
	} else if ok && v == "true" {
		settings.NotificationsEnabled = true
	}
	if v, ok, err := s.prefs.Get(EmailNotificationsEnabledKey); err != nil {
		return settings, err
	} else if ok && v == "true" {
		settings.EmailNotificationsEnabled = true
	}
	return settings, nil
}

// EnableEmailNotifications turns on the organization-wide email channel.
// Enabling provisions the backing notification topic, so it requires an
// explicit acknowledgement and cannot be undone.
func (s *Service) EnableEmailNotifications(acknowledged bool) error {
	if !acknowledged {
		return apperrors.WithDetails(apperrors.ErrBadRequest,
			"enabling email notifications requires acknowledging notification topic provisioning")
	}
	if err := s.prefs.Set(NotificationsEnabledKey, "true"); err != nil {
		return err
	}
	if err := s.prefs.Set(EmailNotificationsEnabledKey, "true"); err != nil {
		return err
	}
	s.logger.Info("Organization-wide email notifications enabled")
	return nil
}

func (s *Service) validateEmails(v *apperrors.ValidationError, enabled bool, emails []string) {
	if !enabled {
		return
	}
	if len(emails) == 0 {
		v.Add("notification_emails", "at least one notification email is required when notifications are enabled")
		return
	}
	seen := make(map[string]bool)
	for _, email := range emails {
		e := strings.ToLower(strings.TrimSpace(email))
		if !emailPattern.MatchString(e) {
			v.Add("notification_emails", fmt.Sprintf("invalid email address: %s", email))
			return
		}
		if seen[e] {
			v.Add("notification_emails", fmt.Sprintf("duplicate email address: %s", email))
			return
		}
		seen[e] = true
	}
}

func dedupeEmails(emails []string) models.StringList {
	out := make(models.StringList, 0, len(emails))
	seen := make(map[string]bool)
	for _, email := range emails {
		e := strings.ToLower(strings.TrimSpace(email))
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}
