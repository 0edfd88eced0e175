package database

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/cloudmesa/console-backend-go/internal/database/models"
)

// seedFile is the YAML shape of the bundled seed dataset.
type seedFile struct {
	Alerts []struct {
		Name                string   `yaml:"name"`
		Description         string   `yaml:"description"`
		Status              string   `yaml:"status"`
		Service             string   `yaml:"service"`
		Metric              string   `yaml:"metric"`
		Condition           string   `yaml:"condition"`
		Threshold           float64  `yaml:"threshold"`
		NotificationEnabled bool     `yaml:"notification_enabled"`
		NotificationEmails  []string `yaml:"notification_emails"`
	} `yaml:"alerts"`

	Triggered []struct {
		AlertName       string  `yaml:"alert_name"`
		HoursAgo        int     `yaml:"hours_ago"`
		ResourceName    string  `yaml:"resource_name"`
		AverageValue    float64 `yaml:"average_value"`
		PeakValue       float64 `yaml:"peak_value"`
		DurationMinutes int     `yaml:"duration_minutes"`
	} `yaml:"triggered"`

	AutoScalingGroups []struct {
		Name            string `yaml:"name"`
		Type            string `yaml:"type"`
		Flavour         string `yaml:"flavour"`
		MinCapacity     int    `yaml:"min_capacity"`
		DesiredCapacity int    `yaml:"desired_capacity"`
		MaxCapacity     int    `yaml:"max_capacity"`
		Status          string `yaml:"status"`
		VPC             string `yaml:"vpc"`
	} `yaml:"autoscaling_groups"`
}

// Seed loads the bundled dataset into empty tables. Existing data is never
// touched; a missing seed file is not an error.
func Seed(ctx context.Context, repos *Repositories, path string, logger *logrus.Logger) error {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.WithField("path", path).Debug("No seed file, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading seed file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("parsing seed file: %w", err)
	}

	existing, err := repos.Alert.GetAll(ctx)
	if err != nil {
		return err
	}

	alertIDs := make(map[string]string)
	if len(existing) == 0 {
		for _, a := range seed.Alerts {
			alert := &models.ConfiguredAlert{
				ID:                  uuid.New().String(),
				Name:                a.Name,
				Description:         a.Description,
				Status:              models.AlertStatus(a.Status),
				Service:             a.Service,
				Metric:              a.Metric,
				Condition:           models.AlertCondition(a.Condition),
				Threshold:           a.Threshold,
				NotificationEnabled: a.NotificationEnabled,
				NotificationEmails:  a.NotificationEmails,
			}
			if err := repos.Alert.Create(ctx, alert); err != nil {
				return fmt.Errorf("seeding alert %q: %w", a.Name, err)
			}
			alertIDs[a.Name] = alert.ID
		}

		for _, t := range seed.Triggered {
			alertID, ok := alertIDs[t.AlertName]
			if !ok {
				logger.WithField("alert_name", t.AlertName).Warn("Seed triggered record references unknown alert, skipping")
				continue
			}
			var cond models.AlertCondition
			var threshold float64
			var metric, service string
			for _, a := range seed.Alerts {
				if a.Name == t.AlertName {
					cond = models.AlertCondition(a.Condition)
					threshold = a.Threshold
					metric = a.Metric
					service = a.Service
				}
			}
			record := &models.TriggeredAlert{
				ID:              uuid.New().String(),
				AlertID:         alertID,
				AlertName:       t.AlertName,
				TriggeredAt:     time.Now().UTC().Add(-time.Duration(t.HoursAgo) * time.Hour),
				ResourceName:    t.ResourceName,
				Service:         service,
				Condition:       cond,
				Threshold:       threshold,
				Metric:          metric,
				AverageValue:    t.AverageValue,
				PeakValue:       t.PeakValue,
				DurationMinutes: t.DurationMinutes,
			}
			if err := repos.Triggered.Insert(ctx, record); err != nil {
				return fmt.Errorf("seeding triggered alert for %q: %w", t.AlertName, err)
			}
		}
		logger.WithFields(logrus.Fields{
			"alerts":    len(seed.Alerts),
			"triggered": len(seed.Triggered),
		}).Info("Seeded alert dataset")
	}

	groups, err := repos.AutoScaling.GetAll(ctx)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		for _, g := range seed.AutoScalingGroups {
			group := &models.AutoScalingGroup{
				ID:              uuid.New().String(),
				Name:            g.Name,
				Type:            g.Type,
				Flavour:         g.Flavour,
				MinCapacity:     g.MinCapacity,
				DesiredCapacity: g.DesiredCapacity,
				MaxCapacity:     g.MaxCapacity,
				Status:          g.Status,
				VPC:             g.VPC,
			}
			if err := repos.AutoScaling.Create(ctx, group); err != nil {
				return fmt.Errorf("seeding autoscaling group %q: %w", g.Name, err)
			}
		}
		if len(seed.AutoScalingGroups) > 0 {
			logger.WithField("groups", len(seed.AutoScalingGroups)).Info("Seeded auto-scaling groups")
		}
	}

	return nil
}
