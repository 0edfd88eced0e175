package database

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/cloudmesa/console-backend-go/internal/database/repositories"
	"github.com/cloudmesa/console-backend-go/internal/database/sqlite"
)

// Repositories holds all repository instances.
type Repositories struct {
	Alert       repositories.AlertRepository
	Triggered   repositories.TriggeredAlertRepository
	AutoScaling repositories.AutoScalingRepository
	Preference  repositories.PreferenceRepository
}

// NewRepositories creates all repository instances.
func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		Alert:       sqlite.NewAlertRepository(db),
		Triggered:   sqlite.NewTriggeredAlertRepository(db),
		AutoScaling: sqlite.NewAutoScalingRepository(db),
		Preference:  sqlite.NewPreferenceRepository(db),
	}
}

// PreferenceStore adapts the preference repository to the controls
// persistence port, which carries no context.
type PreferenceStore struct {
	repo repositories.PreferenceRepository
}

// NewPreferenceStore wraps a preference repository.
func NewPreferenceStore(repo repositories.PreferenceRepository) *PreferenceStore {
	return &PreferenceStore{repo: repo}
}

func (s *PreferenceStore) Get(key string) (string, bool, error) {
	return s.repo.Get(context.Background(), key)
}

func (s *PreferenceStore) Set(key, value string) error {
	return s.repo.Set(context.Background(), key, value)
}

func (s *PreferenceStore) Delete(key string) error {
	return s.repo.Delete(context.Background(), key)
}
