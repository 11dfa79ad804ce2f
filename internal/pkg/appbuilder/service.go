package appbuilder

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/repository"
)

var (
	// ErrFeatureDisabled is returned when the app builder is globally off.
	ErrFeatureDisabled = errors.New("app builder is disabled")
	// ErrNotPublished is returned when serving an app that is not published.
	ErrNotPublished = errors.New("app is not published")
	// ErrNotOwner is returned when a user mutates an app they do not own.
	ErrNotOwner = errors.New("app does not belong to this user")
)

// Service manages the lifecycle of PWA micro-site apps: create, update,
// publish and serve the generated manifest and worker.
type Service struct {
	repo repository.AppRepository
}

// NewService creates an app builder service.
func NewService(repo repository.AppRepository) *Service {
	return &Service{repo: repo}
}

// CreateApp registers a new draft app with a fresh UUID.
func (s *Service) CreateApp(settings models.SettingsSnapshot, userID uint, app *models.PwaApp) error {
	if !settings.AppBuilderEnabled {
		return ErrFeatureDisabled
	}

	app.AppUUID = uuid.New().String()
	app.UserID = userID
	app.AppStatus = models.AppStatusDraft
	app.CacheVersion = 1
	if app.Display == "" {
		app.Display = models.DisplayStandalone
	}
	if app.StartURL == "" {
		app.StartURL = "/"
	}

	if err := app.Validate(); err != nil {
		return fmt.Errorf("app validation failed: %w", err)
	}
	if err := s.repo.Create(app); err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}

	log.Infof("created app %s for user %d", app.AppUUID, userID)
	return nil
}

// UpdateApp stores configuration changes and bumps the cache version so
// installed clients refetch stale assets on next publish.
func (s *Service) UpdateApp(settings models.SettingsSnapshot, userID uint, app *models.PwaApp) error {
	if !settings.AppBuilderEnabled {
		return ErrFeatureDisabled
	}

	current, err := s.repo.GetByID(app.ID)
	if err != nil {
		return fmt.Errorf("failed to load app %d: %w", app.ID, err)
	}
	if current.UserID != userID {
		return ErrNotOwner
	}

	// Identity and counters are not caller-writable.
	app.AppUUID = current.AppUUID
	app.UserID = current.UserID
	app.AppStatus = current.AppStatus
	app.PublishedAt = current.PublishedAt
	app.ViewCount = current.ViewCount
	app.ClickCount = current.ClickCount
	app.CacheVersion = current.CacheVersion + 1

	if err := app.Validate(); err != nil {
		return fmt.Errorf("app validation failed: %w", err)
	}
	return s.repo.Update(app)
}

// Publish makes the app publicly servable under /a/{uuid}/.
func (s *Service) Publish(settings models.SettingsSnapshot, userID, appID uint) error {
	if !settings.AppBuilderEnabled {
		return ErrFeatureDisabled
	}

	app, err := s.repo.GetByID(appID)
	if err != nil {
		return fmt.Errorf("failed to load app %d: %w", appID, err)
	}
	if app.UserID != userID {
		return ErrNotOwner
	}
	if app.IsPublished() {
		return nil
	}

	now := time.Now()
	app.AppStatus = models.AppStatusPublished
	app.PublishedAt = &now
	app.CacheVersion++
	if err := s.repo.Update(app); err != nil {
		return fmt.Errorf("failed to publish app %d: %w", appID, err)
	}

	log.Infof("published app %s", app.AppUUID)
	return nil
}

// Unpublish takes the app back to draft. Already-installed clients keep
// their cached copy; the public endpoints stop serving.
func (s *Service) Unpublish(userID, appID uint) error {
	app, err := s.repo.GetByID(appID)
	if err != nil {
		return fmt.Errorf("failed to load app %d: %w", appID, err)
	}
	if app.UserID != userID {
		return ErrNotOwner
	}
	if !app.IsPublished() {
		return nil
	}
	app.AppStatus = models.AppStatusDraft
	return s.repo.Update(app)
}

// GetPublished loads an app by UUID for the public manifest and worker
// endpoints, refusing drafts.
func (s *Service) GetPublished(appUUID string) (*models.PwaApp, error) {
	app, err := s.repo.GetByUUID(appUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load app %s: %w", appUUID, err)
	}
	if !app.IsPublished() {
		return nil, ErrNotPublished
	}
	return app, nil
}
