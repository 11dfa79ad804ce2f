package appbuilder

import (
	"encoding/json"
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/repository"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/entitlements"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.PwaApp{}))
	return NewService(repository.NewAppRepository(db)), db
}

func builderOn() models.SettingsSnapshot {
	return models.SettingsSnapshot{AppBuilderEnabled: true}
}

func sampleApp() *models.PwaApp {
	return &models.PwaApp{
		Name:            "Blue Bottle Cafe",
		ShortName:       "BlueBottle",
		Description:     "Coffee in Midtown",
		ThemeColor:      "#112233",
		BackgroundColor: "#ffffff",
		Display:         models.DisplayStandalone,
	}
}

func TestCreateApp(t *testing.T) {
	svc, _ := newTestService(t)

	app := sampleApp()
	require.NoError(t, svc.CreateApp(builderOn(), 4, app))
	assert.Len(t, app.AppUUID, 36)
	assert.Equal(t, models.AppStatusDraft, app.AppStatus)
	assert.Equal(t, 1, app.CacheVersion)
	assert.Equal(t, uint(4), app.UserID)

	err := svc.CreateApp(models.SettingsSnapshot{}, 4, sampleApp())
	assert.ErrorIs(t, err, ErrFeatureDisabled)
}

func TestUpdateAppBumpsCacheVersion(t *testing.T) {
	svc, _ := newTestService(t)

	app := sampleApp()
	require.NoError(t, svc.CreateApp(builderOn(), 4, app))

	app.Name = "Blue Bottle Cafe & Roastery"
	require.NoError(t, svc.UpdateApp(builderOn(), 4, app))
	assert.Equal(t, 2, app.CacheVersion)

	// Non-owners cannot update.
	assert.ErrorIs(t, svc.UpdateApp(builderOn(), 99, app), ErrNotOwner)
}

func TestPublishLifecycle(t *testing.T) {
	svc, db := newTestService(t)

	app := sampleApp()
	require.NoError(t, svc.CreateApp(builderOn(), 4, app))

	// Drafts are not publicly servable.
	_, err := svc.GetPublished(app.AppUUID)
	assert.ErrorIs(t, err, ErrNotPublished)

	assert.ErrorIs(t, svc.Publish(builderOn(), 99, app.ID), ErrNotOwner)
	require.NoError(t, svc.Publish(builderOn(), 4, app.ID))

	var stored models.PwaApp
	require.NoError(t, db.First(&stored, app.ID).Error)
	assert.Equal(t, models.AppStatusPublished, stored.AppStatus)
	assert.NotNil(t, stored.PublishedAt)
	assert.Equal(t, 2, stored.CacheVersion)

	published, err := svc.GetPublished(app.AppUUID)
	require.NoError(t, err)
	assert.Equal(t, app.ID, published.ID)

	// Publishing again is a no-op.
	require.NoError(t, svc.Publish(builderOn(), 4, app.ID))
	require.NoError(t, db.First(&stored, app.ID).Error)
	assert.Equal(t, 2, stored.CacheVersion)

	require.NoError(t, svc.Unpublish(4, app.ID))
	_, err = svc.GetPublished(app.AppUUID)
	assert.ErrorIs(t, err, ErrNotPublished)
}

func TestBuildManifest(t *testing.T) {
	app := sampleApp()
	app.AppUUID = "0d9f2a34-1111-2222-3333-444455556666"
	app.StartURL = "/"
	app.Icons = []models.AppIcon{
		{Path: "/a/0d9f2a34-1111-2222-3333-444455556666/icons/icon-192.png", Sizes: "192x192", Type: "image/png", Purpose: "any"},
	}

	data, err := ManifestJSON(app)
	require.NoError(t, err)

	var m Manifest
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "Blue Bottle Cafe", m.Name)
	assert.Equal(t, "/a/0d9f2a34-1111-2222-3333-444455556666/", m.Scope)
	// A bare start URL is rewritten into the app scope.
	assert.Equal(t, m.Scope, m.StartURL)
	assert.Equal(t, "#112233", m.ThemeColor)
	require.Len(t, m.Icons, 1)
	assert.Equal(t, "192x192", m.Icons[0].Sizes)
}

func TestBuildServiceWorker(t *testing.T) {
	app := sampleApp()
	app.AppUUID = "0d9f2a34-1111-2222-3333-444455556666"
	app.CacheVersion = 3
	app.Icons = []models.AppIcon{
		{Path: "/a/0d9f2a34-1111-2222-3333-444455556666/icons/icon-192.png", Sizes: "192x192", Type: "image/png"},
	}

	script := string(BuildServiceWorker(app, entitlements.FeatureSet{}))

	// The cache name embeds UUID and version so a publish invalidates old caches.
	assert.Contains(t, script, "aslp-0d9f2a34-1111-2222-3333-444455556666-v3")
	assert.Contains(t, script, "'/a/0d9f2a34-1111-2222-3333-444455556666/manifest.json'")
	assert.Contains(t, script, "'/a/0d9f2a34-1111-2222-3333-444455556666/icons/icon-192.png'")
	assert.True(t, strings.Contains(script, "addEventListener('install'"))
	assert.True(t, strings.Contains(script, "addEventListener('fetch'"))

	// Without the offline page feature the worker carries no fallback URL.
	assert.Contains(t, script, "const OFFLINE_URL = null;")
	assert.NotContains(t, script, "'/a/0d9f2a34-1111-2222-3333-444455556666/offline'")
}

func TestBuildServiceWorkerWithOfflinePage(t *testing.T) {
	app := sampleApp()
	app.AppUUID = "0d9f2a34-1111-2222-3333-444455556666"
	app.CacheVersion = 3

	features := entitlements.FeatureSet{entitlements.FeatureOfflinePage: struct{}{}}
	script := string(BuildServiceWorker(app, features))

	// The offline page is precached and wired as the navigation fallback.
	assert.Contains(t, script, "const OFFLINE_URL = '/a/0d9f2a34-1111-2222-3333-444455556666/offline';")
	assert.Contains(t, script, "'/a/0d9f2a34-1111-2222-3333-444455556666/offline'")
	assert.Contains(t, script, "caches.match(OFFLINE_URL)")
}

func TestGenerateIconVariantsWebPDisabled(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "source.png")
	img := imaging.New(64, 64, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	require.NoError(t, imaging.Save(img, source))

	app := sampleApp()
	app.AppUUID = "0d9f2a34-1111-2222-3333-444455556666"

	// With the admin toggle off only the PNG variants are produced.
	icons, err := GenerateIconVariants(models.SettingsSnapshot{}, app, source, filepath.Join(dir, "out"))
	require.NoError(t, err)
	require.Len(t, icons, 2)
	for _, icon := range icons {
		assert.Equal(t, "image/png", icon.Type)
	}
}

func TestBuildOfflinePage(t *testing.T) {
	app := sampleApp()
	app.Name = "Nick & Nora's"

	page := string(BuildOfflinePage(app))
	assert.Contains(t, page, "<title>Nick &amp; Nora&#39;s</title>")
	assert.Contains(t, page, `content="#112233"`)
	assert.Contains(t, page, "You are offline")
}
