package analytics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/repository"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.AnalyticsView{}, &models.AnalyticsClick{}))
	return NewService(repository.NewAnalyticsRepository(db)), db
}

func analyticsOn() models.SettingsSnapshot {
	return models.SettingsSnapshot{AnalyticsEnabled: true}
}

func TestParsePeriod(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		period  string
		want    time.Time
		nilFrom bool
		wantErr bool
	}{
		{"daily", now.AddDate(0, 0, -1), false, false},
		{"weekly", now.AddDate(0, 0, -7), false, false},
		{"monthly", now.AddDate(0, -1, 0), false, false},
		{"yearly", now.AddDate(-1, 0, 0), false, false},
		{"total", time.Time{}, true, false},
		{"", time.Time{}, true, false},
		{"fortnightly", time.Time{}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			from, err := ParsePeriod(tt.period, now)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPeriod)
				return
			}
			require.NoError(t, err)
			if tt.nilFrom {
				assert.Nil(t, from)
			} else {
				require.NotNil(t, from)
				assert.Equal(t, tt.want, *from)
			}
		})
	}
}

func TestTrackView(t *testing.T) {
	svc, db := newTestService(t)

	require.NoError(t, svc.TrackView(analyticsOn(), 1, models.ItemTypeListing, "203.0.113.9", 0))
	require.NoError(t, svc.TrackView(analyticsOn(), 1, models.ItemTypeListing, "203.0.113.9", 7))

	var count int64
	require.NoError(t, db.Model(&models.AnalyticsView{}).Where("item_id = ? AND item_type = ?", 1, models.ItemTypeListing).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestTrackViewDisabled(t *testing.T) {
	svc, db := newTestService(t)

	err := svc.TrackView(models.SettingsSnapshot{}, 1, models.ItemTypeListing, "", 0)
	assert.ErrorIs(t, err, ErrFeatureDisabled)

	var count int64
	require.NoError(t, db.Model(&models.AnalyticsView{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestTrackViewInvalidItemType(t *testing.T) {
	svc, _ := newTestService(t)
	assert.ErrorIs(t, svc.TrackView(analyticsOn(), 1, "widget", "", 0), ErrInvalidItemType)
}

func TestTrackClick(t *testing.T) {
	svc, db := newTestService(t)

	require.NoError(t, svc.TrackClick(analyticsOn(), 2, models.ItemTypeListing, models.ClickTargetPhone, "", 0))
	assert.ErrorIs(t, svc.TrackClick(analyticsOn(), 2, models.ItemTypeListing, "megaphone", "", 0), ErrInvalidClickTarget)

	var clicks []models.AnalyticsClick
	require.NoError(t, db.Find(&clicks).Error)
	require.Len(t, clicks, 1)
	assert.Equal(t, models.ClickTargetPhone, clicks[0].ClickTarget)
}

func TestGetStats(t *testing.T) {
	svc, db := newTestService(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.TrackView(analyticsOn(), 5, models.ItemTypeListing, "", 0))
	}
	require.NoError(t, svc.TrackClick(analyticsOn(), 5, models.ItemTypeListing, models.ClickTargetPhone, "", 0))
	require.NoError(t, svc.TrackClick(analyticsOn(), 5, models.ItemTypeListing, models.ClickTargetPhone, "", 0))
	require.NoError(t, svc.TrackClick(analyticsOn(), 5, models.ItemTypeListing, models.ClickTargetWebsite, "", 0))

	// Events for another item never leak into the report.
	require.NoError(t, svc.TrackView(analyticsOn(), 6, models.ItemTypeListing, "", 0))
	require.NoError(t, svc.TrackView(analyticsOn(), 5, models.ItemTypeApp, "", 0))

	stats, err := svc.GetStats(5, models.ItemTypeListing, "total")
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Views)
	assert.Equal(t, int64(3), stats.Clicks)

	byTarget := map[string]int64{}
	for _, ts := range stats.ClickTargets {
		byTarget[ts.Target] = ts.Count
	}
	assert.Equal(t, int64(2), byTarget[models.ClickTargetPhone])
	assert.Equal(t, int64(1), byTarget[models.ClickTargetWebsite])

	// An old event falls out of the daily window.
	old := time.Now().AddDate(0, 0, -3)
	var view models.AnalyticsView
	require.NoError(t, db.Where("item_id = ? AND item_type = ?", 5, models.ItemTypeListing).First(&view).Error)
	require.NoError(t, db.Model(&models.AnalyticsView{}).Where("id = ?", view.ID).Update("created_at", old).Error)

	daily, err := svc.GetStats(5, models.ItemTypeListing, "daily")
	require.NoError(t, err)
	assert.Equal(t, int64(2), daily.Views)

	_, err = svc.GetStats(5, models.ItemTypeListing, "quarterly")
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

// memStatsCache is an in-memory stand-in for the Redis stats cache.
type memStatsCache struct {
	entries map[string]string
	ttls    map[string]time.Duration
}

func newMemStatsCache() *memStatsCache {
	return &memStatsCache{entries: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memStatsCache) Get(key string) (string, error) {
	v, ok := m.entries[key]
	if !ok {
		return "", errors.New("cache miss")
	}
	return v, nil
}

func (m *memStatsCache) Set(key string, value interface{}, ttl time.Duration) error {
	m.entries[key] = string(value.([]byte))
	m.ttls[key] = ttl
	return nil
}

func TestGetStatsServedFromCache(t *testing.T) {
	svc, db := newTestService(t)
	mem := newMemStatsCache()
	svc = svc.WithStatsCache(mem, 30*time.Second)

	require.NoError(t, svc.TrackView(analyticsOn(), 5, models.ItemTypeListing, "", 0))
	require.NoError(t, svc.TrackClick(analyticsOn(), 5, models.ItemTypeListing, models.ClickTargetPhone, "", 0))

	first, err := svc.GetStats(5, models.ItemTypeListing, "total")
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Views)
	require.Len(t, mem.entries, 1)
	assert.Equal(t, 30*time.Second, mem.ttls["analytics:stats:listing:5:total"])

	// Within the TTL the report is served from cache, not the tables.
	require.NoError(t, db.Where("1 = 1").Delete(&models.AnalyticsView{}).Error)
	require.NoError(t, db.Where("1 = 1").Delete(&models.AnalyticsClick{}).Error)

	cached, err := svc.GetStats(5, models.ItemTypeListing, "total")
	require.NoError(t, err)
	assert.Equal(t, int64(1), cached.Views)
	assert.Equal(t, int64(1), cached.Clicks)

	// A different period is its own cache entry and aggregates fresh.
	daily, err := svc.GetStats(5, models.ItemTypeListing, "daily")
	require.NoError(t, err)
	assert.Equal(t, int64(0), daily.Views)
}

func TestGetDailyViews(t *testing.T) {
	svc, _ := newTestService(t)

	require.NoError(t, svc.TrackView(analyticsOn(), 9, models.ItemTypeApp, "", 0))
	require.NoError(t, svc.TrackView(analyticsOn(), 9, models.ItemTypeApp, "", 0))

	days, err := svc.GetDailyViews(9, models.ItemTypeApp, 7)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, 2, days[0].Count)
}
