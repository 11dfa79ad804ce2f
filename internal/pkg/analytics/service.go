package analytics

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/repository"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/cache"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/metrics/counter"
)

var (
	// ErrFeatureDisabled is returned when analytics tracking is globally off.
	ErrFeatureDisabled = errors.New("analytics is disabled")
	// ErrInvalidPeriod is returned for unknown period keywords.
	ErrInvalidPeriod = errors.New("invalid period")
	// ErrInvalidItemType is returned for item types other than listing or app.
	ErrInvalidItemType = errors.New("invalid item type")
	// ErrInvalidClickTarget is returned for unknown click targets.
	ErrInvalidClickTarget = errors.New("invalid click target")
)

// Period is a named reporting window ending now.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
	PeriodTotal   Period = "total"
)

var validClickTargets = map[string]struct{}{
	models.ClickTargetPhone:   {},
	models.ClickTargetWebsite: {},
	models.ClickTargetEmail:   {},
	models.ClickTargetAddress: {},
	models.ClickTargetProduct: {},
}

// ParsePeriod maps a period keyword to its start time. Total returns a nil
// start, meaning no lower bound.
func ParsePeriod(p string, now time.Time) (*time.Time, error) {
	var from time.Time
	switch Period(p) {
	case PeriodDaily:
		from = now.AddDate(0, 0, -1)
	case PeriodWeekly:
		from = now.AddDate(0, 0, -7)
	case PeriodMonthly:
		from = now.AddDate(0, -1, 0)
	case PeriodYearly:
		from = now.AddDate(-1, 0, 0)
	case PeriodTotal, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, p)
	}
	return &from, nil
}

// statsCache caches rendered stat reports for a short TTL.
type statsCache interface {
	Get(key string) (string, error)
	Set(key string, value interface{}, ttl time.Duration) error
}

// redisStatsCache backs the stats cache with the shared Redis client.
type redisStatsCache struct{}

func (redisStatsCache) Get(key string) (string, error) { return cache.Get(key) }
func (redisStatsCache) Set(key string, value interface{}, ttl time.Duration) error {
	return cache.Set(key, value, ttl)
}

// statsCacheTTL bounds how stale a dashboard report may be.
const statsCacheTTL = time.Minute

// Service records view and click events and answers aggregate queries.
// Events land in two places: an append-only event row for reporting and a
// Redis counter that a periodic flush folds into the item's denormalized
// counts.
type Service struct {
	repo     repository.AnalyticsRepository
	stats    statsCache
	statsTTL time.Duration
}

// NewService creates an analytics service without a stats cache; every
// GetStats call aggregates fresh.
func NewService(repo repository.AnalyticsRepository) *Service {
	return &Service{repo: repo}
}

// WithStatsCache serves GetStats reports from the given cache with the given
// TTL instead of re-aggregating on every request.
func (s *Service) WithStatsCache(c statsCache, ttl time.Duration) *Service {
	s.stats = c
	s.statsTTL = ttl
	return s
}

// WithRedisStatsCache caches GetStats reports in the shared Redis for a
// short TTL.
func (s *Service) WithRedisStatsCache() *Service {
	return s.WithStatsCache(redisStatsCache{}, statsCacheTTL)
}

func validItemType(itemType string) bool {
	return itemType == models.ItemTypeListing || itemType == models.ItemTypeApp
}

// TrackView records one view event. Tracking failures on the Redis side are
// logged but never fail the request.
func (s *Service) TrackView(settings models.SettingsSnapshot, itemID uint, itemType string, ip string, userID uint) error {
	if !settings.AnalyticsEnabled {
		return ErrFeatureDisabled
	}
	if !validItemType(itemType) {
		return ErrInvalidItemType
	}

	view := &models.AnalyticsView{
		ItemID:   itemID,
		ItemType: itemType,
		IP:       ip,
		UserID:   userID,
	}
	if err := s.repo.CreateView(view); err != nil {
		return fmt.Errorf("failed to record view: %w", err)
	}

	var err error
	if itemType == models.ItemTypeListing {
		err = counter.AddListingView(itemID)
	} else {
		err = counter.AddAppView(itemID)
	}
	if err != nil {
		log.Warnf("failed to increment view counter for %s %d: %v", itemType, itemID, err)
	}
	return nil
}

// TrackClick records one click event with its target.
func (s *Service) TrackClick(settings models.SettingsSnapshot, itemID uint, itemType, clickTarget, ip string, userID uint) error {
	if !settings.AnalyticsEnabled {
		return ErrFeatureDisabled
	}
	if !validItemType(itemType) {
		return ErrInvalidItemType
	}
	if _, ok := validClickTargets[clickTarget]; !ok {
		return ErrInvalidClickTarget
	}

	click := &models.AnalyticsClick{
		ItemID:      itemID,
		ItemType:    itemType,
		ClickTarget: clickTarget,
		IP:          ip,
		UserID:      userID,
	}
	if err := s.repo.CreateClick(click); err != nil {
		return fmt.Errorf("failed to record click: %w", err)
	}

	var err error
	if itemType == models.ItemTypeListing {
		err = counter.AddListingClick(itemID)
	} else {
		err = counter.AddAppClick(itemID)
	}
	if err != nil {
		log.Warnf("failed to increment click counter for %s %d: %v", itemType, itemID, err)
	}
	return nil
}

// ItemStats is the aggregate report for one item over one period.
type ItemStats struct {
	ItemID       uint                 `json:"item_id"`
	ItemType     string               `json:"item_type"`
	Period       string               `json:"period"`
	Views        int64                `json:"views"`
	Clicks       int64                `json:"clicks"`
	ClickTargets []models.TargetStats `json:"click_targets"`
}

// GetStats aggregates views, clicks and click-target breakdown for one item.
// With a stats cache configured, repeated reports within the TTL are served
// from cache; a cache failure falls through to fresh aggregation.
func (s *Service) GetStats(itemID uint, itemType, period string) (*ItemStats, error) {
	if !validItemType(itemType) {
		return nil, ErrInvalidItemType
	}
	from, err := ParsePeriod(period, time.Now())
	if err != nil {
		return nil, err
	}
	if period == "" {
		period = string(PeriodTotal)
	}

	key := fmt.Sprintf("analytics:stats:%s:%d:%s", itemType, itemID, period)
	if s.stats != nil {
		if raw, err := s.stats.Get(key); err == nil {
			var cached ItemStats
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	views, err := s.repo.CountViews(itemID, itemType, from, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count views: %w", err)
	}
	clicks, err := s.repo.CountClicks(itemID, itemType, from, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count clicks: %w", err)
	}
	targets, err := s.repo.ClickTargets(itemID, itemType, from, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate click targets: %w", err)
	}

	stats := &ItemStats{
		ItemID:       itemID,
		ItemType:     itemType,
		Period:       period,
		Views:        views,
		Clicks:       clicks,
		ClickTargets: targets,
	}

	if s.stats != nil {
		if data, err := json.Marshal(stats); err == nil {
			if err := s.stats.Set(key, data, s.statsTTL); err != nil {
				log.Warnf("failed to cache stats for %s %d: %v", itemType, itemID, err)
			}
		}
	}
	return stats, nil
}

// GetDailyViews returns per-day view counts over the last N days.
func (s *Service) GetDailyViews(itemID uint, itemType string, days int) ([]models.DailyStats, error) {
	if !validItemType(itemType) {
		return nil, ErrInvalidItemType
	}
	if days <= 0 {
		days = 30
	}
	end := time.Now()
	start := end.AddDate(0, 0, -days)
	return s.repo.DailyViews(itemID, itemType, start, end)
}
