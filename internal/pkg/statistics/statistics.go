package statistics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/cache"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/database"
)

const (
	CacheKeyUsers            = "statistics:users:total"
	CacheKeyListingsTotal    = "statistics:listings:total"
	CacheKeyListingsActive   = "statistics:listings:active"
	CacheKeyListingsPending  = "statistics:listings:pending"
	CacheKeyAppsTotal        = "statistics:apps:total"
	CacheKeyAppsPublished    = "statistics:apps:published"
	CacheKeyAffiliatesActive = "statistics:affiliates:active"
	CacheKeyClaimsPending    = "statistics:claims:pending"
	CacheKeyCommissionsOpen  = "statistics:commissions:pending"
	CacheExpiration          = 30 * time.Minute
)

// DashboardData holds the counters shown on the admin dashboard
type DashboardData struct {
	TotalUsers         int `json:"total_users"`
	TotalListings      int `json:"total_listings"`
	ActiveListings     int `json:"active_listings"`
	PendingListings    int `json:"pending_listings"`
	TotalApps          int `json:"total_apps"`
	PublishedApps      int `json:"published_apps"`
	ActiveAffiliates   int `json:"active_affiliates"`
	PendingClaims      int `json:"pending_claims"`
	PendingCommissions int `json:"pending_commissions"`
}

var (
	lastCacheUpdate     time.Time
	cacheUpdateMutex    sync.Mutex
	cacheUpdateInterval = 5 * time.Minute
)

// ShouldUpdateCache reports whether the cached counters are stale
func ShouldUpdateCache() bool {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	return time.Since(lastCacheUpdate) > cacheUpdateInterval
}

// UpdateCacheIfNeeded refreshes the cached counters when they are stale
func UpdateCacheIfNeeded() {
	if ShouldUpdateCache() {
		cacheUpdateMutex.Lock()
		defer cacheUpdateMutex.Unlock()

		if err := UpdateStatisticsCache(); err != nil {
			log.Errorf("[Statistics] Cache refresh failed: %v", err)
		} else {
			lastCacheUpdate = time.Now()
		}
	}
}

// ResetCacheUpdateTimer forces the next read to refresh the cache
func ResetCacheUpdateTimer() {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	lastCacheUpdate = time.Time{}
}

type counterQuery struct {
	cacheKey string
	count    func() (int64, error)
}

func dashboardQueries() []counterQuery {
	db := database.GetDB()
	return []counterQuery{
		{CacheKeyUsers, func() (int64, error) {
			var n int64
			return n, db.Model(&models.User{}).Count(&n).Error
		}},
		{CacheKeyListingsTotal, func() (int64, error) {
			var n int64
			return n, db.Model(&models.BusinessListing{}).Count(&n).Error
		}},
		{CacheKeyListingsActive, func() (int64, error) {
			var n int64
			return n, db.Model(&models.BusinessListing{}).Where("status = ?", models.ListingStatusActive).Count(&n).Error
		}},
		{CacheKeyListingsPending, func() (int64, error) {
			var n int64
			return n, db.Model(&models.BusinessListing{}).Where("status = ?", models.ListingStatusPending).Count(&n).Error
		}},
		{CacheKeyAppsTotal, func() (int64, error) {
			var n int64
			return n, db.Model(&models.PwaApp{}).Count(&n).Error
		}},
		{CacheKeyAppsPublished, func() (int64, error) {
			var n int64
			return n, db.Model(&models.PwaApp{}).Where("app_status = ?", models.AppStatusPublished).Count(&n).Error
		}},
		{CacheKeyAffiliatesActive, func() (int64, error) {
			var n int64
			return n, db.Model(&models.Affiliate{}).Where("status = ?", models.AffiliateStatusActive).Count(&n).Error
		}},
		{CacheKeyClaimsPending, func() (int64, error) {
			var n int64
			return n, db.Model(&models.ListingClaim{}).Where("status = ?", models.ClaimStatusPending).Count(&n).Error
		}},
		{CacheKeyCommissionsOpen, func() (int64, error) {
			var n int64
			return n, db.Model(&models.AffiliateCommission{}).Where("status = ?", models.CommissionStatusPending).Count(&n).Error
		}},
	}
}

// UpdateStatisticsCache recomputes all dashboard counters and stores them in Redis
func UpdateStatisticsCache() error {
	for _, q := range dashboardQueries() {
		n, err := q.count()
		if err != nil {
			log.Errorf("[Statistics] Count for %s failed: %v", q.cacheKey, err)
			return err
		}
		if err := cache.Set(q.cacheKey, strconv.FormatInt(n, 10), CacheExpiration); err != nil {
			log.Errorf("[Statistics] Caching %s failed: %v", q.cacheKey, err)
			return err
		}
	}
	return nil
}

// getCounter returns a cached counter, recomputing it on a cache miss
func getCounter(cacheKey string, count func() (int64, error)) int {
	val, err := cache.Get(cacheKey)
	if err == nil {
		if n, perr := strconv.ParseInt(val, 10, 64); perr == nil {
			return int(n)
		}
	}

	n, err := count()
	if err != nil {
		log.Errorf("[Statistics] Count for %s failed: %v", cacheKey, err)
		return 0
	}
	if err := cache.Set(cacheKey, strconv.FormatInt(n, 10), CacheExpiration); err != nil {
		log.Errorf("[Statistics] Caching %s failed: %v", cacheKey, err)
	}
	return int(n)
}

// GetDashboardData returns all admin dashboard counters
func GetDashboardData() DashboardData {
	UpdateCacheIfNeeded()

	queries := dashboardQueries()
	byKey := make(map[string]func() (int64, error), len(queries))
	for _, q := range queries {
		byKey[q.cacheKey] = q.count
	}

	return DashboardData{
		TotalUsers:         getCounter(CacheKeyUsers, byKey[CacheKeyUsers]),
		TotalListings:      getCounter(CacheKeyListingsTotal, byKey[CacheKeyListingsTotal]),
		ActiveListings:     getCounter(CacheKeyListingsActive, byKey[CacheKeyListingsActive]),
		PendingListings:    getCounter(CacheKeyListingsPending, byKey[CacheKeyListingsPending]),
		TotalApps:          getCounter(CacheKeyAppsTotal, byKey[CacheKeyAppsTotal]),
		PublishedApps:      getCounter(CacheKeyAppsPublished, byKey[CacheKeyAppsPublished]),
		ActiveAffiliates:   getCounter(CacheKeyAffiliatesActive, byKey[CacheKeyAffiliatesActive]),
		PendingClaims:      getCounter(CacheKeyClaimsPending, byKey[CacheKeyClaimsPending]),
		PendingCommissions: getCounter(CacheKeyCommissionsOpen, byKey[CacheKeyCommissionsOpen]),
	}
}
