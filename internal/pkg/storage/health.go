package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/cache"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/constants"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/database"
)

const healthCacheKey = "storage:health"

var healthStopCh chan struct{}

// Health represents the cached health snapshot of the service's backing stores
type Health struct {
	Healthy         bool      `json:"healthy"`
	DatabaseOK      bool      `json:"database_ok"`
	CacheOK         bool      `json:"cache_ok"`
	UploadsWritable bool      `json:"uploads_writable"`
	CheckedAt       time.Time `json:"checked_at"`
}

// StartHealthMonitor starts a lightweight heartbeat that caches store health in Redis
func StartHealthMonitor() {
	if healthStopCh != nil {
		return
	}
	healthStopCh = make(chan struct{})
	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()
		log.Info("[StorageHealth] Monitor started (interval: 60s)")

		// run once immediately
		runHealthCheckOnce()

		for {
			select {
			case <-healthStopCh:
				log.Info("[StorageHealth] Monitor stopped")
				return
			case <-ticker.C:
				runHealthCheckOnce()
			}
		}
	}()
}

// StopHealthMonitor stops the heartbeat
func StopHealthMonitor() {
	if healthStopCh != nil {
		close(healthStopCh)
		healthStopCh = nil
	}
}

func runHealthCheckOnce() {
	h := CheckNow()

	data, err := json.Marshal(h)
	if err != nil {
		log.Errorf("[StorageHealth] Failed to marshal health snapshot: %v", err)
		return
	}
	if err := cache.Set(healthCacheKey, string(data), 5*time.Minute); err != nil {
		log.Errorf("[StorageHealth] Failed to cache health snapshot: %v", err)
	}
}

// CheckNow probes the database, the Redis cache, and the uploads directory.
func CheckNow() Health {
	h := Health{CheckedAt: time.Now()}

	if db := database.GetDB(); db != nil {
		if sqlDB, err := db.DB(); err == nil && sqlDB.Ping() == nil {
			h.DatabaseOK = true
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := cache.GetClient().Ping(ctx).Err(); err == nil {
		h.CacheOK = true
	}

	h.UploadsWritable = uploadsWritable()
	h.Healthy = h.DatabaseOK && h.CacheOK && h.UploadsWritable
	return h
}

// GetCachedHealth returns the most recent snapshot, probing directly on a
// cache miss.
func GetCachedHealth() Health {
	val, err := cache.Get(healthCacheKey)
	if err == nil {
		var h Health
		if uerr := json.Unmarshal([]byte(val), &h); uerr == nil {
			return h
		}
	}
	return CheckNow()
}

func uploadsWritable() bool {
	probe := filepath.Join(constants.UploadsPath, ".healthcheck")
	if err := os.MkdirAll(constants.UploadsPath, 0755); err != nil {
		return false
	}
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return false
	}
	os.Remove(probe)
	return true
}
