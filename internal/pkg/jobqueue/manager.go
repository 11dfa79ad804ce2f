package jobqueue

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/metrics/counter"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/plans"
)

const (
	counterFlushInterval = 5 * time.Second
	expirySweepInterval  = time.Hour
)

// Manager owns the job queue workers and the periodic maintenance loops:
// flushing the Redis view/click counters to the database and expiring
// overdue listing subscriptions.
type Manager struct {
	queue  *Queue
	db     *gorm.DB
	stopCh chan struct{}
	wg     sync.WaitGroup
}

var (
	manager     *Manager
	managerOnce sync.Once
)

// StartManager initializes the global manager and starts its workers.
// Subsequent calls return the already running instance.
func StartManager(db *gorm.DB) *Manager {
	managerOnce.Do(func() {
		manager = &Manager{
			queue:  NewQueue(3),
			db:     db,
			stopCh: make(chan struct{}),
		}
		manager.start()
	})
	return manager
}

// GetManager returns the global manager. Panics when StartManager has not run.
func GetManager() *Manager {
	if manager == nil {
		panic("jobqueue: StartManager must be called before GetManager")
	}
	return manager
}

func (m *Manager) start() {
	m.queue.Start()

	m.wg.Add(1)
	go m.counterFlushWorker()

	m.wg.Add(1)
	go m.expirySweepWorker()

	log.Info("[JobQueue] Manager started")
}

// Stop shuts down the periodic workers and the queue
func (m *Manager) Stop() {
	close(m.stopCh)
	m.wg.Wait()
	m.queue.Stop()
	log.Info("[JobQueue] Manager stopped")
}

// EnqueueListingImageProcessing schedules variant generation for an uploaded image
func (m *Manager) EnqueueListingImageProcessing(imageID uint) (*Job, error) {
	return m.queue.EnqueueJob(JobTypeListingImage, map[string]interface{}{
		"image_id": imageID,
	})
}

// Queue exposes the underlying queue for stats endpoints
func (m *Manager) Queue() *Queue {
	return m.queue
}

// counterFlushWorker periodically writes batched view/click counters to the database
func (m *Manager) counterFlushWorker() {
	defer m.wg.Done()
	ticker := time.NewTicker(counterFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			// Final flush so no counts are lost across restarts
			if err := counter.FlushAll(); err != nil {
				log.Errorf("[JobQueue] Final counter flush failed: %v", err)
			}
			return
		case <-ticker.C:
			if err := counter.FlushAll(); err != nil {
				log.Errorf("[JobQueue] Counter flush failed: %v", err)
			}
		}
	}
}

// expirySweepWorker periodically downgrades listings whose paid plan has lapsed
func (m *Manager) expirySweepWorker() {
	defer m.wg.Done()

	svc := plans.NewServiceFromDB(m.db)

	// Run once at startup, then hourly
	m.runExpirySweep(svc)

	ticker := time.NewTicker(expirySweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.runExpirySweep(svc)
		}
	}
}

func (m *Manager) runExpirySweep(svc *plans.Service) {
	expired, err := svc.ExpireDue()
	if err != nil {
		log.Errorf("[JobQueue] Subscription expiry sweep failed: %v", err)
		return
	}
	if expired > 0 {
		log.Infof("[JobQueue] Expired %d lapsed subscriptions", expired)
	}
}
