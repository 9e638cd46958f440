package cron

import (
	"log"

	"github.com/robfig/cron/v3"
	"github.com/sahilchouksey/dpms-api/utils/cache"
	"gorm.io/gorm"
)

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron  *cron.Cron
	db    *gorm.DB
	cache *cache.RedisCache // nil when Redis is not configured
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB, c *cache.RedisCache) *CronManager {
	return &CronManager{
		cron:  cron.New(),
		db:    db,
		cache: c,
	}
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	log.Println("Starting cron jobs...")

	// Register all jobs
	if err := m.registerJobs(); err != nil {
		return err
	}

	// Start the cron scheduler
	m.cron.Start()

	log.Println("Cron jobs started successfully")
	return nil
}

// Stop stops all cron jobs
func (m *CronManager) Stop() {
	log.Println("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("Cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	// Nightly at 2 AM: reconcile derived marks state with raw fields
	_, err := m.cron.AddFunc("0 2 * * *", func() {
		m.logJobStart("reconcile_derived_state")
		m.ReconcileDerivedState()
	})
	if err != nil {
		return err
	}

	// Every 6 hours: rebuild the band counts cache
	_, err = m.cron.AddFunc("0 */6 * * *", func() {
		m.logJobStart("warm_band_counts")
		m.WarmBandCounts()
	})
	if err != nil {
		return err
	}

	return nil
}

func (m *CronManager) logJobStart(name string) {
	log.Printf("Cron job started: %s", name)
}
