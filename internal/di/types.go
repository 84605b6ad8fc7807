// Package di provides dependency injection wiring and initialization.
package di

import (
	"github.com/saitejamanchi/rythumitra/internal/clientdata"
	"github.com/saitejamanchi/rythumitra/internal/database"
	"github.com/saitejamanchi/rythumitra/internal/events"
	"github.com/saitejamanchi/rythumitra/internal/modules/advisory"
	"github.com/saitejamanchi/rythumitra/internal/modules/catalog"
	"github.com/saitejamanchi/rythumitra/internal/modules/history"
	"github.com/saitejamanchi/rythumitra/internal/modules/market"
	"github.com/saitejamanchi/rythumitra/internal/modules/soil"
	"github.com/saitejamanchi/rythumitra/internal/modules/weather"
	"github.com/saitejamanchi/rythumitra/internal/reliability"
	"github.com/saitejamanchi/rythumitra/internal/scheduler"
)

// Container holds every wired dependency. Built once at startup by Wire.
type Container struct {
	// Databases
	CatalogDB  *database.DB
	AdvisoryDB *database.DB
	CacheDB    *database.DB
	HistoryDB  *history.DB

	// Repositories
	CacheRepo    *clientdata.Repository
	CatalogRepo  *catalog.Repository
	AdvisoryRepo *advisory.Repository

	// Services
	CatalogService  *catalog.Service
	SoilService     *soil.Service
	WeatherService  *weather.Service
	MarketService   *market.Service
	AdvisoryService *advisory.Service
	BackupService   *reliability.BackupService

	// Handlers
	AdvisoryHandler *advisory.Handler
	CatalogHandler  *catalog.Handler
	SoilHandler     *soil.Handler
	WeatherHandler  *weather.Handler

	EventBus  *events.Bus
	Scheduler *scheduler.Scheduler
}

// Databases returns the sqlite handles keyed by name, for health checks
// and maintenance jobs.
func (c *Container) Databases() map[string]*database.DB {
	return map[string]*database.DB{
		"catalog":  c.CatalogDB,
		"advisory": c.AdvisoryDB,
		"cache":    c.CacheDB,
	}
}

// Close releases every database handle. Safe to call on a partially
// initialized container.
func (c *Container) Close() {
	if c.CatalogDB != nil {
		c.CatalogDB.Close()
	}
	if c.AdvisoryDB != nil {
		c.AdvisoryDB.Close()
	}
	if c.CacheDB != nil {
		c.CacheDB.Close()
	}
	if c.HistoryDB != nil {
		c.HistoryDB.Close()
	}
}
