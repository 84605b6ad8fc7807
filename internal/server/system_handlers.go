package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/saitejamanchi/rythumitra/internal/config"
	"github.com/saitejamanchi/rythumitra/internal/di"
	"github.com/saitejamanchi/rythumitra/internal/version"
)

var startedAt = time.Now()

// SystemHandlers serves health, info and maintenance endpoints.
type SystemHandlers struct {
	cfg       *config.Config
	container *di.Container
	log       zerolog.Logger
}

// NewSystemHandlers creates the system handlers.
func NewSystemHandlers(cfg *config.Config, container *di.Container, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		cfg:       cfg,
		container: container,
		log:       log.With().Str("handler", "system").Logger(),
	}
}

// HandleHealth reports liveness plus per-database health.
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	databases := map[string]string{}
	healthy := true

	for name, db := range h.container.Databases() {
		if err := db.HealthCheck(r.Context()); err != nil {
			databases[name] = err.Error()
			healthy = false
			continue
		}
		databases[name] = "ok"
	}

	status := http.StatusOK
	state := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}

	h.writeJSON(w, status, map[string]interface{}{
		"status":    state,
		"databases": databases,
		"uptime_s":  int(time.Since(startedAt).Seconds()),
	})
}

// HandleInfo reports version, runtime and host resource usage.
func (h *SystemHandlers) HandleInfo(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"version":     version.Version,
		"go_version":  runtime.Version(),
		"goroutines":  runtime.NumGoroutine(),
		"data_dir":    h.cfg.DataDir,
		"subscribers": h.container.EventBus.SubscriberCount(),
	}

	if cpuPercent, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(cpuPercent) > 0 {
		info["cpu_percent"] = cpuPercent[0]
	} else if err != nil {
		h.log.Warn().Err(err).Msg("Failed to read CPU usage")
	}

	if memStat, err := mem.VirtualMemory(); err == nil {
		info["memory_percent"] = memStat.UsedPercent
		info["memory_used_mb"] = memStat.Used / 1024 / 1024
	} else {
		h.log.Warn().Err(err).Msg("Failed to read memory usage")
	}

	dbStats := map[string]interface{}{}
	for name, db := range h.container.Databases() {
		stats, err := db.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Str("database", name).Msg("Failed to read database stats")
			continue
		}
		dbStats[name] = map[string]interface{}{
			"size_bytes":     stats.SizeBytes,
			"wal_size_bytes": stats.WALSizeBytes,
			"page_count":     stats.PageCount,
		}
	}
	info["databases"] = dbStats

	h.writeJSON(w, http.StatusOK, info)
}

// HandleBackup triggers a manual backup run.
func (h *SystemHandlers) HandleBackup(w http.ResponseWriter, r *http.Request) {
	if h.container.BackupService == nil {
		h.writeJSON(w, http.StatusConflict, map[string]string{"error": "backups are not configured"})
		return
	}

	result, err := h.container.BackupService.Run(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Manual backup failed")
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
