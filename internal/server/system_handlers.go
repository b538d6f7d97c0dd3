package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/contestboard/arena/internal/database"
	"github.com/contestboard/arena/internal/scheduler"
)

const pingTimeout = 2 * time.Second

// Pinger is a database handle that can be probed cheaply. *sql.DB and
// *sqlx.DB satisfy it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// JobRunner exposes the scheduler to the system endpoints
type JobRunner interface {
	Status() []scheduler.JobStatus
	RunByName(name string) error
}

// SystemConfig holds what the system endpoints report on
type SystemConfig struct {
	DataDir   string
	Databases map[string]Pinger
	Files     []*database.DB
	Jobs      JobRunner
}

// SystemHandlers handles system-wide monitoring and operations endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	dataDir     string
	startupTime time.Time
	databases   map[string]Pinger
	files       []*database.DB
	jobs        JobRunner
}

// SystemStatusResponse represents the system status
type SystemStatusResponse struct {
	Status        string                `json:"status"` // "ok" or "degraded"
	StartedAt     string                `json:"started_at"`
	Uptime        string                `json:"uptime"`
	UptimeSeconds int64                 `json:"uptime_seconds"`
	CPUPercent    float64               `json:"cpu_percent"`
	MemoryPercent float64               `json:"memory_percent"`
	Disk          *DiskUsageResponse    `json:"disk,omitempty"`
	Databases     []DatabaseStatus      `json:"databases"`
	Jobs          []scheduler.JobStatus `json:"jobs"`
}

// DatabaseStatus is the result of pinging one database
type DatabaseStatus struct {
	Name      string `json:"name"`
	Healthy   bool   `json:"healthy"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// JobsStatusResponse represents scheduler job status
type JobsStatusResponse struct {
	TotalJobs int                   `json:"total_jobs"`
	Jobs      []scheduler.JobStatus `json:"jobs"`
}

// DatabaseStatsResponse represents database statistics
type DatabaseStatsResponse struct {
	Databases   []DBInfo `json:"databases"`
	TotalSizeMB float64  `json:"total_size_mb"`
	LastChecked string   `json:"last_checked"`
}

// DBInfo represents information about a single database
type DBInfo struct {
	Name      string  `json:"name"`
	Path      string  `json:"path"`
	SizeMB    float64 `json:"size_mb"`
	WALSizeMB float64 `json:"wal_size_mb"`
	PageCount int64   `json:"page_count"`
	Freelist  int64   `json:"freelist_count"`
	Error     string  `json:"error,omitempty"`
}

// DiskUsageResponse represents disk usage statistics
type DiskUsageResponse struct {
	Path        string  `json:"path"`
	DataDirMB   float64 `json:"data_dir_mb"`
	TotalMB     float64 `json:"total_mb"`
	AvailableMB float64 `json:"available_mb"`
	UsedPercent float64 `json:"used_percent"`
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(log zerolog.Logger, cfg SystemConfig) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("component", "system_handlers").Logger(),
		dataDir:     cfg.DataDir,
		startupTime: time.Now(),
		databases:   cfg.Databases,
		files:       cfg.Files,
		jobs:        cfg.Jobs,
	}
}

// RegisterRoutes registers the /system routes
func (h *SystemHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/system", func(r chi.Router) {
		r.Get("/status", h.HandleSystemStatus)
		r.Get("/jobs", h.HandleJobsStatus)
		r.Post("/jobs/{name}", h.HandleTriggerJob)
		r.Get("/database/stats", h.HandleDatabaseStats)
		r.Get("/disk", h.HandleDiskUsage)
	})
}

// HandleSystemStatus returns comprehensive system status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	uptime := time.Since(h.startupTime)
	cpuPercent, memPercent := h.getSystemStats()

	response := SystemStatusResponse{
		Status:        "ok",
		StartedAt:     h.startupTime.UTC().Format(time.RFC3339),
		Uptime:        uptime.Truncate(time.Second).String(),
		UptimeSeconds: int64(uptime.Seconds()),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		Databases:     h.pingDatabases(r.Context()),
		Jobs:          []scheduler.JobStatus{},
	}

	if usage, err := h.diskUsage(); err == nil {
		response.Disk = usage
	} else if h.dataDir != "" {
		h.log.Warn().Err(err).Msg("Failed to get disk usage")
	}

	for _, db := range response.Databases {
		if !db.Healthy {
			response.Status = "degraded"
		}
	}

	if h.jobs != nil {
		response.Jobs = h.jobs.Status()
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleJobsStatus lists scheduled jobs
func (h *SystemHandlers) HandleJobsStatus(w http.ResponseWriter, r *http.Request) {
	jobs := []scheduler.JobStatus{}
	if h.jobs != nil {
		jobs = h.jobs.Status()
	}
	h.writeJSON(w, http.StatusOK, JobsStatusResponse{TotalJobs: len(jobs), Jobs: jobs})
}

// HandleTriggerJob runs a registered job in the background
// POST /api/system/jobs/{name}
func (h *SystemHandlers) HandleTriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if h.jobs == nil || !h.hasJob(name) {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "Job not found: " + name})
		return
	}

	h.log.Info().Str("job", name).Msg("Manual job run triggered")
	go func() {
		if err := h.jobs.RunByName(name); err != nil {
			h.log.Error().Err(err).Str("job", name).Msg("Manual job run failed")
		}
	}()

	h.writeJSON(w, http.StatusAccepted, map[string]string{
		"status":  "success",
		"message": name + " triggered successfully",
	})
}

// HandleDatabaseStats returns database statistics
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting database stats")

	response := DatabaseStatsResponse{
		Databases:   make([]DBInfo, 0, len(h.files)),
		LastChecked: time.Now().Format(time.RFC3339),
	}

	for _, db := range h.files {
		info := DBInfo{Name: db.Name(), Path: db.Path()}
		stats, err := db.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Str("database", db.Name()).Msg("Failed to get database stats")
			info.Error = err.Error()
		} else {
			info.SizeMB = toMB(stats.SizeBytes)
			info.WALSizeMB = toMB(stats.WALSizeBytes)
			info.PageCount = stats.PageCount
			info.Freelist = stats.FreelistCount
			response.TotalSizeMB += info.SizeMB + info.WALSizeMB
		}
		response.Databases = append(response.Databases, info)
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleDiskUsage returns disk usage statistics
func (h *SystemHandlers) HandleDiskUsage(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting disk usage")

	usage, err := h.diskUsage()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get disk usage")
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to get disk usage"})
		return
	}
	h.writeJSON(w, http.StatusOK, usage)
}

func (h *SystemHandlers) hasJob(name string) bool {
	for _, st := range h.jobs.Status() {
		if st.Name == name {
			return true
		}
	}
	return false
}

func (h *SystemHandlers) pingDatabases(ctx context.Context) []DatabaseStatus {
	names := make([]string, 0, len(h.databases))
	for name := range h.databases {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]DatabaseStatus, 0, len(names))
	for _, name := range names {
		db := h.databases[name]
		if db == nil {
			continue
		}

		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		start := time.Now()
		err := db.PingContext(pingCtx)
		cancel()

		st := DatabaseStatus{Name: name, Healthy: err == nil, LatencyMs: time.Since(start).Milliseconds()}
		if err != nil {
			h.log.Warn().Err(err).Str("database", name).Msg("Database ping failed")
			st.Error = err.Error()
		}
		out = append(out, st)
	}
	return out
}

func (h *SystemHandlers) diskUsage() (*DiskUsageResponse, error) {
	usage, err := disk.Usage(h.dataDir)
	if err != nil {
		return nil, err
	}
	return &DiskUsageResponse{
		Path:        h.dataDir,
		DataDirMB:   h.getDirSize(h.dataDir),
		TotalMB:     toMB(int64(usage.Total)),
		AvailableMB: toMB(int64(usage.Free)),
		UsedPercent: usage.UsedPercent,
	}, nil
}

// getDirSize calculates total size of a directory in MB
func (h *SystemHandlers) getDirSize(dirPath string) float64 {
	var totalSize int64

	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if !info.IsDir() {
			totalSize += info.Size()
		}
		return nil
	})

	if err != nil {
		h.log.Warn().Err(err).Str("dir", dirPath).Msg("Failed to calculate directory size")
		return 0
	}

	return toMB(totalSize)
}

// getSystemStats returns CPU and RAM usage percentages. CPU is sampled over
// 100ms.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

func toMB(bytes int64) float64 {
	return float64(bytes) / 1024 / 1024
}

// writeJSON writes a JSON response
func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
