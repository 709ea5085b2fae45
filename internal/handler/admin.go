package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/yatagaratsu666/Servidor-Inventario/pkg/response"
)

// StatsSource reports store statistics.
type StatsSource interface {
	GetStats(ctx context.Context) (map[string]interface{}, error)
}

// BufferCounter reports how many mutation logs wait in the write-behind buffer.
type BufferCounter interface {
	Count(ctx context.Context) (int64, error)
}

// AdminHandler handles admin-related HTTP requests.
type AdminHandler struct {
	store     StatsSource
	buffer    BufferCounter
	storeType string
	cacheType string
	startTime time.Time
}

// NewAdminHandler creates a new admin handler. buffer may be nil.
func NewAdminHandler(store StatsSource, buffer BufferCounter, storeType, cacheType string) *AdminHandler {
	return &AdminHandler{
		store:     store,
		buffer:    buffer,
		storeType: storeType,
		cacheType: cacheType,
		startTime: time.Now(),
	}
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats := make(map[string]interface{})

	uptime := time.Since(h.startTime)
	stats["uptime_seconds"] = int64(uptime.Seconds())
	stats["uptime_human"] = uptime.Round(time.Second).String()
	stats["server_time"] = time.Now().Format(time.RFC3339)
	stats["store_type"] = h.storeType
	stats["cache_type"] = h.cacheType

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats["memory"] = map[string]interface{}{
		"alloc_mb":      float64(memStats.Alloc) / 1024 / 1024,
		"sys_mb":        float64(memStats.Sys) / 1024 / 1024,
		"heap_inuse_mb": float64(memStats.HeapInuse) / 1024 / 1024,
		"num_gc":        memStats.NumGC,
		"goroutines":    runtime.NumGoroutine(),
	}

	switch {
	case h.buffer == nil:
		stats["log_buffer"] = map[string]interface{}{"status": "not_configured"}
	default:
		if count, err := h.buffer.Count(ctx); err == nil {
			stats["log_buffer"] = map[string]interface{}{"pending_logs": count, "status": "connected"}
		} else {
			stats["log_buffer"] = map[string]interface{}{"status": "error", "error": err.Error()}
		}
	}

	if storeStats, err := h.store.GetStats(ctx); err == nil {
		stats["store"] = storeStats
	} else {
		stats["store"] = map[string]interface{}{"status": "error", "error": err.Error()}
	}

	stats["runtime"] = map[string]interface{}{
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"cpus":       runtime.NumCPU(),
	}

	response.OK(w, stats)
}
