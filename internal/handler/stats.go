package handler

import (
	"log/slog"
	"net/http"

	"github.com/amadou/nexus-connect/internal/service"
)

// StatsHandler exposes the aggregate counters.
type StatsHandler struct {
	stats  *service.StatsService
	logger *slog.Logger
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(stats *service.StatsService, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{stats: stats, logger: logger}
}

// HandleStats returns the dashboard counts.
//
// HTTP: GET /api/stats
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.stats.Snapshot(r.Context())
	if err != nil {
		h.logger.Error("stats snapshot failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}
