package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/yatagaratsu666/Servidor-Inventario/internal/service"
	"github.com/yatagaratsu666/Servidor-Inventario/pkg/response"
)

// LogLister pages through mutation logs.
type LogLister interface {
	ListLogs(ctx context.Context, player string, page, limit int) (*service.LogPage, error)
}

// LogHandler serves the mutation log.
type LogHandler struct {
	logs LogLister
}

// NewLogHandler creates a new log handler.
func NewLogHandler(logs LogLister) *LogHandler {
	return &LogHandler{logs: logs}
}

// GetMutationLogs handles GET /api/v1/logs?player=&page=&limit=
func (h *LogHandler) GetMutationLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	res, err := h.logs.ListLogs(r.Context(), q.Get("player"), page, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSONWithMeta(w, http.StatusOK, res.Data, res.Page, res.Limit, res.Total)
}
