package restserver

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/chrissnell/remotetide/internal/storage/sqlite"
	"github.com/chrissnell/remotetide/internal/tide"
	"github.com/chrissnell/remotetide/pkg/responseformat"
)

// maxListLimit caps the limit query parameter of GET /runs
const maxListLimit = 1000

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	store     RunStore
	formatter *responseformat.Formatter
	logger    *zap.SugaredLogger
}

// NewHandlers creates a new handlers instance
func NewHandlers(store RunStore, logger *zap.SugaredLogger) *Handlers {
	return &Handlers{
		store:     store,
		formatter: responseformat.NewFormatter(),
		logger:    logger,
	}
}

// SeriesPoint is one row of GET /runs/{id}/series
type SeriesPoint struct {
	Time      time.Time `json:"time"`
	Raw       float64   `json:"raw"`
	Converted *float64  `json:"converted,omitempty"`
	Filtered  float64   `json:"filtered"`
	Label     string    `json:"label"`
}

// ListRuns handles GET /runs?limit=N, newest first
func (h *Handlers) ListRuns(w http.ResponseWriter, req *http.Request) {
	limit := 0
	if v := req.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.formatter.WriteError(w, req, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxListLimit)
	}

	runs, err := h.store.ListRuns(req.Context(), limit)
	if err != nil {
		h.logger.Errorf("error listing runs: %v", err)
		h.formatter.WriteError(w, req, http.StatusInternalServerError, "error listing runs")
		return
	}
	if runs == nil {
		runs = []sqlite.RunSummary{}
	}

	if err := h.formatter.WriteResponse(w, req, runs, nil); err != nil {
		h.logger.Errorf("error encoding runs: %v", err)
	}
}

// GetRun handles GET /runs/{id}
func (h *Handlers) GetRun(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]

	run, err := h.store.GetRun(req.Context(), id)
	if err != nil {
		h.writeStoreError(w, req, id, err)
		return
	}

	if err := h.formatter.WriteResponse(w, req, run, nil); err != nil {
		h.logger.Errorf("error encoding run %s: %v", id, err)
	}
}

// GetSeries handles GET /runs/{id}/series
func (h *Handlers) GetSeries(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]

	rows, err := h.store.GetSeries(req.Context(), id)
	if err != nil {
		h.writeStoreError(w, req, id, err)
		return
	}

	points := make([]SeriesPoint, len(rows))
	for i, r := range rows {
		points[i] = toSeriesPoint(r)
	}

	if err := h.formatter.WriteResponse(w, req, points, nil); err != nil {
		h.logger.Errorf("error encoding series for run %s: %v", id, err)
	}
}

func (h *Handlers) writeStoreError(w http.ResponseWriter, req *http.Request, id string, err error) {
	if errors.Is(err, sqlite.ErrRunNotFound) {
		h.formatter.WriteError(w, req, http.StatusNotFound, "run not found")
		return
	}
	h.logger.Errorf("error fetching run %s: %v", id, err)
	h.formatter.WriteError(w, req, http.StatusInternalServerError, "error fetching run")
}

func toSeriesPoint(r tide.Row) SeriesPoint {
	p := SeriesPoint{
		Time:     r.Time,
		Raw:      r.Raw,
		Filtered: r.Filtered,
		Label:    r.Label,
	}
	if r.HasConverted {
		v := r.Converted
		p.Converted = &v
	}
	return p
}
