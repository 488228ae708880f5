package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/wonny/fscore/internal/contracts"
	"github.com/wonny/fscore/internal/universe"
	"github.com/wonny/fscore/pkg/logger"
)

// SelectionReader reads stored selections
type SelectionReader interface {
	Latest(ctx context.Context) (*contracts.Selection, error)
	ByDate(ctx context.Context, date time.Time) (*contracts.Selection, error)
}

// SelectionCache holds the most recently published selection
type SelectionCache interface {
	Latest(ctx context.Context) (*contracts.Selection, bool, error)
}

// SelectionRunner runs a selection on demand
type SelectionRunner interface {
	RunFor(ctx context.Context, date time.Time) (*contracts.Selection, error)
}

// UniverseHandler serves selection results
// ⭐ SSOT: 유니버스 API 핸들러는 이 구조체에서만
type UniverseHandler struct {
	reader SelectionReader // optional
	cache  SelectionCache  // optional
	runner SelectionRunner // optional
	logger *logger.Logger
	now    func() time.Time
}

// NewUniverseHandler creates a new universe handler. Any dependency may be nil.
func NewUniverseHandler(reader SelectionReader, cache SelectionCache, runner SelectionRunner, log *logger.Logger) *UniverseHandler {
	return &UniverseHandler{
		reader: reader,
		cache:  cache,
		runner: runner,
		logger: log,
		now:    time.Now,
	}
}

// GetLatest returns the newest selection, cache first
// GET /api/universe/latest
func (h *UniverseHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.cache != nil {
		sel, ok, err := h.cache.Latest(ctx)
		if err != nil {
			h.logger.WithError(err).Warn("Selection cache read failed, falling back to store")
		} else if ok {
			respondJSON(w, http.StatusOK, sel)
			return
		}
	}

	if h.reader == nil {
		respondError(w, http.StatusNotFound, "No selection available")
		return
	}

	sel, err := h.reader.Latest(ctx)
	h.respondSelection(w, sel, err)
}

// GetByDate returns the selection made for ?date=YYYY-MM-DD
// GET /api/universe
func (h *UniverseHandler) GetByDate(w http.ResponseWriter, r *http.Request) {
	date, ok, err := parseDate(r, "date")
	if err != nil || !ok {
		respondError(w, http.StatusBadRequest, "Invalid or missing 'date' (expected YYYY-MM-DD)")
		return
	}
	if h.reader == nil {
		respondError(w, http.StatusServiceUnavailable, "Selection store not configured")
		return
	}

	sel, err := h.reader.ByDate(r.Context(), date)
	h.respondSelection(w, sel, err)
}

// Select runs a selection now for ?date= (default: today)
// POST /api/universe/select
func (h *UniverseHandler) Select(w http.ResponseWriter, r *http.Request) {
	if h.runner == nil {
		respondError(w, http.StatusServiceUnavailable, "Selection runner not configured")
		return
	}

	date, ok, err := parseDate(r, "date")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'date' format (expected YYYY-MM-DD)")
		return
	}
	if !ok {
		y, m, d := h.now().Date()
		date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	sel, err := h.runner.RunFor(r.Context(), date)
	if err != nil {
		h.logger.WithError(err).Error("On-demand selection failed")
		respondError(w, http.StatusInternalServerError, "Selection failed")
		return
	}
	respondJSON(w, http.StatusCreated, sel)
}

func (h *UniverseHandler) respondSelection(w http.ResponseWriter, sel *contracts.Selection, err error) {
	switch {
	case errors.Is(err, universe.ErrNoSelection):
		respondError(w, http.StatusNotFound, "No selection available")
	case err != nil:
		h.logger.WithError(err).Error("Failed to read selection")
		respondError(w, http.StatusInternalServerError, "Failed to read selection")
	default:
		respondJSON(w, http.StatusOK, sel)
	}
}
