package handlers

import (
	"net/http"
	"time"

	"github.com/wonny/fscore/internal/contracts"
	"github.com/wonny/fscore/internal/fundamentals"
	"github.com/wonny/fscore/pkg/logger"
)

// FundamentalsHandler exposes a fundamentals source over HTTP
type FundamentalsHandler struct {
	source contracts.FundamentalsSource
	logger *logger.Logger
}

// NewFundamentalsHandler creates a new fundamentals handler
func NewFundamentalsHandler(source contracts.FundamentalsSource, log *logger.Logger) *FundamentalsHandler {
	return &FundamentalsHandler{source: source, logger: log}
}

// GetCoarse returns the coarse feed for ?date=
// GET /api/fundamentals/coarse
func (h *FundamentalsHandler) GetCoarse(w http.ResponseWriter, r *http.Request) {
	date, ok, err := parseDate(r, "date")
	if err != nil || !ok {
		respondError(w, http.StatusBadRequest, "Invalid or missing 'date' (expected YYYY-MM-DD)")
		return
	}

	coarse, err := h.source.Coarse(r.Context(), date)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load coarse fundamentals")
		respondError(w, http.StatusInternalServerError, "Failed to load coarse fundamentals")
		return
	}
	respondJSON(w, http.StatusOK, coarse)
}

// GetFine returns fine records for the requested symbols
// POST /api/fundamentals/fine
func (h *FundamentalsHandler) GetFine(w http.ResponseWriter, r *http.Request) {
	var req fundamentals.FineRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	date, err := time.Parse(fundamentals.DateLayout, req.Date)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'date' format (expected YYYY-MM-DD)")
		return
	}

	fine, err := h.source.Fine(r.Context(), date, req.Symbols)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load fine fundamentals")
		respondError(w, http.StatusInternalServerError, "Failed to load fine fundamentals")
		return
	}
	respondJSON(w, http.StatusOK, fine)
}

// GetQuality reports how much of the fine feed is usable for ?date=.
// Coverage is measured over symbols that have fundamental data.
// GET /api/fundamentals/quality
func (h *FundamentalsHandler) GetQuality(w http.ResponseWriter, r *http.Request) {
	date, ok, err := parseDate(r, "date")
	if err != nil || !ok {
		respondError(w, http.StatusBadRequest, "Invalid or missing 'date' (expected YYYY-MM-DD)")
		return
	}

	coarse, err := h.source.Coarse(r.Context(), date)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load coarse fundamentals")
		respondError(w, http.StatusInternalServerError, "Failed to load coarse fundamentals")
		return
	}

	symbols := make([]contracts.Symbol, 0, len(coarse))
	for _, c := range coarse {
		if c.HasFundamentalData {
			symbols = append(symbols, c.Symbol)
		}
	}

	var fine []contracts.FineFundamental
	if len(symbols) > 0 {
		fine, err = h.source.Fine(r.Context(), date, symbols)
		if err != nil {
			h.logger.WithError(err).Error("Failed to load fine fundamentals")
			respondError(w, http.StatusInternalServerError, "Failed to load fine fundamentals")
			return
		}
	}

	respondJSON(w, http.StatusOK, fundamentals.CheckQuality(date, fine))
}
