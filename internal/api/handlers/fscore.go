package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/wonny/fscore/internal/contracts"
	"github.com/wonny/fscore/internal/fscore"
	"github.com/wonny/fscore/pkg/logger"
)

// FScoreHandler scores fundamentals snapshots on demand
type FScoreHandler struct {
	threshold int
	logger    *logger.Logger
}

// NewFScoreHandler creates a new F-Score handler
func NewFScoreHandler(threshold int, log *logger.Logger) *FScoreHandler {
	return &FScoreHandler{threshold: threshold, logger: log}
}

// ScoreResult is the response for one snapshot
type ScoreResult struct {
	fscore.Breakdown
	Passed bool `json:"passed"`
}

// Score evaluates one snapshot or an array of snapshots
// POST /api/fscore
func (h *FScoreHandler) Score(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var batch []contracts.FineFundamental
		if err := strictUnmarshal(trimmed, &batch); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		results := make([]ScoreResult, len(batch))
		for i := range batch {
			results[i] = h.evaluate(&batch[i])
		}
		respondJSON(w, http.StatusOK, results)
		return
	}

	var single contracts.FineFundamental
	if err := strictUnmarshal(trimmed, &single); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	respondJSON(w, http.StatusOK, h.evaluate(&single))
}

func (h *FScoreHandler) evaluate(f *contracts.FineFundamental) ScoreResult {
	b := fscore.Evaluate(f)
	return ScoreResult{Breakdown: b, Passed: b.Total >= h.threshold}
}

func strictUnmarshal(data []byte, dest interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}
