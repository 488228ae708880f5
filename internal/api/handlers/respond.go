package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 8 << 20

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// decodeBody decodes a JSON body, rejecting unknown fields
func decodeBody(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

// parseDate reads a YYYY-MM-DD query parameter. Missing means ok=false.
func parseDate(r *http.Request, key string) (t time.Time, ok bool, err error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return time.Time{}, false, nil
	}
	t, err = time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}
