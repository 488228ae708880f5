package fundamentals

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wonny/fscore/internal/contracts"
)

// Snapshot is one day of coarse and fine data as stored in a file
type Snapshot struct {
	Date   time.Time                     `json:"date" yaml:"date"`
	Coarse []contracts.CoarseFundamental `json:"coarse" yaml:"coarse"`
	Fine   []contracts.FineFundamental   `json:"fine" yaml:"fine"`
}

// LoadSnapshot reads a YAML or JSON (by extension) snapshot file.
// Unknown fields are rejected.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap Snapshot
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&snap)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&snap)
	}
	if err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}

	return &snap, nil
}

// FileSource serves a single Snapshot as a contracts.FundamentalsSource
type FileSource struct {
	snapshot *Snapshot
}

// NewFileSource creates a new file-backed source
func NewFileSource(snapshot *Snapshot) *FileSource {
	return &FileSource{snapshot: snapshot}
}

// Coarse returns the coarse records of the snapshot
func (s *FileSource) Coarse(_ context.Context, date time.Time) ([]contracts.CoarseFundamental, error) {
	if err := s.checkDate(date); err != nil {
		return nil, err
	}
	return s.snapshot.Coarse, nil
}

// Fine returns the fine records for symbols, in file order
func (s *FileSource) Fine(_ context.Context, date time.Time, symbols []contracts.Symbol) ([]contracts.FineFundamental, error) {
	if err := s.checkDate(date); err != nil {
		return nil, err
	}

	wanted := make(map[contracts.Symbol]struct{}, len(symbols))
	for _, sym := range symbols {
		wanted[sym] = struct{}{}
	}

	out := make([]contracts.FineFundamental, 0, len(symbols))
	for _, f := range s.snapshot.Fine {
		if _, ok := wanted[f.Symbol]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}

// checkDate rejects requests for another day than the snapshot holds.
// An undated snapshot serves any date.
func (s *FileSource) checkDate(date time.Time) error {
	if s.snapshot.Date.IsZero() || date.IsZero() {
		return nil
	}
	if !sameDay(s.snapshot.Date, date) {
		return fmt.Errorf("snapshot is for %s, requested %s",
			s.snapshot.Date.Format("2006-01-02"), date.Format("2006-01-02"))
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
