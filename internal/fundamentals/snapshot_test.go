package fundamentals

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fscore/internal/contracts"
	"github.com/wonny/fscore/internal/fscore"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLoadSnapshot_YAML(t *testing.T) {
	snap, err := LoadSnapshot("testdata/snapshot.yaml")
	require.NoError(t, err)

	assert.True(t, sameDay(day(2024, 10, 18), snap.Date))
	require.Len(t, snap.Coarse, 4)
	require.Len(t, snap.Fine, 2)

	aapl := snap.Fine[0]
	assert.Equal(t, contracts.Symbol("AAPL"), aapl.Symbol)
	assert.Equal(t, "Technology", aapl.Sector)
	assert.Equal(t, 9, fscore.Score(&aapl))

	weak := snap.Fine[1]
	assert.True(t, weak.ROA.Current.Present())
	assert.False(t, weak.ROA.Prior.Present(), "null is absent")
	assert.False(t, weak.GrossMargin.Current.Present(), "missing key is absent")

	ocf, ok := weak.OperatingCashFlow.Current.Get()
	assert.True(t, ok, "a reported zero is present")
	assert.Zero(t, ocf)
}

func TestLoadSnapshot_JSON(t *testing.T) {
	snap, err := LoadSnapshot("testdata/snapshot.json")
	require.NoError(t, err)

	assert.True(t, snap.Date.IsZero())
	require.Len(t, snap.Fine, 1)
	assert.False(t, snap.Fine[0].ROA.Prior.Present())
	assert.Equal(t, 1, fscore.ShareIssuedScore(&snap.Fine[0]))
}

func TestLoadSnapshot_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadSnapshot(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("coarse: []\nbogus: 1\n"), 0o644))
	_, err = LoadSnapshot(unknown)
	assert.Error(t, err, "unknown fields are rejected")

	badJSON := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badJSON, []byte(`{"fine": [{"symbol": "X", "roa": {"current": "high"}}]}`), 0o644))
	_, err = LoadSnapshot(badJSON)
	assert.Error(t, err)
}

func TestFileSource(t *testing.T) {
	snap, err := LoadSnapshot("testdata/snapshot.yaml")
	require.NoError(t, err)
	src := NewFileSource(snap)
	ctx := context.Background()

	coarse, err := src.Coarse(ctx, day(2024, 10, 18))
	require.NoError(t, err)
	assert.Len(t, coarse, 4)

	fine, err := src.Fine(ctx, day(2024, 10, 18), []contracts.Symbol{"WEAK", "AAPL", "NOPE"})
	require.NoError(t, err)
	require.Len(t, fine, 2)
	assert.Equal(t, contracts.Symbol("AAPL"), fine[0].Symbol, "file order is kept")
	assert.Equal(t, contracts.Symbol("WEAK"), fine[1].Symbol)

	fine, err = src.Fine(ctx, time.Time{}, nil)
	require.NoError(t, err)
	assert.Empty(t, fine)
}

func TestFileSource_DateMismatch(t *testing.T) {
	src := NewFileSource(&Snapshot{Date: day(2024, 10, 18)})

	_, err := src.Coarse(context.Background(), day(2024, 10, 17))
	assert.ErrorContains(t, err, "2024-10-18")

	_, err = src.Fine(context.Background(), day(2024, 10, 17), []contracts.Symbol{"A"})
	assert.Error(t, err)

	// an undated snapshot serves any day
	undated := NewFileSource(&Snapshot{})
	_, err = undated.Coarse(context.Background(), day(2001, 1, 2))
	assert.NoError(t, err)
}
