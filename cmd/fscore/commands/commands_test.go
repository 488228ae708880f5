package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fscore/internal/contracts"
)

const (
	snapshotFile = "testdata/snapshot.yaml"
	strategyYAML = "../../../config/strategy/fscore_v1.yaml"
)

// resetFlags restores every flag to its default so that commands can run
// more than once per process
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args and returns stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("FSCORE_THRESHOLD", "-1")
	t.Setenv("ENV", "development")

	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func TestScoreCommand_JSON(t *testing.T) {
	out, err := execute(t, "score", "--file", snapshotFile, "--json", "--strategy", strategyYAML)
	require.NoError(t, err)

	var rows []scoreRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)

	assert.Equal(t, contracts.Symbol("AAPL"), rows[0].Symbol)
	assert.Equal(t, 9, rows[0].Total)
	assert.True(t, rows[0].Passed)

	// WEAK reports OCF = 0: present, so accruals holds (0 / 500000 > -0.02)
	assert.Equal(t, contracts.Symbol("WEAK"), rows[1].Symbol)
	assert.Equal(t, 1, rows[1].Total)
	assert.Equal(t, 1, rows[1].Components["accruals"])
	assert.Equal(t, 0, rows[1].Components["operating_cash_flow"])
	assert.False(t, rows[1].Passed)
}

func TestScoreCommand_ThresholdOverride(t *testing.T) {
	out, err := execute(t, "score", "--file", snapshotFile, "--json", "--threshold", "0")
	require.NoError(t, err)

	var rows []scoreRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	for _, row := range rows {
		assert.True(t, row.Passed, row.Symbol)
	}
}

func TestScoreCommand_Table(t *testing.T) {
	out, err := execute(t, "score", "--file", snapshotFile)
	require.NoError(t, err)

	assert.Contains(t, out, "AAPL")
	assert.Contains(t, out, "1/2 passed (F-Score >= 7)")
	assert.Contains(t, out, "Coverage 62.5% (1/2 complete)")
	assert.Contains(t, out, "Low coverage: assets_turnover")
}

func TestScoreCommand_RequiresFile(t *testing.T) {
	_, err := execute(t, "score")
	assert.Error(t, err)
}

func TestSelectCommand_File(t *testing.T) {
	out, err := execute(t, "select", "--file", snapshotFile, "--json", "--strategy", strategyYAML)
	require.NoError(t, err)

	var sel contracts.Selection
	require.NoError(t, json.Unmarshal([]byte(out), &sel))

	assert.Equal(t, []contracts.Symbol{"AAPL"}, sel.Symbols)
	assert.Equal(t, map[contracts.Symbol]int{"AAPL": 9}, sel.Scores)
	assert.Equal(t, 2, sel.CoarseCount, "penny stock and no-fundamentals symbol dropped")
	assert.Equal(t, 7, sel.Threshold)
	assert.Equal(t, "2024-10-18", sel.Date.Format("2006-01-02"))
}

func TestSelectCommand_Table(t *testing.T) {
	out, err := execute(t, "select", "--file", snapshotFile)
	require.NoError(t, err)

	assert.Contains(t, out, "Universe Selection")
	assert.Contains(t, out, "1 symbols selected")
}

func TestSelectCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no source without database", []string{"select"}, "DATABASE_URL"},
		{"url needs date", []string{"select", "--url", "http://127.0.0.1:1"}, "--date"},
		{"bad date", []string{"select", "--file", snapshotFile, "--date", "18/10/2024"}, "invalid date"},
		{"publish needs redis", []string{"select", "--file", snapshotFile, "--publish"}, "REDIS_ENABLED"},
		{"file and url", []string{"select", "--file", snapshotFile, "--url", "http://x"}, "none of the others"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestImportCommand_UndatedSnapshot(t *testing.T) {
	_, err := execute(t, "import", "--file", "testdata/undated.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--date")
}

func TestConfigValidate(t *testing.T) {
	out, err := execute(t, "config", "validate", "--strategy", strategyYAML)
	require.NoError(t, err)

	assert.Contains(t, out, "fscore_v1")
	assert.Contains(t, out, "Valid (0 warnings)")
}

func TestConfigValidate_MissingFile(t *testing.T) {
	_, err := execute(t, "config", "validate", "--strategy", "testdata/missing.yaml")
	assert.Error(t, err)
}

func TestConfigShow_ThresholdOverride(t *testing.T) {
	out, err := execute(t, "config", "show", "--strategy", strategyYAML, "--threshold", "8")
	require.NoError(t, err)

	assert.Contains(t, out, "fscore_threshold: 8")
	assert.Contains(t, out, "# equity budget: 0.48")
}

func TestSimulateCommand(t *testing.T) {
	out, err := execute(t, "simulate", "--file", snapshotFile, "--json", "--strategy", strategyYAML)
	require.NoError(t, err)

	var sim simulation
	require.NoError(t, json.Unmarshal([]byte(out), &sim))

	assert.Equal(t, []contracts.Symbol{"AAPL"}, sim.Added)
	assert.Empty(t, sim.Removed)

	weights := make(map[contracts.Symbol]decimal.Decimal)
	for _, a := range sim.Allocations {
		weights[a.Symbol] = a.Weight
	}
	want := map[contracts.Symbol]string{
		"AAPL": "0.48",
		"SPY":  "0.35",
		"GLD":  "0.15",
		"VIXY": "0.02",
	}
	require.Len(t, weights, len(want))
	for sym, w := range want {
		assert.True(t, decimal.RequireFromString(w).Equal(weights[sym]), "%s = %s", sym, weights[sym])
	}
}

func TestParseDateFlag(t *testing.T) {
	d, err := parseDateFlag("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	d, err = parseDateFlag("2024-10-18")
	require.NoError(t, err)
	assert.Equal(t, "2024-10-18", d.Format("2006-01-02"))

	_, err = parseDateFlag("2024/10/18")
	assert.Error(t, err)
}

func TestSchedulerList_FileSource(t *testing.T) {
	out, err := execute(t, "scheduler", "list", "--file", snapshotFile, "--strategy", strategyYAML)
	require.NoError(t, err)

	assert.Contains(t, out, "universe_selection")
	assert.Contains(t, out, "0 0 9 * * 1-5")
	assert.NotContains(t, out, "selection_retention", "retention needs a database")
}

func TestSchedulerRun_UnknownJob(t *testing.T) {
	_, err := execute(t, "scheduler", "run", "nope", "--file", snapshotFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}
