package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/fscore/internal/fscore"
	"github.com/wonny/fscore/internal/fundamentals"
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "스냅샷 파일의 F-Score 계산",
	Long: `스냅샷 파일의 fine 레코드마다 F-Score(0-9)와 항목별 점수를 출력합니다.

Coarse 필터는 적용하지 않습니다.

Example:
  go run ./cmd/fscore score --file snapshot.yaml
  go run ./cmd/fscore score --file snapshot.json --json`,
	RunE: runScore,
}

var (
	scoreFile string
	scoreJSON bool
)

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringVarP(&scoreFile, "file", "f", "", "snapshot file (YAML or JSON)")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "print JSON instead of a table")
	_ = scoreCmd.MarkFlagRequired("file")
}

// scoreRow is one evaluated record
type scoreRow struct {
	fscore.Breakdown
	Passed bool `json:"passed"`
}

func runScore(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	snap, err := fundamentals.LoadSnapshot(scoreFile)
	if err != nil {
		return err
	}

	threshold := rt.selector.Threshold()
	rows := make([]scoreRow, 0, len(snap.Fine))
	for i := range snap.Fine {
		b := fscore.Evaluate(&snap.Fine[i])
		rows = append(rows, scoreRow{Breakdown: b, Passed: b.Total >= threshold})
	}

	out := cmd.OutOrStdout()
	if scoreJSON {
		return PrintJSON(out, rows)
	}

	PrintHeader(out, "F-Score",
		[2]string{"File", scoreFile},
		[2]string{"Threshold", strconv.Itoa(threshold)},
	)

	components := fscore.Components()
	columns := []string{"Symbol"}
	widths := []int{8}
	for i := range components {
		columns = append(columns, fmt.Sprintf("F%d", i+1))
		widths = append(widths, 2)
	}
	columns = append(columns, "Total", "Pass")
	widths = append(widths, 5, 4)

	PrintTableHeader(out, columns, widths)
	passed := 0
	for _, row := range rows {
		values := []string{string(row.Symbol)}
		for _, c := range components {
			values = append(values, strconv.Itoa(row.Components[c.Name]))
		}
		mark := ""
		if row.Passed {
			mark = "✓"
			passed++
		}
		values = append(values, strconv.Itoa(row.Total), mark)
		PrintTableRow(out, values, widths)
	}

	fmt.Fprintln(out)
	PrintInfo(out, fmt.Sprintf("%d/%d passed (F-Score >= %d)", passed, len(rows), threshold))

	// 결측 항목은 0점 처리되므로 커버리지를 함께 표시
	quality := fundamentals.CheckQuality(snap.Date, snap.Fine)
	PrintInfo(out, fmt.Sprintf("Coverage %.1f%% (%d/%d complete)", quality.Score*100, quality.Complete, quality.Records))
	if !quality.Passed(fundamentals.DefaultMinCoverage) {
		PrintWarning(out, fmt.Sprintf("Low coverage: %s", strings.Join(quality.Weakest(fundamentals.DefaultMinCoverage), ", ")))
	}
	return nil
}
