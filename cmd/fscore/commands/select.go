package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/fscore/internal/fundamentals"
	"github.com/wonny/fscore/internal/scheduler/jobs"
)

// selectCmd represents the select command
var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "유니버스 선정 실행",
	Long: `coarse → fine 선정을 한 번 실행합니다.

데이터 소스:
  --file   스냅샷 파일 (YAML/JSON)
  --url    원격 fscore API (/api/fundamentals)
  (없음)   PostgreSQL (DATABASE_URL)

Example:
  go run ./cmd/fscore select --file snapshot.yaml
  go run ./cmd/fscore select --date 2024-10-18 --save --publish
  go run ./cmd/fscore select --url http://localhost:8089 --date 2024-10-18`,
	RunE: runSelect,
}

var (
	selectSource  sourceFlags
	selectDate    string
	selectSave    bool
	selectPublish bool
	selectJSON    bool
)

func init() {
	rootCmd.AddCommand(selectCmd)

	selectCmd.Flags().StringVarP(&selectSource.file, "file", "f", "", "snapshot file (YAML or JSON)")
	selectCmd.Flags().StringVar(&selectSource.url, "url", "", "fscore API base URL")
	selectCmd.Flags().Float64Var(&selectSource.rps, "rps", 5, "request rate limit for --url (0 = unlimited)")
	selectCmd.Flags().StringVar(&selectDate, "date", "", "selection date (YYYY-MM-DD)")
	selectCmd.Flags().BoolVar(&selectSave, "save", false, "store the result in PostgreSQL")
	selectCmd.Flags().BoolVar(&selectPublish, "publish", false, "publish the result to Redis")
	selectCmd.Flags().BoolVar(&selectJSON, "json", false, "print JSON instead of a table")
	selectCmd.MarkFlagsMutuallyExclusive("file", "url")
}

func runSelect(cmd *cobra.Command, args []string) error {
	ctx := cmdContext(cmd)

	rt, err := setup(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	useDB := selectSave || (selectSource.file == "" && selectSource.url == "")
	var b *backends
	if useDB || selectPublish {
		b, err = rt.openBackends(ctx, useDB)
		if err != nil {
			return err
		}
		defer b.close()
	} else {
		b = &backends{}
	}
	if selectPublish && b.publisher == nil {
		return fmt.Errorf("--publish requires REDIS_ENABLED=true")
	}

	source, snapDate, err := rt.openSource(selectSource, b.db)
	if err != nil {
		return err
	}
	date, err := parseDateFlag(selectDate)
	if err != nil {
		return err
	}
	if date.IsZero() {
		date = snapDate
	}
	if date.IsZero() && selectSource.file == "" {
		return fmt.Errorf("--date is required unless the snapshot file is dated")
	}

	store := b.store()
	if !selectSave {
		store = nil
	}
	if store != nil && date.IsZero() {
		return fmt.Errorf("--date is required with --save when the snapshot has no date")
	}
	publisher := b.publish()
	if !selectPublish {
		publisher = nil
	}

	job := jobs.NewSelectionJob(rt.selector, source, store, publisher, "", nil, rt.log)
	selection, err := job.RunFor(ctx, date)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if selectJSON {
		return PrintJSON(out, selection)
	}

	dateLabel := "-"
	if !date.IsZero() {
		dateLabel = date.Format(fundamentals.DateLayout)
	}
	PrintHeader(out, "Universe Selection",
		[2]string{"Run ID", selection.RunID.String()},
		[2]string{"Date", dateLabel},
		[2]string{"Threshold", strconv.Itoa(selection.Threshold)},
		[2]string{"Coarse", strconv.Itoa(selection.CoarseCount)},
		[2]string{"Scored", strconv.Itoa(selection.ScoredCount)},
	)

	if selection.Count() == 0 {
		PrintWarning(out, "No symbol reached the threshold")
		return nil
	}

	widths := []int{10, 6}
	PrintTableHeader(out, []string{"Symbol", "Score"}, widths)
	for _, sym := range selection.Symbols {
		PrintTableRow(out, []string{string(sym), strconv.Itoa(selection.Scores[sym])}, widths)
	}
	fmt.Fprintln(out)

	var done []string
	if store != nil {
		done = append(done, "saved")
	}
	if publisher != nil {
		done = append(done, "published")
	}
	msg := fmt.Sprintf("%d symbols selected", selection.Count())
	if len(done) > 0 {
		msg += " (" + strings.Join(done, ", ") + ")"
	}
	PrintSuccess(out, msg)
	return nil
}
