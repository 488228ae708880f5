package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/fscore/internal/fundamentals"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "스냅샷 파일을 DB에 적재",
	Long: `스냅샷 파일의 coarse/fine 레코드를 PostgreSQL에 upsert 합니다.

같은 (날짜, 종목) 레코드는 덮어씁니다.

Example:
  go run ./cmd/fscore import --file snapshot.yaml
  go run ./cmd/fscore import --file snapshot.json --date 2024-10-18`,
	RunE: runImport,
}

var (
	importFile string
	importDate string
)

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "snapshot file (YAML or JSON)")
	importCmd.Flags().StringVar(&importDate, "date", "", "trade date (default: the snapshot date)")
	_ = importCmd.MarkFlagRequired("file")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmdContext(cmd)

	rt, err := setup(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	snap, err := fundamentals.LoadSnapshot(importFile)
	if err != nil {
		return err
	}

	date, err := parseDateFlag(importDate)
	if err != nil {
		return err
	}
	if date.IsZero() {
		date = snap.Date
	}
	if date.IsZero() {
		return fmt.Errorf("snapshot has no date, pass --date")
	}

	db, err := rt.connectDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := fundamentals.NewPostgresSource(db.Pool).Import(ctx, date, snap); err != nil {
		return err
	}

	rt.log.WithFields(map[string]interface{}{
		"date":   date.Format(fundamentals.DateLayout),
		"coarse": len(snap.Coarse),
		"fine":   len(snap.Fine),
	}).Info("Snapshot imported")

	PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Imported %d coarse / %d fine records for %s",
		len(snap.Coarse), len(snap.Fine), date.Format(fundamentals.DateLayout)))
	return nil
}
