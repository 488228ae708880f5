package commands

import (
	"github.com/spf13/cobra"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "DB 스키마 생성",
	Long: `fscore 스키마와 테이블을 생성합니다. 이미 있으면 건너뜁니다.

Example:
  go run ./cmd/fscore migrate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmdContext(cmd)

		rt, err := setup(cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		db, err := rt.connectDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		PrintSuccess(cmd.OutOrStdout(), "Schema is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
