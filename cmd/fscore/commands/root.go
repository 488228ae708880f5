package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	threshold    int
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fscore",
	Short: "Piotroski F-Score 유니버스 선정",
	Long: `fscore CLI

재무제표 9개 항목으로 F-Score(0-9)를 계산하고
임계값 이상 종목으로 투자 유니버스를 선정합니다.

Usage:
  go run ./cmd/fscore [command]

Examples:
  go run ./cmd/fscore score --file snapshot.yaml
  go run ./cmd/fscore select --file snapshot.yaml
  go run ./cmd/fscore select --date 2024-10-18 --save --publish
  go run ./cmd/fscore config validate
  go run ./cmd/fscore api --with-scheduler`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML (default: $STRATEGY_FILE)")
	rootCmd.PersistentFlags().IntVar(&threshold, "threshold", -1, "F-Score threshold override (0-9, -1 = strategy value)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
