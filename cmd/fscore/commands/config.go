package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wonny/fscore/internal/strategyconfig"
	"github.com/wonny/fscore/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "전략 설정 관리",
	Long: `전략 YAML 파일을 검증하거나 적용될 설정을 출력합니다.

Subcommands:
  validate  - 필수 제약 검증 + 권장 위반 경고
  show      - 실제 적용되는 설정 출력 (threshold override 반영)

Example:
  go run ./cmd/fscore config validate
  go run ./cmd/fscore config validate --strategy config/strategy/fscore_v1.yaml
  go run ./cmd/fscore config show --threshold 8`,
}

var (
	configValidateCmd = &cobra.Command{
		Use:   "validate",
		Short: "전략 파일 검증",
		RunE:  runConfigValidate,
	}

	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "적용될 설정 출력",
		RunE:  runConfigShow,
	}
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
}

// strategyPath resolves --strategy against STRATEGY_FILE
func strategyPath() (string, error) {
	if strategyFile != "" {
		return strategyFile, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	return cfg.StrategyFile, nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	path, err := strategyPath()
	if err != nil {
		return err
	}

	// 파일이 없으면 Default()로 대체하지 않고 실패
	cfg, _, err := strategyconfig.Load(path)
	if err != nil {
		return fmt.Errorf("invalid strategy %s: %w", path, err)
	}

	hash, err := strategyconfig.Hash(cfg)
	if err != nil {
		return err
	}

	PrintHeader(out, "Strategy Config",
		[2]string{"File", path},
		[2]string{"ID", cfg.Meta.StrategyID},
		[2]string{"Version", cfg.Meta.Version},
		[2]string{"Hash", hash[:16]},
	)

	warnings := strategyconfig.Warn(cfg)
	for _, w := range warnings {
		PrintWarning(out, fmt.Sprintf("[%s] %s", w.Code, w.Message))
	}

	PrintSuccess(out, fmt.Sprintf("Valid (%d warnings)", len(warnings)))
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	hash, err := strategyconfig.Hash(rt.strategy)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(rt.strategy)
	if err != nil {
		return fmt.Errorf("encode strategy: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# hash: %s\n", hash)
	fmt.Fprintf(out, "# equity budget: %s\n", rt.strategy.EquityBudget())
	_, err = out.Write(data)
	return err
}
