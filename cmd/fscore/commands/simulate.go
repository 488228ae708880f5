package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/fscore/internal/algorithm"
	"github.com/wonny/fscore/internal/contracts"
	"github.com/wonny/fscore/internal/fundamentals"
)

// simulateCmd represents the simulate command
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "전략 1회 리밸런싱 시뮬레이션",
	Long: `스냅샷 하루치로 전략을 한 번 실행해 목표 비중을 출력합니다.

순서:
  1. Initialize (헤지 종목 추가)
  2. coarse → fine 유니버스 선정
  3. OnSecuritiesChanged (섹터 비중 리밸런싱)
  4. OnData (coarse 가격으로 헤지 비중 적용)

주문은 실행하지 않습니다. 헤지 비중은 벤치마크(SPY) 가격이
스냅샷 coarse 데이터에 있을 때만 적용됩니다.

Example:
  go run ./cmd/fscore simulate --file snapshot.yaml`,
	RunE: runSimulate,
}

var (
	simulateFile string
	simulateJSON bool
)

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVarP(&simulateFile, "file", "f", "", "snapshot file (YAML or JSON)")
	simulateCmd.Flags().BoolVar(&simulateJSON, "json", false, "print JSON instead of a table")
	_ = simulateCmd.MarkFlagRequired("file")
}

// simulation is the JSON form of one run
type simulation struct {
	Added       []contracts.Symbol     `json:"added"`
	Removed     []contracts.Symbol     `json:"removed"`
	Allocations []algorithm.Allocation `json:"allocations"`
	Log         []string               `json:"log"`
}

func runSimulate(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	snap, err := fundamentals.LoadSnapshot(simulateFile)
	if err != nil {
		return err
	}

	host := algorithm.NewPaperHost()
	alg := algorithm.New(rt.strategy, rt.selector, rt.log)
	if err := alg.Initialize(host); err != nil {
		return err
	}

	changes, err := host.RunSelection(snap.Coarse, snap.Fine)
	if err != nil {
		return err
	}
	if err := alg.OnSecuritiesChanged(changes); err != nil {
		return err
	}

	prices := make(map[contracts.Symbol]float64, len(snap.Coarse))
	for _, c := range snap.Coarse {
		prices[c.Symbol] = c.Price
	}
	if err := alg.OnData(algorithm.Slice{Time: snap.Date, Prices: prices}); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if simulateJSON {
		return PrintJSON(out, simulation{
			Added:       changes.Added,
			Removed:     changes.Removed,
			Allocations: host.Allocations(),
			Log:         host.Logs(),
		})
	}

	PrintHeader(out, "Simulation",
		[2]string{"Strategy", rt.strategy.Meta.StrategyID},
		[2]string{"Cash", rt.strategy.Backtest.Cash.String()},
		[2]string{"Threshold", strconv.Itoa(rt.selector.Threshold())},
		[2]string{"Added", strconv.Itoa(len(changes.Added))},
	)

	if _, ok := prices[algorithm.BenchmarkSymbol]; !ok {
		PrintWarning(out, fmt.Sprintf("No %s price in snapshot, hedges not applied", algorithm.BenchmarkSymbol))
	}

	widths := []int{10, 10, 14}
	PrintTableHeader(out, []string{"Symbol", "Weight", "Value"}, widths)
	for _, a := range host.Allocations() {
		PrintTableRow(out, []string{
			string(a.Symbol),
			a.Weight.StringFixed(4),
			a.Value.StringFixed(2),
		}, widths)
	}
	fmt.Fprintln(out)
	return nil
}
