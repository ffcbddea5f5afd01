package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/fundscore/internal/collector"
)

// bulkCmd represents the bulk command
var bulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "watchlist 일괄 평가",
	Long: `watchlist의 모든 종목(또는 --symbols 일부)을 병렬로 평가합니다.

- 워커 수: PIPELINE_WORKERS (기본 3) 또는 --workers
- 종목별 재시도: PIPELINE_MAX_RETRIES (기본 2, 선형 backoff)
- --save: 분기 결과와 실행 요약을 PostgreSQL에 저장

Example:
  go run ./cmd/fundscore bulk
  go run ./cmd/fundscore bulk --symbols TCS,INFY --from 2023-Jun
  go run ./cmd/fundscore bulk --save --workers 5`,
	RunE: runBulk,
}

var (
	bulkSymbols string
	bulkFrom    string
	bulkTo      string
	bulkWorkers int
	bulkSave    bool
	bulkOut     string
)

func init() {
	rootCmd.AddCommand(bulkCmd)

	bulkCmd.Flags().StringVar(&bulkSymbols, "symbols", "", "comma-separated subset of the watchlist")
	bulkCmd.Flags().StringVar(&bulkFrom, "from", "", "first quarter to report")
	bulkCmd.Flags().StringVar(&bulkTo, "to", "", "last quarter to report")
	bulkCmd.Flags().IntVar(&bulkWorkers, "workers", 0, "concurrent companies (default: PIPELINE_WORKERS)")
	bulkCmd.Flags().BoolVar(&bulkSave, "save", false, "store results in PostgreSQL")
	bulkCmd.Flags().StringVar(&bulkOut, "out", "", "write the run summary as JSON to this file")
}

func runBulk(cmd *cobra.Command, args []string) error {
	from, to, err := parseQuarterRange(bulkFrom, bulkTo)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	a, err := bootstrap(ctx, bulkSave)
	if err != nil {
		return err
	}
	defer a.close()

	wl, err := a.watchlist()
	if err != nil {
		return err
	}

	symbols := wl.Symbols()
	if bulkSymbols != "" {
		symbols = splitSymbols(bulkSymbols)
	}

	cfg := collector.ConfigFrom(a.cfg)
	cfg.From, cfg.To = from, to
	if bulkWorkers > 0 {
		cfg.Workers = bulkWorkers
	}

	PrintJobHeader("Bulk Evaluation", map[string]string{
		"Watchlist": a.wlPath,
		"Companies": fmt.Sprintf("%d", len(symbols)),
		"Workers":   fmt.Sprintf("%d", cfg.Workers),
		"Storage":   fmt.Sprintf("%v", bulkSave),
	}, []string{"Watchlist", "Companies", "Workers", "Storage"})

	start := time.Now()
	summary, err := a.collector().EvaluateSymbols(ctx, wl, symbols, cfg)
	if err != nil {
		return fmt.Errorf("bulk evaluation: %w", err)
	}

	PrintRunSummary(summary)

	if bulkOut != "" {
		if err := writeJSON(bulkOut, summary); err != nil {
			return err
		}
	}

	if summary.Failed > 0 {
		PrintWarning(fmt.Sprintf("%d of %d companies failed", summary.Failed, summary.Total))
	}
	PrintJobCompletion("Bulk evaluation", time.Since(start))

	return nil
}

func splitSymbols(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToUpper(p))
		}
	}
	return out
}
