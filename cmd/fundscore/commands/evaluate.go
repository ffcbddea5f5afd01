package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/fundscore/internal/collector"
	"github.com/wonny/fundscore/internal/contracts"
	"github.com/wonny/fundscore/internal/pipeline"
)

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate [symbol]",
	Short: "단일 종목 성과 평가",
	Long: `한 종목의 분기 성과를 평가합니다.

두 가지 모드:
- symbol: 원천 사이트에서 분기 실적을 가져와 S0~S5 전체 실행
- --input: 이미 정규화된 분기 레코드(JSON 배열)에 대해 S3~S5만 실행
  (--symbol을 주면 발표일/주가도 조회, 없으면 오프라인)

Example:
  go run ./cmd/fundscore evaluate TCS
  go run ./cmd/fundscore evaluate HDFCBANK --from 2023-Jun --to 2024-Mar --json
  go run ./cmd/fundscore evaluate --input tcs.json --symbol TCS --out scored.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEvaluate,
}

var (
	evalInput       string
	evalSymbol      string
	evalFrom        string
	evalTo          string
	evalOut         string
	evalJSON        bool
	evalStandalone  bool
	evalEntity      string
	evalSave        bool
	evalNoSmoothing bool
)

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVar(&evalInput, "input", "", "canonical records JSON file (skips fetching)")
	evaluateCmd.Flags().StringVar(&evalSymbol, "symbol", "", "company symbol (alternative to the positional argument)")
	evaluateCmd.Flags().StringVar(&evalFrom, "from", "", "first quarter to report (e.g. 2023-Jun)")
	evaluateCmd.Flags().StringVar(&evalTo, "to", "", "last quarter to report (e.g. 2024-Mar)")
	evaluateCmd.Flags().StringVar(&evalOut, "out", "", "write evaluated quarters as JSON to this file")
	evaluateCmd.Flags().BoolVar(&evalJSON, "json", false, "print JSON instead of a table")
	evaluateCmd.Flags().BoolVar(&evalStandalone, "standalone", false, "use standalone instead of consolidated results")
	evaluateCmd.Flags().StringVar(&evalEntity, "entity", "", "force statement shape: bank|nbfc|non_bank")
	evaluateCmd.Flags().BoolVar(&evalSave, "save", false, "store results in PostgreSQL")
	evaluateCmd.Flags().BoolVar(&evalNoSmoothing, "no-smoothing", false, "skip EPS smoothing (S2)")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	symbol := strings.ToUpper(evalSymbol)
	if len(args) == 1 {
		symbol = strings.ToUpper(args[0])
	}
	if symbol == "" && evalInput == "" {
		return fmt.Errorf("symbol or --input required")
	}

	from, to, err := parseQuarterRange(evalFrom, evalTo)
	if err != nil {
		return err
	}

	entity, err := parseEntity(evalEntity)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	a, err := bootstrap(ctx, evalSave)
	if err != nil {
		return err
	}
	defer a.close()

	cfg := collector.ConfigFrom(a.cfg)
	cfg.From, cfg.To = from, to
	cfg.SmoothEPS = cfg.SmoothEPS && !evalNoSmoothing

	rc := a.runConfig(symbol, cfg)
	rc.Consolidated = rc.Consolidated && !evalStandalone
	if entity != "" {
		rc.Entity = entity
	}

	start := time.Now()
	var result *pipeline.RunResult
	if evalInput != "" {
		records, err := readCanonicalRecords(evalInput)
		if err != nil {
			return err
		}

		orch := a.orch
		if symbol == "" {
			orch = pipeline.NewOrchestrator(pipeline.Sources{}, a.log) // 오프라인: 날짜/주가 없음
		}
		result, err = orch.EvaluateSeries(ctx, rc, records)
		if err != nil {
			return fmt.Errorf("evaluate series: %w", err)
		}
	} else {
		result, err = a.orch.Run(ctx, rc)
		if err != nil {
			return fmt.Errorf("evaluate %s: %w", symbol, err)
		}
	}

	if evalSave {
		if symbol == "" {
			return fmt.Errorf("--save requires a symbol")
		}
		if _, err := a.repo.SaveQuarters(ctx, symbol, result.Quarters); err != nil {
			return fmt.Errorf("save quarters: %w", err)
		}
	}

	if evalOut != "" {
		if err := writeJSON(evalOut, result.Quarters); err != nil {
			return err
		}
	}
	if evalJSON {
		return writeJSON("", result.Quarters)
	}

	PrintJobHeader("Quarterly Performance", map[string]string{
		"Symbol":   symbol,
		"Stages":   strings.Join(result.CompletedStages, " → "),
		"Quarters": fmt.Sprintf("%d", len(result.Quarters)),
		"Output":   evalOut,
	}, []string{"Symbol", "Stages", "Quarters", "Output"})
	PrintQuarterTable(result.Quarters)
	PrintJobCompletion("Evaluation", time.Since(start))

	return nil
}

// runConfig resolves a symbol through the watchlist when one is available
func (a *app) runConfig(symbol string, cfg collector.Config) pipeline.RunConfig {
	if wl, err := a.watchlist(); err == nil {
		if e, ok := wl.Find(symbol); ok {
			return collector.RunConfigFor(wl, e, cfg)
		}
	}
	return pipeline.RunConfig{
		Symbol:       symbol,
		Consolidated: true,
		Unit:         cfg.Unit,
		SmoothEPS:    cfg.SmoothEPS,
		From:         cfg.From,
		To:           cfg.To,
	}
}

// readCanonicalRecords reads a JSON array of canonical quarter records
func readCanonicalRecords(path string) ([]contracts.CanonicalQuarterRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	var records []contracts.CanonicalQuarterRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	return records, nil
}

func parseQuarterRange(fromStr, toStr string) (contracts.QuarterLabel, contracts.QuarterLabel, error) {
	var from, to contracts.QuarterLabel
	var err error

	if fromStr != "" {
		if from, err = contracts.ParseQuarterLabel(fromStr); err != nil {
			return from, to, fmt.Errorf("--from: %w", err)
		}
	}
	if toStr != "" {
		if to, err = contracts.ParseQuarterLabel(toStr); err != nil {
			return from, to, fmt.Errorf("--to: %w", err)
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return from, to, fmt.Errorf("--to %s is before --from %s", to, from)
	}
	return from, to, nil
}

func parseEntity(s string) (contracts.EntityType, error) {
	switch contracts.EntityType(strings.ToLower(s)) {
	case "":
		return "", nil
	case contracts.EntityBank:
		return contracts.EntityBank, nil
	case contracts.EntityNBFC:
		return contracts.EntityNBFC, nil
	case contracts.EntityNonBank:
		return contracts.EntityNonBank, nil
	default:
		return "", fmt.Errorf("unknown entity %q (bank|nbfc|non_bank)", s)
	}
}

// signalContext is cancelled on Ctrl+C / SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
