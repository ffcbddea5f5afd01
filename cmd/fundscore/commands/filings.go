package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/fundscore/internal/collector"
	"github.com/wonny/fundscore/internal/contracts"
	"github.com/wonny/fundscore/internal/filings"
	"github.com/wonny/fundscore/pkg/logger"
)

// filingsCmd represents the filings command
var filingsCmd = &cobra.Command{
	Use:   "filings",
	Short: "신규 실적 공시 확인",
	Long: `거래소 실적 공시를 조회해 watchlist 종목의 새 공시를 보여줍니다.
이미 본 공시는 Redis seen-set (REDIS_ENABLED=false면 프로세스 메모리)로 걸러집니다.
목록 조회만으로는 seen 처리하지 않으며, --evaluate일 때만 기록합니다.

Example:
  go run ./cmd/fundscore filings --lookback 72h
  go run ./cmd/fundscore filings --evaluate`,
	RunE: runFilings,
}

var (
	filingsLookback time.Duration
	filingsEvaluate bool
)

func init() {
	rootCmd.AddCommand(filingsCmd)

	filingsCmd.Flags().DurationVar(&filingsLookback, "lookback", 48*time.Hour, "how far back to list filings")
	filingsCmd.Flags().BoolVar(&filingsEvaluate, "evaluate", false, "evaluate companies with new filings")
}

func runFilings(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := bootstrap(ctx, false)
	if err != nil {
		return err
	}
	defer a.close()

	wl, err := a.watchlist()
	if err != nil {
		return err
	}

	observer := filings.NewObserver(a.bse, filings.NewSeenSet(a.redis), wl, filingsLookback, a.log)
	matches, err := newFilings(ctx, observer, filingsEvaluate)
	if err != nil {
		return err
	}

	if len(matches) == 0 {
		PrintSuccess("No new result filings")
		return nil
	}

	widths := []int{14, 17, 50}
	PrintTableHeader([]string{"Symbol", "Announced", "Subject"}, widths)
	for _, m := range matches {
		PrintTableRow([]string{
			m.Symbol,
			m.Filing.AnnouncedAt.Format("2006-01-02 15:04"),
			truncate(m.Filing.Subject, 50),
		}, widths)
	}

	if !filingsEvaluate {
		return nil
	}

	fmt.Println()
	summary, err := a.collector().EvaluateSymbols(ctx, wl, filings.Symbols(matches), collector.ConfigFrom(a.cfg))
	if err != nil {
		return fmt.Errorf("evaluate filed companies: %w", err)
	}
	PrintRunSummary(summary)
	releaseFailed(ctx, observer, matches, summary, a.log)

	return nil
}

// newFilings marks the filings as seen only when they are about to be
// evaluated; listing leaves them for the scheduled filings job.
func newFilings(ctx context.Context, observer *filings.Observer, mark bool) ([]filings.Match, error) {
	if mark {
		return observer.Poll(ctx)
	}
	return observer.Pending(ctx)
}

// releaseFailed un-marks filings of companies whose evaluation failed
func releaseFailed(ctx context.Context, observer *filings.Observer, matches []filings.Match, summary *contracts.BulkRunSummary, log *logger.Logger) {
	failed := make(map[string]bool)
	for _, item := range summary.Items {
		if !item.Success {
			failed[item.Symbol] = true
		}
	}
	for _, m := range matches {
		if !failed[m.Symbol] {
			continue
		}
		if err := observer.Release(ctx, m); err != nil {
			log.WithError(err).WithField("filing_id", m.Filing.ID).Warn("Failed to release filing")
		}
	}
}
