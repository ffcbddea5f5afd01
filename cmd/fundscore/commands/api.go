package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/fundscore/internal/api"
	"github.com/wonny/fundscore/internal/api/handlers"
	"github.com/wonny/fundscore/internal/collector"
	"github.com/wonny/fundscore/internal/contracts"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health                            - Health check
  GET  /api/performance/{symbol}          - 저장된 분기 성과 조회 (?from=&to=)
  POST /api/performance/{symbol}/evaluate - 즉시 평가 (+ 저장)
  GET  /api/runs/latest                   - 최근 일괄 평가 요약
  GET  /api/watchlist                     - 평가 대상 종목

Example:
  go run ./cmd/fundscore api
  go run ./cmd/fundscore api --port 8080 --no-db`,
	RunE: runAPIServer,
}

var (
	apiPort string
	apiNoDB bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT)")
	apiCmd.Flags().BoolVar(&apiNoDB, "no-db", false, "run without PostgreSQL (evaluate only)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := bootstrap(ctx, !apiNoDB)
	if err != nil {
		return err
	}
	defer a.close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	// watchlist는 선택 사항
	wl, err := a.watchlist()
	if err != nil {
		a.log.WithError(err).Warn("Watchlist unavailable, symbols use defaults")
		wl = nil
	}

	var repo contracts.PerformanceRepository
	if a.repo != nil {
		repo = a.repo
	}

	handler := handlers.NewPerformanceHandler(repo, a.orch, wl, collector.ConfigFrom(a.cfg), a.log)
	server := api.New(a.cfg, a.log, api.NewRouter(handler, a.log))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
