package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	watchlistPath string
	verbose       bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fundscore",
	Short: "Quarterly fundamentals evaluation",
	Long: `fundscore CLI

분기 실적 → 성장률 → 발표일/주가 → PE 기반 성과 점수.
S0 fetch → S1 extract → S2 smoothing → S3 growth → S4 reconcile → S5 scoring

Usage:
  go run ./cmd/fundscore [command]

Examples:
  go run ./cmd/fundscore evaluate TCS --from 2023-Jun
  go run ./cmd/fundscore evaluate --input tcs.json --out scored.json
  go run ./cmd/fundscore bulk --save
  go run ./cmd/fundscore api
  go run ./cmd/fundscore scheduler start
  go run ./cmd/fundscore db-check --migrate`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&watchlistPath, "watchlist", "", "watchlist YAML (default: WATCHLIST_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
