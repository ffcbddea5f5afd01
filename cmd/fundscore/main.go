package main

import (
	"os"

	"github.com/wonny/fundscore/cmd/fundscore/commands"
)

// main is the entry point for the fundscore CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/fundscore [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
