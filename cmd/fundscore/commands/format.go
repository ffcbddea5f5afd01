package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/wonny/fundscore/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// PrintJobHeader prints a formatted job header
func PrintJobHeader(title string, fields map[string]string, order []string) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", title)
	PrintSeparator()
	for _, key := range order {
		if v := fields[key]; v != "" {
			fmt.Printf("  %-10s: %s\n", key, v)
		}
	}
	PrintSeparator()
}

// PrintJobCompletion prints job completion message
func PrintJobCompletion(title string, duration time.Duration) {
	fmt.Println()
	fmt.Printf("✅ %s completed in %.2fs\n", title, duration.Seconds())
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Println(strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Printf("%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}

// fmtNum renders an optional number ("-" when null)
func fmtNum(v *float64, decimals int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.*f", decimals, *v)
}

// fmtScore renders an optional aggregate score
func fmtScore(a *contracts.AggregateScore) string {
	if a == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", a.AbsSqrtX)
}

// PrintQuarterTable prints one line per evaluated quarter
func PrintQuarterTable(quarters []contracts.EvaluatedQuarter) {
	columns := []string{"Quarter", "Sales", "EPS", "Sales YoY%", "EPS YoY%", "Close", "Price YoY%", "Perf", "Price"}
	widths := []int{9, 12, 8, 10, 10, 10, 10, 8, 8}

	PrintTableHeader(columns, widths)
	for _, q := range quarters {
		PrintTableRow([]string{
			q.Quarter.String(),
			fmtNum(q.TopLine(), 1),
			fmtNum(q.EPS, 2),
			fmtNum(q.SalesYoyPct, 1),
			fmtNum(q.EPSYoyPct, 1),
			fmtNum(q.CurrentDateClosePrice, 2),
			fmtNum(q.PriceYoyPct, 1),
			fmtScore(q.Performance.FinalPerformanceScore),
			fmtScore(q.Performance.FinalPriceScore),
		}, widths)
	}
}

// PrintRunSummary prints a bulk run summary with one line per company
func PrintRunSummary(s *contracts.BulkRunSummary) {
	PrintKeyValue("Run ID", s.RunID, 10)
	PrintKeyValue("Companies", fmt.Sprintf("%d (ok %d, failed %d)", s.Total, s.Succeeded, s.Failed), 10)
	PrintKeyValue("Duration", s.Duration().Round(time.Millisecond).String(), 10)
	fmt.Println()

	widths := []int{14, 8, 8, 8, 40}
	PrintTableHeader([]string{"Symbol", "Status", "Tries", "Quarters", "Error"}, widths)
	for _, item := range s.Items {
		status := "ok"
		if !item.Success {
			status = "FAILED"
		}
		PrintTableRow([]string{
			item.Symbol,
			status,
			fmt.Sprintf("%d", item.Attempts),
			fmt.Sprintf("%d", item.Quarters),
			truncate(item.Error, 40),
		}, widths)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// writeJSON writes v indented to path, or to stdout when path is empty
func writeJSON(path string, v interface{}) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
