package commands

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/fundscore/internal/repository"
	"github.com/wonny/fundscore/pkg/config"
	"github.com/wonny/fundscore/pkg/database"
)

// dbCheckCmd represents the db-check command
var dbCheckCmd = &cobra.Command{
	Use:   "db-check",
	Short: "PostgreSQL 연결 테스트",
	Long: `데이터베이스 연결을 테스트하고 풀 통계를 표시합니다.

이 명령어는:
- config에서 DATABASE_URL 로드
- Ping + Health Check
- --migrate: 테이블 생성 (data.quarterly_performance, data.evaluation_runs)
- 최근 일괄 평가 요약 표시

Example:
  go run ./cmd/fundscore db-check
  go run ./cmd/fundscore db-check --migrate`,
	RunE: runDBCheck,
}

var dbCheckMigrate bool

func init() {
	rootCmd.AddCommand(dbCheckCmd)

	dbCheckCmd.Flags().BoolVar(&dbCheckMigrate, "migrate", false, "create missing tables")
}

func runDBCheck(cmd *cobra.Command, args []string) error {
	fmt.Println("=== fundscore Database Check ===")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("❌ Failed to load config: %w", err)
	}
	fmt.Printf("✅ Config loaded (ENV: %s)\n", cfg.Env)
	fmt.Printf("   Database URL: %s\n\n", maskPassword(cfg.Database.URL))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("❌ Failed to connect to database: %w", err)
	}
	defer db.Close()
	fmt.Println("✅ Database connection established")

	status, err := db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("❌ Health check failed: %w", err)
	}

	fmt.Println("✅ Health Check Results:")
	PrintKeyValue("Healthy", fmt.Sprintf("%v", status.Healthy), 20)
	PrintKeyValue("Response Time", status.ResponseTime.String(), 20)
	PrintKeyValue("Max Connections", fmt.Sprintf("%d", status.Stats.MaxConns), 20)
	PrintKeyValue("Total Connections", fmt.Sprintf("%d", status.Stats.TotalConns), 20)
	PrintKeyValue("Idle Connections", fmt.Sprintf("%d", status.Stats.IdleConns), 20)
	fmt.Println()

	repo := repository.NewRepository(db.Pool)

	if dbCheckMigrate {
		if err := repo.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("❌ %w", err)
		}
		PrintSuccess("Schema up to date")
	}

	run, err := repo.GetLatestRun(ctx)
	if err != nil {
		PrintWarning(fmt.Sprintf("Could not read evaluation runs (try --migrate): %v", err))
		return nil
	}
	if run == nil {
		fmt.Println("No evaluation runs recorded yet")
		return nil
	}

	fmt.Println("📊 Latest evaluation run:")
	PrintRunSummary(run)
	return nil
}

// maskPassword masks the password in the database URL for display
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "***"
	}
	return u.Redacted()
}
