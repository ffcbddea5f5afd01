package contracts

import "context"

// ⭐ SSOT: Repository 인터페이스 정의는 여기서만

// PerformanceRepository persists evaluated quarters and bulk run summaries
type PerformanceRepository interface {
	SaveQuarters(ctx context.Context, symbol string, quarters []EvaluatedQuarter) (int, error)
	GetQuarters(ctx context.Context, symbol string) ([]EvaluatedQuarter, error)
	SaveRun(ctx context.Context, summary *BulkRunSummary) error
	GetLatestRun(ctx context.Context) (*BulkRunSummary, error)
}
