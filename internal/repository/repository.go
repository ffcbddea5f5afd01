package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/fundscore/internal/contracts"
)

// Repository 분기 성과 + 실행 이력 저장소
// ⭐ SSOT: data.quarterly_performance / data.evaluation_runs 접근은 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository 새 저장소 생성
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ contracts.PerformanceRepository = (*Repository)(nil)

// SaveQuarters 분기 성과 일괄 upsert
func (r *Repository) SaveQuarters(ctx context.Context, symbol string, quarters []contracts.EvaluatedQuarter) (int, error) {
	if len(quarters) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO data.quarterly_performance
			(symbol, quarter, quarter_year, quarter_month, final_performance_score, final_price_score, payload, evaluated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (symbol, quarter) DO UPDATE SET
			final_performance_score = EXCLUDED.final_performance_score,
			final_price_score = EXCLUDED.final_price_score,
			payload = EXCLUDED.payload,
			evaluated_at = EXCLUDED.evaluated_at`

	for _, q := range quarters {
		payload, err := json.Marshal(q)
		if err != nil {
			return 0, fmt.Errorf("marshal %s: %w", q.Quarter, err)
		}

		batch.Queue(query, symbol, q.Quarter.String(), q.Quarter.Year, int(q.Quarter.Month),
			scoreValue(q.Performance.FinalPerformanceScore),
			scoreValue(q.Performance.FinalPriceScore),
			payload)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	saved := 0
	for range quarters {
		if _, err := br.Exec(); err != nil {
			return saved, fmt.Errorf("upsert quarter: %w", err)
		}
		saved++
	}

	return saved, nil
}

// GetQuarters 종목의 분기 성과 조회 (오래된 분기부터)
func (r *Repository) GetQuarters(ctx context.Context, symbol string) ([]contracts.EvaluatedQuarter, error) {
	query := `
		SELECT payload
		FROM data.quarterly_performance
		WHERE symbol = $1
		ORDER BY quarter_year, quarter_month`

	rows, err := r.pool.Query(ctx, query, symbol)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quarters := make([]contracts.EvaluatedQuarter, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}

		var q contracts.EvaluatedQuarter
		if err := json.Unmarshal(payload, &q); err != nil {
			return nil, fmt.Errorf("decode quarter payload: %w", err)
		}
		quarters = append(quarters, q)
	}

	return quarters, rows.Err()
}

// SaveRun 일괄 평가 실행 요약 저장
func (r *Repository) SaveRun(ctx context.Context, summary *contracts.BulkRunSummary) error {
	items, err := json.Marshal(summary.Items)
	if err != nil {
		return fmt.Errorf("marshal run items: %w", err)
	}

	query := `
		INSERT INTO data.evaluation_runs
			(run_id, watchlist_hash, started_at, finished_at, total, succeeded, failed, items)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (run_id) DO UPDATE SET
			finished_at = EXCLUDED.finished_at,
			succeeded = EXCLUDED.succeeded,
			failed = EXCLUDED.failed,
			items = EXCLUDED.items`

	_, err = r.pool.Exec(ctx, query,
		summary.RunID, summary.WatchlistHash, summary.StartedAt, summary.FinishedAt,
		summary.Total, summary.Succeeded, summary.Failed, items,
	)
	return err
}

// GetLatestRun 가장 최근 실행 요약 (없으면 nil)
func (r *Repository) GetLatestRun(ctx context.Context) (*contracts.BulkRunSummary, error) {
	query := `
		SELECT run_id::text, COALESCE(watchlist_hash, ''), started_at, finished_at, total, succeeded, failed, items
		FROM data.evaluation_runs
		ORDER BY started_at DESC
		LIMIT 1`

	var s contracts.BulkRunSummary
	var items []byte
	err := r.pool.QueryRow(ctx, query).Scan(
		&s.RunID, &s.WatchlistHash, &s.StartedAt, &s.FinishedAt,
		&s.Total, &s.Succeeded, &s.Failed, &items,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, &s.Items); err != nil {
		return nil, fmt.Errorf("decode run items: %w", err)
	}

	return &s, nil
}

// scoreValue maps an optional aggregate onto a nullable column.
// The signed sum is stored so the column sorts by direction.
func scoreValue(a *contracts.AggregateScore) *float64 {
	if a == nil {
		return nil
	}
	v := a.X
	return &v
}
