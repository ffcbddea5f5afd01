package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundscore/internal/contracts"
	"github.com/wonny/fundscore/pkg/config"
	"github.com/wonny/fundscore/pkg/database"
)

func TestScoreValue(t *testing.T) {
	assert.Nil(t, scoreValue(nil))

	v := scoreValue(&contracts.AggregateScore{X: -9, AbsSqrtX: 3})
	require.NotNil(t, v)
	assert.Equal(t, -9.0, *v)

	// 부호가 유지되어야 -10 분기와 +10 분기가 구분됨
	down := scoreValue(&contracts.AggregateScore{X: -100, AbsSqrtX: 10})
	up := scoreValue(&contracts.AggregateScore{X: 100, AbsSqrtX: 10})
	assert.Less(t, *down, *up)
}

// newTestRepository connects to TEST_DATABASE_URL (integration only)
func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.New(ctx, &config.Config{Database: config.DatabaseConfig{URL: url}})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	repo := NewRepository(db.Pool)
	require.NoError(t, repo.EnsureSchema(ctx))
	return repo
}

func TestRepository_Quarters(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	symbol := "TEST" + uuid.NewString()[:8]

	quarters := []contracts.EvaluatedQuarter{
		{DatedPricedRecord: contracts.DatedPricedRecord{GrowthRecord: contracts.GrowthRecord{
			CanonicalQuarterRecord: contracts.CanonicalQuarterRecord{Quarter: contracts.MustQuarter("2024-Jun"), Sales: contracts.Float(100)},
		}}},
		{DatedPricedRecord: contracts.DatedPricedRecord{GrowthRecord: contracts.GrowthRecord{
			CanonicalQuarterRecord: contracts.CanonicalQuarterRecord{Quarter: contracts.MustQuarter("2023-Dec"), Sales: contracts.Float(90)},
		}}},
	}
	quarters[0].Performance.FinalPerformanceScore = &contracts.AggregateScore{X: 4, AbsSqrtX: 2}

	saved, err := repo.SaveQuarters(ctx, symbol, quarters)
	require.NoError(t, err)
	assert.Equal(t, 2, saved)

	// upsert: 같은 분기 재저장
	_, err = repo.SaveQuarters(ctx, symbol, quarters[:1])
	require.NoError(t, err)

	got, err := repo.GetQuarters(ctx, symbol)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2023-Dec", got[0].Quarter.String())
	assert.Equal(t, "2024-Jun", got[1].Quarter.String())
	require.NotNil(t, got[1].Performance.FinalPerformanceScore)
	assert.Equal(t, 2.0, got[1].Performance.FinalPerformanceScore.AbsSqrtX)
}

func TestRepository_Runs(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	summary := &contracts.BulkRunSummary{
		RunID:         uuid.NewString(),
		WatchlistHash: "abc",
		StartedAt:     now.Add(time.Hour),
		FinishedAt:    now.Add(time.Hour + time.Minute),
		Total:         2,
		Succeeded:     1,
		Failed:        1,
		Items: []contracts.ItemResult{
			{Symbol: "TCS", Success: true, Attempts: 1, Quarters: 8},
			{Symbol: "INFY", Attempts: 3, Error: "boom"},
		},
	}
	require.NoError(t, repo.SaveRun(ctx, summary))

	latest, err := repo.GetLatestRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, summary.RunID, latest.RunID)
	assert.Equal(t, "abc", latest.WatchlistHash)
	assert.Len(t, latest.Items, 2)
	assert.Equal(t, "boom", latest.Items[1].Error)
}
