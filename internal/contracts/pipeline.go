package contracts

import "time"

// Pipeline Stage 정의 (SSOT)
// 모든 로그, DB row에서 이 상수를 사용해야 함
//
// 파이프라인 흐름:
//   S0 → S1 → S2 → S3 → S4 → S5
//   Fetch  Extract  Smoothing  Growth  Reconcile  Scoring

// Stage represents a pipeline stage
type Stage string

const (
	// StageFetch S0: 원천 데이터 수집
	// 책임: 분기 재무제표, 발행주식수, 이벤트 목록 조회
	// 위치: internal/external/
	StageFetch Stage = "S0_FETCH"

	// StageExtract S1: 표준 분기 레코드 추출
	// 책임: 은행/비은행 판별, 라벨 매칭, 단위 변환
	// 위치: internal/s1_extract/
	StageExtract Stage = "S1_EXTRACT"

	// StageSmoothing S2: EPS 평활화
	// 책임: 6분기 롤링 윈도우 중앙값/평균 기반 EPSSmooth
	// 위치: internal/s2_smoothing/
	StageSmoothing Stage = "S2_SMOOTHING"

	// StageGrowth S3: 성장률 계산
	// 책임: 매출/EPS QoQ, YoY 변화량 및 변화율
	// 위치: internal/s3_growth/
	StageGrowth Stage = "S3_GROWTH"

	// StageReconcile S4: 발표일/주가 매칭
	// 책임: 이벤트 제목 → 분기 라벨, 종가 역방향 탐색
	// 위치: internal/s4_reconcile/
	StageReconcile Stage = "S4_RECONCILE"

	// StageScoring S5: 성과 점수
	// 책임: PE 기반 기대 성장률, 비율 점수, 종합 점수
	// 위치: internal/s5_scoring/
	StageScoring Stage = "S5_SCORING"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// ShortName returns abbreviated stage name (e.g., "S0", "S1")
func (s Stage) ShortName() string {
	if len(s) >= 2 && IsValidStage(string(s)) {
		return string(s[:2])
	}
	return "UNKNOWN"
}

// AllStages returns all pipeline stages in order
func AllStages() []Stage {
	return []Stage{
		StageFetch,
		StageExtract,
		StageSmoothing,
		StageGrowth,
		StageReconcile,
		StageScoring,
	}
}

// IsValidStage checks if a stage string is valid
func IsValidStage(s string) bool {
	for _, stage := range AllStages() {
		if string(stage) == s {
			return true
		}
	}
	return false
}

// StageResult records the outcome of one stage for one company
type StageResult struct {
	Stage       Stage                  `json:"stage"`
	Success     bool                   `json:"success"`
	InputCount  int                    `json:"input_count"`
	OutputCount int                    `json:"output_count"`
	Duration    int64                  `json:"duration_ms"`
	Error       string                 `json:"error,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// ItemResult is the per-company outcome inside a bulk run
type ItemResult struct {
	Symbol   string `json:"symbol"`
	Success  bool   `json:"success"`
	Attempts int    `json:"attempts"`
	Quarters int    `json:"quarters"`
	Error    string `json:"error,omitempty"`
}

// BulkRunSummary describes one bulk evaluation run
// ⭐ SSOT: 일괄 평가 실행 요약 (DB evaluation_runs)
type BulkRunSummary struct {
	RunID         string       `json:"run_id"`
	WatchlistHash string       `json:"watchlist_hash,omitempty"`
	StartedAt     time.Time    `json:"started_at"`
	FinishedAt    time.Time    `json:"finished_at"`
	Total         int          `json:"total"`
	Succeeded     int          `json:"succeeded"`
	Failed        int          `json:"failed"`
	Items         []ItemResult `json:"items"`
}

// Duration returns how long the run took
func (s *BulkRunSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
