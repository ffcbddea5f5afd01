package contracts

// ComponentScore compares one actual growth figure against the expectation
type ComponentScore struct {
	Actual float64 `json:"actual"`
	Ratio  float64 `json:"ratio"`
	Score  float64 `json:"score"`
}

// YoyBlock holds the year-over-year scores
type YoyBlock struct {
	PE                float64         `json:"pe"`
	ExpectedYoyGrowth float64         `json:"expectedYoyGrowth"`
	Sales             ComponentScore  `json:"sales"`
	EPS               ComponentScore  `json:"eps"`
	Price             *ComponentScore `json:"price"`
}

// QoqBlock holds the quarter-over-quarter scores
type QoqBlock struct {
	PE                float64         `json:"pe"`
	ExpectedQoqGrowth float64         `json:"expectedQoqGrowth"`
	Sales             ComponentScore  `json:"sales"`
	EPS               ComponentScore  `json:"eps"`
	Price             *ComponentScore `json:"price"`
}

// AggregateScore is Σ sign(s)·s² with its unsigned square root
type AggregateScore struct {
	X        float64 `json:"x"`
	AbsSqrtX float64 `json:"abs_sqrt_x"`
}

// PerformanceScore is computed per quarter; every block is nil in full
// when one of its inputs is missing
// ⭐ SSOT: 분기 성과 점수 (S5 산출물)
type PerformanceScore struct {
	Yoy                   *YoyBlock       `json:"yoy"`
	Qoq                   *QoqBlock       `json:"qoq"`
	FinalPerformanceScore *AggregateScore `json:"final_performance_score"`
	FinalPriceScore       *AggregateScore `json:"final_price_score"`
}
