package contracts

import "context"

// StatementSource provides raw quarterly statements for a company (S0)
// ⭐ SSOT: 분기 재무제표 수집 인터페이스
type StatementSource interface {
	GetQuarterlyStatements(ctx context.Context, symbol string, consolidated bool) ([]QuarterStatement, error)
}

// EventSource provides a company's corporate events list (S4)
// ⭐ SSOT: 실적 발표 일정 인터페이스
type EventSource interface {
	GetEvents(ctx context.Context, symbol string) ([]CompanyEvent, error)
}

// PriceSource resolves a closing price for a date ("YYYY-MM-DD").
// A nil quote with a nil error means no trading data for that day.
// ⭐ SSOT: 종가 조회 인터페이스
type PriceSource interface {
	GetPriceAt(ctx context.Context, dateISO string, symbol string) (*PriceQuote, error)
}

// ShareCountSource provides the absolute outstanding share count (S2)
type ShareCountSource interface {
	GetSharesOutstanding(ctx context.Context, symbol string) (*float64, error)
}
