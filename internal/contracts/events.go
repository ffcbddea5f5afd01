package contracts

// CompanyEvent is an entry of a company's corporate events list
type CompanyEvent struct {
	Title       string  `json:"title"`
	DateTimeRaw *string `json:"dateTimeRaw"`
	DateTimeISO *string `json:"dateTimeISO"`
}

// PriceQuote is a closing price for one trading day
type PriceQuote struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}
