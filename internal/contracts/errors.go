package contracts

import "errors"

// Contract errors. Missing business data never produces one of these;
// it produces nil fields instead.
var (
	// ErrInvalidQuarterLabel is returned when a label or period-end string
	// matches no known quarter format
	ErrInvalidQuarterLabel = errors.New("invalid quarter label")

	// ErrNegativePrice is returned when PE is requested for a negative price
	ErrNegativePrice = errors.New("negative price")

	// ErrNoStatements is returned when a source yields no quarterly statements
	ErrNoStatements = errors.New("no quarterly statements")
)
