package health

import "errors"

var (
	// ErrCheckTimeout indicates a check did not finish before the aggregator
	// timeout.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound indicates no checker is registered under a name.
	ErrCheckerNotFound = errors.New("health: checker not found")
)
