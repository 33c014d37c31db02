package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientHistory signals that a pair has fewer observations
	// than a statistic requires. It is non-fatal: volatility degrades to
	// the documented fallback and selection skips the pair.
	ErrInsufficientHistory = errors.New("insufficient sales history")

	// ErrMissingSource signals that a collaborator returned no data for a
	// pair. It is resolved via the fallback chain, never propagated to
	// batch callers.
	ErrMissingSource = errors.New("no data from source")
)

// InvalidInputError reports an input rejected at a component boundary,
// such as a negative quantity or a non-positive horizon.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalidInput(field, format string, args ...any) error {
	return &InvalidInputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// PairError records a per-pair failure during a batch sweep. Failures are
// local: one pair's error never aborts the rest of the batch.
type PairError struct {
	StoreID string `json:"store_id"`
	SKU     string `json:"sku"`
	Err     error  `json:"-"`
	Message string `json:"error"`
}

func (e PairError) Error() string {
	return fmt.Sprintf("%s/%s: %v", e.StoreID, e.SKU, e.Err)
}
