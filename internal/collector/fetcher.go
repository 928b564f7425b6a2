package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"QuoteTables/internal/model"
)

// ErrNoData is returned by a Fetcher when the source has no bars for the
// requested window, e.g. when the end date falls on a weekend or holiday.
var ErrNoData = errors.New("no data returned")

// Fetcher defines the interface for fetching a symbol's daily series.
// start and end are inclusive calendar dates.
type Fetcher interface {
	FetchSeries(ctx context.Context, symbol model.Symbol, start, end time.Time) (model.Series, error)
	Name() string
}

// FetchError records why a symbol was skipped.
type FetchError struct {
	Symbol   model.Symbol
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Symbol, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Result is the outcome of fetching one symbol: either a Series or an Err.
type Result struct {
	Series model.Series
	Err    *FetchError
}

// OK reports whether the fetch succeeded.
func (r Result) OK() bool { return r.Err == nil }
