package collector

import (
	"context"
	"errors"
	"sync"
	"time"

	"QuoteTables/internal/model"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Options tunes how a Collector drives its Fetcher.
type Options struct {
	Workers  int           // concurrent fetches, 1 means strictly sequential
	Attempts int           // tries per symbol before it is skipped
	Backoff  time.Duration // delay before the second attempt, doubled after each failure
}

// Collector fetches the series of a batch of symbols. A failing symbol is
// skipped and never affects the others.
type Collector struct {
	Fetcher Fetcher
	Options Options
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, opts Options) *Collector {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 1
	}
	return &Collector{Fetcher: fetcher, Options: opts}
}

// FetchAll fetches every symbol and returns one Result per symbol.
func (c *Collector) FetchAll(ctx context.Context, syms []model.Symbol, start, end time.Time) map[model.Symbol]Result {
	results := make(map[model.Symbol]Result, len(syms))
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(c.Options.Workers)
	total := len(syms)
	for i, sym := range syms {
		g.Go(func() error {
			log.WithFields(log.Fields{"symbol": sym, "index": i + 1, "total": total}).Info("working on symbol")
			res := c.fetchOne(ctx, sym, start, end)
			if !res.OK() {
				log.WithFields(log.Fields{"symbol": sym, "attempts": res.Err.Attempts}).Warnf("skipping symbol: %v", res.Err.Err)
			}
			mu.Lock()
			results[sym] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (c *Collector) fetchOne(ctx context.Context, sym model.Symbol, start, end time.Time) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("symbol", sym).Errorf("fetcher panicked: %v", r)
			res = Result{Err: &FetchError{Symbol: sym, Attempts: 1, Err: errors.New("fetcher panicked")}}
		}
	}()

	backoff := c.Options.Backoff
	var lastErr error
	for attempt := 1; attempt <= c.Options.Attempts; attempt++ {
		series, err := c.Fetcher.FetchSeries(ctx, sym, start, end)
		if err == nil {
			series.Symbol = sym
			return Result{Series: series}
		}
		lastErr = err
		if errors.Is(err, ErrNoData) || ctx.Err() != nil || attempt == c.Options.Attempts {
			return Result{Err: &FetchError{Symbol: sym, Attempts: attempt, Err: err}}
		}
		log.WithField("symbol", sym).Debugf("attempt %d/%d failed: %v, retrying in %v", attempt, c.Options.Attempts, err, backoff)
		select {
		case <-ctx.Done():
			return Result{Err: &FetchError{Symbol: sym, Attempts: attempt, Err: ctx.Err()}}
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return Result{Err: &FetchError{Symbol: sym, Attempts: c.Options.Attempts, Err: lastErr}}
}

// Successful returns the series of the symbols that were fetched.
func Successful(results map[model.Symbol]Result) map[model.Symbol]model.Series {
	out := make(map[model.Symbol]model.Series, len(results))
	for sym, r := range results {
		if r.OK() {
			out[sym] = r.Series
		}
	}
	return out
}

// Skipped returns the symbols whose fetch failed.
func Skipped(results map[model.Symbol]Result) []model.Symbol {
	var out []model.Symbol
	for sym, r := range results {
		if !r.OK() {
			out = append(out, sym)
		}
	}
	return out
}
