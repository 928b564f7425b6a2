package collector

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"QuoteTables/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	mu       sync.Mutex
	Data     map[model.Symbol][]model.Observation
	Failures map[model.Symbol]error
	calls    atomic.Int64
	perSym   map[model.Symbol]int
}

// NewMockFetcher creates an empty MockFetcher.
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		Data:     make(map[model.Symbol][]model.Observation),
		Failures: make(map[model.Symbol]error),
		perSym:   make(map[model.Symbol]int),
	}
}

func (m *MockFetcher) Name() string { return "mock" }

// Calls returns how many times FetchSeries was invoked.
func (m *MockFetcher) Calls() int { return int(m.calls.Load()) }

// CallsFor returns how many times sym was requested.
func (m *MockFetcher) CallsFor(sym model.Symbol) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.perSym[sym]
}

func (m *MockFetcher) FetchSeries(_ context.Context, symbol model.Symbol, start, end time.Time) (model.Series, error) {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.perSym[symbol]++

	if err, ok := m.Failures[symbol]; ok {
		return model.Series{}, err
	}
	obs, ok := m.Data[symbol]
	if !ok {
		return model.Series{}, fmt.Errorf("unknown symbol %s: %w", symbol, ErrNoData)
	}
	var out []model.Observation
	for _, o := range obs {
		if (start.IsZero() || !o.Date.Before(start)) && (end.IsZero() || !o.Date.After(end)) {
			out = append(out, o)
		}
	}
	return model.Series{Symbol: symbol, Observations: out, FetchedAt: time.Now()}, nil
}

// GenerateBars builds count consecutive weekday bars starting at start,
// priced around basePrice.
func GenerateBars(start time.Time, basePrice float64, count int) []model.Observation {
	bars := make([]model.Observation, 0, count)
	d := model.TruncateDate(start)
	for len(bars) < count {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			p := basePrice * (1 + float64(len(bars)-count/2)*0.001)
			bars = append(bars, model.Observation{
				Date:     d,
				Open:     p * 0.999,
				High:     p * 1.005,
				Low:      p * 0.995,
				Close:    p,
				AdjClose: p * 0.98,
				Volume:   1000000 + float64(len(bars)),
			})
		}
		d = d.AddDate(0, 0, 1)
	}
	return bars
}
