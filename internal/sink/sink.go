// Package sink writes tables to durable storage.
package sink

import (
	"context"
	"fmt"
	"time"

	"QuoteTables/internal/model"
)

// Table is a named rectangular table ready to be written. Cells hold
// time.Time (dates), string or float64 values.
type Table struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Sink persists tables. Writes overwrite existing files and complete
// synchronously.
type Sink interface {
	// WriteTable writes t to path, relative to the sink's root, without extension.
	WriteTable(ctx context.Context, path string, t *Table) error
	// MkdirAll creates a directory relative to the sink's root.
	MkdirAll(path string) error
	// Ext returns the file extension, including the dot.
	Ext() string
}

// Error wraps a write failure. It aborts the run; files written before the
// failure are kept.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string { return fmt.Sprintf("sink %s: %v", e.Path, e.Err) }

func (e *Error) Unwrap() error { return e.Err }

// FromWide converts a wide table into a Date column followed by one column per symbol.
func FromWide(w *model.WideTable) *Table {
	t := &Table{Name: w.Field.String(), Header: make([]string, 0, len(w.Symbols)+1)}
	t.Header = append(t.Header, "Date")
	for _, s := range w.Symbols {
		t.Header = append(t.Header, string(s))
	}
	t.Rows = make([][]any, len(w.Dates))
	for i, d := range w.Dates {
		row := make([]any, 0, len(w.Symbols)+1)
		row = append(row, d)
		for _, v := range w.Values[i] {
			row = append(row, v)
		}
		t.Rows[i] = row
	}
	return t
}

// FromWideColumn converts one symbol's column of a wide table into a
// two-column Date/<field> table.
func FromWideColumn(w *model.WideTable, sym model.Symbol) *Table {
	t := &Table{Name: w.Field.String(), Header: []string{"Date", w.Field.String()}}
	col := w.Column(sym)
	t.Rows = make([][]any, len(col))
	for i, v := range col {
		t.Rows[i] = []any{w.Dates[i], v}
	}
	return t
}

// FromLong converts the long table into one row per observation.
func FromLong(lt model.LongTable) *Table {
	t := &Table{
		Name:   "Quotes",
		Header: []string{"Date", "High", "Low", "Open", "Close", "Volume", "Adj Close", "Ticker"},
		Rows:   make([][]any, len(lt.Rows)),
	}
	for i, r := range lt.Rows {
		t.Rows[i] = []any{r.Date, r.High, r.Low, r.Open, r.Close, r.Volume, r.AdjClose, string(r.Symbol)}
	}
	return t
}

func formatDate(d time.Time) string { return d.Format(model.DateLayout) }
