package model

import "time"

// Row is an observation tagged with the symbol it belongs to.
type Row struct {
	Symbol Symbol
	Observation
}

// LongTable holds every fetched observation of a run, one row each,
// sorted ascending by date.
type LongTable struct {
	Rows []Row
}

// Len returns the number of rows.
func (t LongTable) Len() int { return len(t.Rows) }

// Symbols returns the distinct symbols in first-seen order.
func (t LongTable) Symbols() []Symbol {
	seen := make(map[Symbol]bool)
	var out []Symbol
	for _, r := range t.Rows {
		if !seen[r.Symbol] {
			seen[r.Symbol] = true
			out = append(out, r.Symbol)
		}
	}
	return out
}

// WideTable is a date-indexed table of one field with a column per symbol.
type WideTable struct {
	Field   Field
	Dates   []time.Time
	Symbols []Symbol
	Values  [][]float64 // Values[row][col], aligned with Dates and Symbols
}

// Rows returns the number of dates.
func (w *WideTable) Rows() int { return len(w.Dates) }

// Column returns the values of one symbol in date order, or nil when the
// symbol is not a column of the table.
func (w *WideTable) Column(s Symbol) []float64 {
	idx := -1
	for i, sym := range w.Symbols {
		if sym == s {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	col := make([]float64, len(w.Dates))
	for i := range w.Dates {
		col[i] = w.Values[i][idx]
	}
	return col
}

// Lookup returns the value of symbol s on date d.
func (w *WideTable) Lookup(s Symbol, d time.Time) (float64, bool) {
	col := -1
	for i, sym := range w.Symbols {
		if sym == s {
			col = i
			break
		}
	}
	if col < 0 {
		return 0, false
	}
	for i, dt := range w.Dates {
		if dt.Equal(d) {
			return w.Values[i][col], true
		}
	}
	return 0, false
}
