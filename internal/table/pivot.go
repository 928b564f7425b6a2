package table

import (
	"fmt"
	"sort"
	"time"

	"QuoteTables/internal/model"
)

// ShapeMismatchError reports that the retained symbols do not share one
// duplicate-free date index, so a wide table cannot be built without
// misaligning values.
type ShapeMismatchError struct {
	Symbol model.Symbol
	Date   time.Time
	Reason string
}

func (e *ShapeMismatchError) Error() string {
	msg := "shape mismatch"
	if e.Symbol != "" {
		msg += ": " + string(e.Symbol)
	}
	if !e.Date.IsZero() {
		msg += " on " + e.Date.Format(model.DateLayout)
	}
	return msg + ": " + e.Reason
}

// DateSet returns the sorted distinct dates carried by the given symbols.
func DateSet(lt model.LongTable, retained []model.Symbol) []time.Time {
	keep := make(map[model.Symbol]bool, len(retained))
	for _, s := range retained {
		keep[s] = true
	}
	seen := make(map[time.Time]bool)
	var dates []time.Time
	for _, r := range lt.Rows {
		if !keep[r.Symbol] || seen[r.Date] {
			continue
		}
		seen[r.Date] = true
		dates = append(dates, r.Date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// index maps each retained symbol to its date -> observation lookup.
type index struct {
	dates   []time.Time
	symbols []model.Symbol
	values  map[model.Symbol]map[time.Time]model.Observation
}

// buildIndex checks that every retained symbol has exactly one observation
// per date of the shared date set.
func buildIndex(lt model.LongTable, retained []model.Symbol) (*index, error) {
	idx := &index{
		symbols: retained,
		values:  make(map[model.Symbol]map[time.Time]model.Observation, len(retained)),
	}
	for _, s := range retained {
		idx.values[s] = make(map[time.Time]model.Observation)
	}
	counts := make(map[model.Symbol]int, len(retained))
	for _, r := range lt.Rows {
		byDate, ok := idx.values[r.Symbol]
		if !ok {
			continue
		}
		if _, dup := byDate[r.Date]; dup {
			return nil, &ShapeMismatchError{Symbol: r.Symbol, Date: r.Date, Reason: "duplicate date"}
		}
		byDate[r.Date] = r.Observation
		counts[r.Symbol]++
	}

	idx.dates = DateSet(lt, retained)
	m := -1
	for _, s := range retained {
		if m < 0 {
			m = counts[s]
		}
		if counts[s] != m {
			return nil, &ShapeMismatchError{Symbol: s, Reason: fmt.Sprintf("%d rows, expected %d", counts[s], m)}
		}
	}
	if m > 0 && len(idx.dates) != m {
		return nil, &ShapeMismatchError{Reason: fmt.Sprintf("date set has %d dates, expected %d", len(idx.dates), m)}
	}
	for _, s := range retained {
		for _, d := range idx.dates {
			if _, ok := idx.values[s][d]; !ok {
				return nil, &ShapeMismatchError{Symbol: s, Date: d, Reason: "missing observation"}
			}
		}
	}
	return idx, nil
}

func (idx *index) pivot(f model.Field) *model.WideTable {
	w := &model.WideTable{
		Field:   f,
		Dates:   idx.dates,
		Symbols: idx.symbols,
		Values:  make([][]float64, len(idx.dates)),
	}
	for i, d := range idx.dates {
		row := make([]float64, len(idx.symbols))
		for j, s := range idx.symbols {
			row[j] = idx.values[s][d].Value(f)
		}
		w.Values[i] = row
	}
	return w
}

// Pivot builds the wide table of one field for the retained symbols. Values
// are merged by date key, never by position.
func Pivot(lt model.LongTable, retained []model.Symbol, f model.Field) (*model.WideTable, error) {
	idx, err := buildIndex(lt, retained)
	if err != nil {
		return nil, err
	}
	return idx.pivot(f), nil
}

// PivotAll builds the wide tables of every field. All tables share the same
// date index.
func PivotAll(lt model.LongTable, retained []model.Symbol) (map[model.Field]*model.WideTable, error) {
	idx, err := buildIndex(lt, retained)
	if err != nil {
		return nil, err
	}
	out := make(map[model.Field]*model.WideTable, len(model.AllFields))
	for _, f := range model.AllFields {
		out[f] = idx.pivot(f)
	}
	return out, nil
}

// Filter returns the rows of lt that belong to the given symbols.
func Filter(lt model.LongTable, syms []model.Symbol) model.LongTable {
	keep := make(map[model.Symbol]bool, len(syms))
	for _, s := range syms {
		keep[s] = true
	}
	var rows []model.Row
	for _, r := range lt.Rows {
		if keep[r.Symbol] {
			rows = append(rows, r)
		}
	}
	return model.LongTable{Rows: rows}
}
