// Package table reshapes per-symbol series into date aligned tables.
//
// The flow is Assemble -> Reconcile -> Pivot. Assemble concatenates the
// fetched series into one long table, Reconcile keeps only the symbols whose
// series length is the most common one, and Pivot turns the long table into
// one wide table per field keyed by date.
package table

import (
	"sort"

	"QuoteTables/internal/model"
)

// Assemble concatenates every series into a long table tagged by symbol and
// sorted ascending by date. Rows sharing a date are ordered by symbol.
func Assemble(series map[model.Symbol]model.Series) model.LongTable {
	n := 0
	for _, s := range series {
		n += len(s.Observations)
	}
	rows := make([]model.Row, 0, n)
	for sym, s := range series {
		for _, o := range s.Observations {
			rows = append(rows, model.Row{Symbol: sym, Observation: o})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].Symbol < rows[j].Symbol
	})
	return model.LongTable{Rows: rows}
}
