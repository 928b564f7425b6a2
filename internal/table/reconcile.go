package table

import "QuoteTables/internal/model"

// Reconciliation is the outcome of row-count reconciliation.
type Reconciliation struct {
	Retained []model.Symbol // symbols whose length equals Length, first-seen order
	Dropped  []model.Symbol
	Length   int // dominant series length M, 0 for an empty table
}

// Counts returns the number of rows per symbol and the symbols in
// first-seen order.
func Counts(lt model.LongTable) (map[model.Symbol]int, []model.Symbol) {
	counts := make(map[model.Symbol]int)
	var order []model.Symbol
	for _, r := range lt.Rows {
		if _, ok := counts[r.Symbol]; !ok {
			order = append(order, r.Symbol)
		}
		counts[r.Symbol]++
	}
	return counts, order
}

// Reconcile picks the most frequent series length M and drops every symbol
// whose row count differs from it. Ties between lengths go to the length
// seen first. A symbol with a valid but shorter history is dropped too.
func Reconcile(lt model.LongTable) Reconciliation {
	counts, order := Counts(lt)

	freq := make(map[int]int)
	var lengths []int
	for _, sym := range order {
		n := counts[sym]
		if _, ok := freq[n]; !ok {
			lengths = append(lengths, n)
		}
		freq[n]++
	}

	m, best := 0, 0
	for _, n := range lengths {
		if n > 0 && freq[n] > best {
			m, best = n, freq[n]
		}
	}

	rec := Reconciliation{Length: m}
	for _, sym := range order {
		if counts[sym] == m {
			rec.Retained = append(rec.Retained, sym)
		} else {
			rec.Dropped = append(rec.Dropped, sym)
		}
	}
	return rec
}
