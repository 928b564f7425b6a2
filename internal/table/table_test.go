package table

import (
	"errors"
	"testing"
	"time"

	"QuoteTables/internal/collector"
	"QuoteTables/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

func series(sym model.Symbol, price float64, n int) model.Series {
	return model.Series{Symbol: sym, Observations: collector.GenerateBars(start, price, n)}
}

func TestAssemble_SortedAndTagged(t *testing.T) {
	in := map[model.Symbol]model.Series{
		"BBB": series("BBB", 20, 5),
		"AAA": series("AAA", 10, 5),
	}
	lt := Assemble(in)

	require.Equal(t, 10, lt.Len())
	for i := 1; i < lt.Len(); i++ {
		assert.False(t, lt.Rows[i].Date.Before(lt.Rows[i-1].Date), "row %d out of order", i)
	}
	assert.Equal(t, model.Symbol("AAA"), lt.Rows[0].Symbol)
	assert.Equal(t, model.Symbol("BBB"), lt.Rows[1].Symbol)
	assert.Equal(t, in["BBB"].Observations[0], lt.Rows[1].Observation)
}

func TestAssemble_Empty(t *testing.T) {
	lt := Assemble(nil)
	assert.Equal(t, 0, lt.Len())
	assert.Empty(t, lt.Symbols())
}

func TestReconcile_DropsOutlier(t *testing.T) {
	lt := Assemble(map[model.Symbol]model.Series{
		"AAA": series("AAA", 10, 10),
		"BBB": series("BBB", 20, 10),
		"CCC": series("CCC", 30, 10),
		"DDD": series("DDD", 40, 7),
	})
	rec := Reconcile(lt)

	assert.Equal(t, 10, rec.Length)
	assert.ElementsMatch(t, []model.Symbol{"AAA", "BBB", "CCC"}, rec.Retained)
	assert.Equal(t, []model.Symbol{"DDD"}, rec.Dropped)

	w, err := Pivot(lt, rec.Retained, model.Close)
	require.NoError(t, err)
	assert.Equal(t, 10, w.Rows())
	assert.Len(t, w.Symbols, 3)
	assert.Nil(t, w.Column("DDD"))
}

func TestReconcile_AllEqual(t *testing.T) {
	lt := Assemble(map[model.Symbol]model.Series{
		"AAA": series("AAA", 10, 8),
		"BBB": series("BBB", 20, 8),
	})
	rec := Reconcile(lt)
	assert.Equal(t, 8, rec.Length)
	assert.Len(t, rec.Retained, 2)
	assert.Empty(t, rec.Dropped)
}

func TestReconcile_TieGoesToFirstSeenLength(t *testing.T) {
	// AAA and BBB sort first on the shared first date, so length 5 is seen first.
	lt := Assemble(map[model.Symbol]model.Series{
		"AAA": series("AAA", 10, 5),
		"BBB": series("BBB", 10, 5),
		"CCC": series("CCC", 10, 3),
		"DDD": series("DDD", 10, 3),
	})
	rec := Reconcile(lt)
	assert.Equal(t, 5, rec.Length)
	assert.Equal(t, []model.Symbol{"AAA", "BBB"}, rec.Retained)
}

func TestReconcile_Empty(t *testing.T) {
	rec := Reconcile(model.LongTable{})
	assert.Equal(t, 0, rec.Length)
	assert.Empty(t, rec.Retained)
	assert.Empty(t, rec.Dropped)
}

func TestPivot_EmptyIsValid(t *testing.T) {
	lt := Assemble(nil)
	rec := Reconcile(lt)
	tables, err := PivotAll(lt, rec.Retained)
	require.NoError(t, err)
	require.Len(t, tables, 6)
	for f, w := range tables {
		assert.Equal(t, f, w.Field)
		assert.Equal(t, 0, w.Rows())
		assert.Empty(t, w.Symbols)
	}
}

func TestPivot_RoundTrip(t *testing.T) {
	in := map[model.Symbol]model.Series{
		"AAA": series("AAA", 10, 12),
		"BBB": series("BBB", 55.5, 12),
		"CCC": series("CCC", 0.75, 12),
	}
	lt := Assemble(in)
	rec := Reconcile(lt)

	tables, err := PivotAll(lt, rec.Retained)
	require.NoError(t, err)

	for _, f := range model.AllFields {
		w := tables[f]
		assert.Equal(t, tables[model.Close].Dates, w.Dates, "all tables share the date index")
		for sym, s := range in {
			for _, o := range s.Observations {
				got, ok := w.Lookup(sym, o.Date)
				require.True(t, ok, "%s %s %s", f, sym, o.Date)
				assert.Equal(t, o.Value(f), got, "%s %s %s", f, sym, o.Date)
			}
		}
	}
}

func TestPivot_DuplicateDate(t *testing.T) {
	a := series("AAA", 10, 4)
	b := series("BBB", 20, 4)
	b.Observations[2].Date = b.Observations[1].Date
	lt := Assemble(map[model.Symbol]model.Series{"AAA": a, "BBB": b})
	rec := Reconcile(lt)
	require.Len(t, rec.Retained, 2)

	_, err := Pivot(lt, rec.Retained, model.Close)
	var shape *ShapeMismatchError
	require.True(t, errors.As(err, &shape))
	assert.Equal(t, model.Symbol("BBB"), shape.Symbol)
}

func TestPivot_MisalignedDates(t *testing.T) {
	a := series("AAA", 10, 4)
	b := series("BBB", 20, 4)
	// same length, but BBB trades one day later than AAA
	b.Observations = collector.GenerateBars(start.AddDate(0, 0, 1), 20, 4)
	lt := Assemble(map[model.Symbol]model.Series{"AAA": a, "BBB": b})
	rec := Reconcile(lt)

	_, err := Pivot(lt, rec.Retained, model.Open)
	var shape *ShapeMismatchError
	assert.True(t, errors.As(err, &shape))
}

func TestDateSet(t *testing.T) {
	lt := Assemble(map[model.Symbol]model.Series{
		"AAA": series("AAA", 10, 3),
		"BBB": series("BBB", 10, 5),
	})
	assert.Len(t, DateSet(lt, []model.Symbol{"AAA"}), 3)
	assert.Len(t, DateSet(lt, []model.Symbol{"AAA", "BBB"}), 5)
	assert.Empty(t, DateSet(lt, nil))
}

func TestFilter(t *testing.T) {
	lt := Assemble(map[model.Symbol]model.Series{
		"AAA": series("AAA", 10, 3),
		"BBB": series("BBB", 10, 5),
	})
	f := Filter(lt, []model.Symbol{"BBB"})
	assert.Equal(t, 5, f.Len())
	assert.Equal(t, []model.Symbol{"BBB"}, f.Symbols())
}
