package sink

import (
	"context"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"QuoteTables/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var (
	d1 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	d2 = time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
)

func wide() *model.WideTable {
	return &model.WideTable{
		Field:   model.Close,
		Dates:   []time.Time{d1, d2},
		Symbols: []model.Symbol{"AAA", "BBB"},
		Values:  [][]float64{{10.5, 20.25}, {11, 0.1}},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return recs
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "2024-01-02", FormatCell(d1))
	assert.Equal(t, "0.1", FormatCell(0.1))
	assert.Equal(t, "1000000", FormatCell(1e6))
	assert.Equal(t, "", FormatCell(math.NaN()))
	assert.Equal(t, "AAA", FormatCell("AAA"))
	assert.Equal(t, "", FormatCell(nil))
}

func TestCSVSink_WriteWide(t *testing.T) {
	dir := t.TempDir()
	s := NewCSVSink(dir)

	require.NoError(t, s.WriteTable(context.Background(), "close", FromWide(wide())))

	recs := readCSV(t, filepath.Join(dir, "close.csv"))
	assert.Equal(t, [][]string{
		{"Date", "AAA", "BBB"},
		{"2024-01-02", "10.5", "20.25"},
		{"2024-01-03", "11", "0.1"},
	}, recs)
}

func TestCSVSink_Overwrites(t *testing.T) {
	dir := t.TempDir()
	s := NewCSVSink(dir)
	ctx := context.Background()

	require.NoError(t, s.WriteTable(ctx, "close", FromWide(wide())))
	empty := &model.WideTable{Field: model.Close}
	require.NoError(t, s.WriteTable(ctx, "close", FromWide(empty)))

	recs := readCSV(t, filepath.Join(dir, "close.csv"))
	assert.Equal(t, [][]string{{"Date"}}, recs)
}

func TestCSVSink_NestedDirectory(t *testing.T) {
	dir := t.TempDir()
	s := NewCSVSink(dir)
	require.NoError(t, s.MkdirAll("AAA"))
	require.NoError(t, s.WriteTable(context.Background(), filepath.Join("AAA", "close"), FromWideColumn(wide(), "AAA")))

	recs := readCSV(t, filepath.Join(dir, "AAA", "close.csv"))
	assert.Equal(t, [][]string{
		{"Date", "Close"},
		{"2024-01-02", "10.5"},
		{"2024-01-03", "11"},
	}, recs)
}

func TestCSVSink_ErrorIsWrapped(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	s := NewCSVSink(blocker)
	err := s.WriteTable(context.Background(), "close", FromWide(wide()))
	var sinkErr *Error
	assert.ErrorAs(t, err, &sinkErr)

	assert.ErrorAs(t, s.MkdirAll("sub"), &sinkErr)
}

func TestFromLong(t *testing.T) {
	lt := model.LongTable{Rows: []model.Row{
		{Symbol: "AAA", Observation: model.Observation{Date: d1, Open: 1, High: 2, Low: 0.5, Close: 1.5, AdjClose: 1.4, Volume: 100}},
	}}
	tbl := FromLong(lt)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, []any{d1, 2.0, 0.5, 1.0, 1.5, 100.0, 1.4, "AAA"}, tbl.Rows[0])
	assert.Equal(t, "Ticker", tbl.Header[len(tbl.Header)-1])
}

func TestXLSXSink_Write(t *testing.T) {
	dir := t.TempDir()
	s := NewXLSXSink(dir)
	require.NoError(t, s.WriteTable(context.Background(), "close", FromWide(wide())))

	f, err := excelize.OpenFile(filepath.Join(dir, "close.xlsx"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Close")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Date", "AAA", "BBB"}, rows[0])
	assert.Equal(t, "10.5", rows[1][1])
	assert.Equal(t, "0.1", rows[2][2])
}
