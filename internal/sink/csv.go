package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// CSVSink writes tables as CSV files below Dir.
type CSVSink struct {
	Dir string
}

// NewCSVSink creates a CSV sink rooted at dir.
func NewCSVSink(dir string) *CSVSink {
	return &CSVSink{Dir: dir}
}

func (s *CSVSink) Ext() string { return ".csv" }

func (s *CSVSink) MkdirAll(path string) error {
	full := filepath.Join(s.Dir, path)
	if err := os.MkdirAll(full, 0755); err != nil {
		return &Error{Path: full, Err: err}
	}
	return nil
}

func (s *CSVSink) WriteTable(ctx context.Context, path string, t *Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full := filepath.Join(s.Dir, path+s.Ext())
	log.WithFields(log.Fields{"file": full, "rows": len(t.Rows), "columns": len(t.Header)}).Debug("writing csv")

	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return &Error{Path: full, Err: fmt.Errorf("create directory: %w", err)}
	}
	f, err := os.Create(full)
	if err != nil {
		return &Error{Path: full, Err: err}
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Header); err != nil {
		return &Error{Path: full, Err: fmt.Errorf("write header: %w", err)}
	}
	record := make([]string, len(t.Header))
	for i, row := range t.Rows {
		record = record[:0]
		for _, c := range row {
			record = append(record, FormatCell(c))
		}
		if err := w.Write(record); err != nil {
			return &Error{Path: full, Err: fmt.Errorf("write record %d: %w", i, err)}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return &Error{Path: full, Err: err}
	}
	if err := f.Close(); err != nil {
		return &Error{Path: full, Err: err}
	}
	return nil
}

// FormatCell renders a cell as text. Floats use the shortest decimal
// representation that round-trips.
func FormatCell(c any) string {
	switch v := c.(type) {
	case time.Time:
		return formatDate(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ""
		}
		return decimal.NewFromFloat(v).String()
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
