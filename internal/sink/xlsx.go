package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// XLSXSink writes each table as a single-sheet Excel workbook below Dir.
type XLSXSink struct {
	Dir string
}

// NewXLSXSink creates an Excel sink rooted at dir.
func NewXLSXSink(dir string) *XLSXSink {
	return &XLSXSink{Dir: dir}
}

func (s *XLSXSink) Ext() string { return ".xlsx" }

func (s *XLSXSink) MkdirAll(path string) error {
	full := filepath.Join(s.Dir, path)
	if err := os.MkdirAll(full, 0755); err != nil {
		return &Error{Path: full, Err: err}
	}
	return nil
}

// sheetName trims a table name to Excel's 31 character sheet name limit.
func sheetName(name string) string {
	if name == "" {
		return "Sheet1"
	}
	if len(name) > 31 {
		return name[:31]
	}
	return name
}

func (s *XLSXSink) WriteTable(ctx context.Context, path string, t *Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full := filepath.Join(s.Dir, path+s.Ext())
	log.WithFields(log.Fields{"file": full, "rows": len(t.Rows)}).Debug("writing xlsx")

	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return &Error{Path: full, Err: fmt.Errorf("create directory: %w", err)}
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(t.Name)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return &Error{Path: full, Err: err}
	}
	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		return &Error{Path: full, Err: err}
	}

	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return &Error{Path: full, Err: fmt.Errorf("write header: %w", err)}
	}
	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return &Error{Path: full, Err: err}
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return &Error{Path: full, Err: fmt.Errorf("write row %d: %w", i, err)}
		}
		if len(row) > 0 {
			if _, ok := row[0].(time.Time); ok {
				if err := f.SetCellStyle(sheet, cell, cell, dateStyle); err != nil {
					return &Error{Path: full, Err: err}
				}
			}
		}
	}
	if err := f.SaveAs(full); err != nil {
		return &Error{Path: full, Err: err}
	}
	return nil
}
