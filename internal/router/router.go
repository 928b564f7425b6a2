// Package router decides which wide tables are written and where.
package router

import (
	"context"
	"fmt"
	"path/filepath"

	"QuoteTables/internal/model"
	"QuoteTables/internal/sink"

	log "github.com/sirupsen/logrus"
)

// Mode selects the output shape.
type Mode int

const (
	// ModeCombined writes one file per field with a column per symbol.
	ModeCombined Mode = iota
	// ModeQuick writes a single file for one requested field.
	ModeQuick
	// ModeVerbose writes one directory per symbol with one file per field.
	ModeVerbose
)

func (m Mode) String() string {
	switch m {
	case ModeCombined:
		return "combined"
	case ModeQuick:
		return "quick"
	case ModeVerbose:
		return "verbose"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// SelectMode maps the quick/verbose options to a Mode. quick holds the
// requested field name, empty when quick mode is off.
func SelectMode(quick string, verbose bool) (Mode, model.Field, error) {
	if quick != "" && verbose {
		return 0, 0, &model.ConfigurationError{Field: "quick", Msg: "quick and verbose modes are mutually exclusive"}
	}
	if quick != "" {
		f, err := model.ParseField(quick)
		if err != nil {
			return 0, 0, err
		}
		return ModeQuick, f, nil
	}
	if verbose {
		return ModeVerbose, 0, nil
	}
	return ModeCombined, 0, nil
}

// Router writes the wide tables of a run to a Sink.
type Router struct {
	Sink  sink.Sink
	Mode  Mode
	Field model.Field // used by ModeQuick
}

// New creates a Router.
func New(s sink.Sink, mode Mode, field model.Field) *Router {
	return &Router{Sink: s, Mode: mode, Field: field}
}

// Route writes tables according to the router's mode and returns the paths
// written, without extension. The first sink failure aborts routing; files
// written before it are kept.
func (r *Router) Route(ctx context.Context, tables map[model.Field]*model.WideTable) ([]string, error) {
	switch r.Mode {
	case ModeQuick:
		return r.writeFields(ctx, tables, []model.Field{r.Field})
	case ModeVerbose:
		return r.writeVerbose(ctx, tables)
	default:
		return r.writeFields(ctx, tables, model.AllFields)
	}
}

func (r *Router) writeFields(ctx context.Context, tables map[model.Field]*model.WideTable, fields []model.Field) ([]string, error) {
	var written []string
	for _, f := range fields {
		w, ok := tables[f]
		if !ok {
			return written, fmt.Errorf("no table for field %s", f)
		}
		path := f.FileName()
		if err := r.Sink.WriteTable(ctx, path, sink.FromWide(w)); err != nil {
			return written, err
		}
		log.WithFields(log.Fields{"file": path + r.Sink.Ext(), "columns": len(w.Symbols), "rows": w.Rows()}).Info("table written")
		written = append(written, path)
	}
	return written, nil
}

func (r *Router) writeVerbose(ctx context.Context, tables map[model.Field]*model.WideTable) ([]string, error) {
	ref, ok := tables[model.Close]
	if !ok {
		return nil, fmt.Errorf("no table for field %s", model.Close)
	}
	var written []string
	for _, sym := range ref.Symbols {
		dir := string(sym)
		if err := r.Sink.MkdirAll(dir); err != nil {
			return written, err
		}
		for _, f := range model.AllFields {
			w, ok := tables[f]
			if !ok {
				return written, fmt.Errorf("no table for field %s", f)
			}
			path := filepath.Join(dir, f.FileName())
			if err := r.Sink.WriteTable(ctx, path, sink.FromWideColumn(w, sym)); err != nil {
				return written, err
			}
			written = append(written, path)
		}
		log.WithFields(log.Fields{"symbol": sym, "dir": dir}).Info("symbol directory written")
	}
	return written, nil
}
