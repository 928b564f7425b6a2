// Package harvest runs one end-to-end collection: it resolves the symbol
// set, fetches every series, reconciles and pivots them, and writes the
// tables.
package harvest

import (
	"context"
	"fmt"
	"time"

	"QuoteTables/internal/collector"
	"QuoteTables/internal/model"
	"QuoteTables/internal/recorder"
	"QuoteTables/internal/router"
	"QuoteTables/internal/sink"
	"QuoteTables/internal/symbols"
	"QuoteTables/internal/table"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Request describes a single harvest.
type Request struct {
	Selection symbols.Selection
	Start     time.Time
	End       time.Time // inclusive
	Quick     string    // field name, empty unless quick mode
	Verbose   bool
	LongName  string // when set, the long table is also written under this name
}

// ParseWindow parses the start and end dates of a request.
func ParseWindow(start, end string) (time.Time, time.Time, error) {
	s, err := model.ParseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, &model.ConfigurationError{Field: "start", Msg: fmt.Sprintf("expected YYYY-MM-DD, got %q", start)}
	}
	e, err := model.ParseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, &model.ConfigurationError{Field: "end", Msg: fmt.Sprintf("expected YYYY-MM-DD, got %q", end)}
	}
	return s, e, nil
}

// RollingWindow returns the window of the last days calendar days ending at now.
func RollingWindow(now time.Time, days int) (time.Time, time.Time) {
	end := model.TruncateDate(now)
	return end.AddDate(0, 0, -days), end
}

// Validate checks the request without touching the network.
func (r Request) Validate() error {
	if r.Start.IsZero() {
		return &model.ConfigurationError{Field: "start", Msg: "required"}
	}
	if r.End.IsZero() {
		return &model.ConfigurationError{Field: "end", Msg: "required"}
	}
	if r.End.Before(r.Start) {
		return &model.ConfigurationError{Field: "end", Msg: "must not be before start"}
	}
	if _, _, err := router.SelectMode(r.Quick, r.Verbose); err != nil {
		return err
	}
	return r.Selection.Validate()
}

// Pipeline wires the stages of a harvest together.
type Pipeline struct {
	Directory symbols.Directory
	Collector *collector.Collector
	Sink      sink.Sink
	Recorder  recorder.Recorder
	OutputDir string // reported in run summaries
}

// Run executes a harvest. Configuration errors are returned before any
// network I/O. Per-symbol fetch failures are logged and reported in the
// summary; shape and sink errors abort the run.
func (p *Pipeline) Run(ctx context.Context, req Request) (*model.RunSummary, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	mode, field, _ := router.SelectMode(req.Quick, req.Verbose)

	run := &model.RunSummary{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Start:     model.TruncateDate(req.Start),
		End:       model.TruncateDate(req.End),
		Output:    p.OutputDir,
	}
	for _, u := range req.Selection.Universes {
		run.Universes = append(run.Universes, string(u))
	}
	if req.Selection.Manual != "" {
		run.Universes = append(run.Universes, "manual")
	}
	logger := log.WithField("run_id", run.ID)
	logger.WithFields(log.Fields{"start": run.Start.Format(model.DateLayout), "end": run.End.Format(model.DateLayout), "mode": mode}).Info("harvest started")

	set, err := symbols.Build(ctx, req.Selection, p.Directory)
	if err != nil {
		return nil, err
	}
	syms := set.Slice()
	run.Requested = len(syms)

	results := p.Collector.FetchAll(ctx, syms, run.Start, run.End)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, sym := range syms {
		if r, ok := results[sym]; ok && !r.OK() {
			run.Skipped = append(run.Skipped, sym)
		}
	}
	series := collector.Successful(results)
	run.Fetched = len(series)

	lt := table.Assemble(series)
	rec := table.Reconcile(lt)
	run.Retained = rec.Retained
	run.Dropped = rec.Dropped
	run.Length = rec.Length
	for _, sym := range rec.Dropped {
		logger.WithFields(log.Fields{"symbol": sym, "length": rec.Length}).Warn("dropping symbol with non-dominant row count")
	}

	tables, err := table.PivotAll(lt, rec.Retained)
	if err != nil {
		return nil, err
	}
	if _, err := router.New(p.Sink, mode, field).Route(ctx, tables); err != nil {
		return nil, err
	}
	if req.LongName != "" {
		if err := p.Sink.WriteTable(ctx, req.LongName, sink.FromLong(lt)); err != nil {
			return nil, err
		}
		logger.WithFields(log.Fields{"file": req.LongName + p.Sink.Ext(), "rows": lt.Len()}).Info("long table written")
	}

	run.Duration = time.Since(run.StartedAt)
	p.archive(run, table.Filter(lt, rec.Retained))
	logger.WithFields(log.Fields{
		"requested": run.Requested,
		"fetched":   run.Fetched,
		"retained":  len(run.Retained),
		"length":    run.Length,
		"took":      run.Duration.Round(time.Millisecond),
	}).Info("harvest finished")
	return run, nil
}

// archive stores the run. Archive failures never fail the harvest.
func (p *Pipeline) archive(run *model.RunSummary, retained model.LongTable) {
	if p.Recorder == nil {
		return
	}
	if err := p.Recorder.RecordRun(run); err != nil {
		log.WithError(err).WithField("run_id", run.ID).Error("record run")
		return
	}
	if err := p.Recorder.RecordObservations(run.ID, retained); err != nil {
		log.WithError(err).WithField("run_id", run.ID).Error("record observations")
	}
}
