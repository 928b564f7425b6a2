package recorder

import "QuoteTables/internal/model"

// Recorder persists harvest runs for later inspection.
type Recorder interface {
	RecordRun(run *model.RunSummary) error
	// RecordObservations stores the retained rows of a run.
	RecordObservations(runID string, lt model.LongTable) error
	// ListRuns returns up to limit runs, most recent first.
	ListRuns(limit int) ([]model.RunSummary, error)
	Close() error
}
