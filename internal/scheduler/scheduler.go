package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"QuoteTables/internal/harvest"
	"QuoteTables/internal/model"
	"QuoteTables/internal/notifier"
	"QuoteTables/internal/recorder"
	"QuoteTables/internal/symbols"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Notifier delivers run summaries.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs rolling-window harvests on a cron schedule.
type Scheduler struct {
	Cron         *cron.Cron
	Pipeline     *harvest.Pipeline
	Selection    symbols.Selection
	LookbackDays int
	Notifier     Notifier // optional
	Recorder     recorder.Recorder
	Ctx          context.Context

	mu  sync.Mutex
	now func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, p *harvest.Pipeline, sel symbols.Selection, lookbackDays int, n Notifier, rec recorder.Recorder) *Scheduler {
	logger := cron.PrintfLogger(log.StandardLogger())
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		Pipeline:     p,
		Selection:    sel,
		LookbackDays: lookbackDays,
		Notifier:     n,
		Recorder:     rec,
		Ctx:          ctx,
		now:          time.Now,
	}
}

// Register adds the harvest task on the given cron spec (with seconds).
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.harvestTask); err != nil {
		return &model.ConfigurationError{Field: "schedule.cron", Msg: fmt.Sprintf("invalid spec %q: %v", spec, err)}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running harvest to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info("scheduler stopped")
}

// RunNow executes a harvest immediately (for manual trigger / run_on_start).
func (s *Scheduler) RunNow() (*model.RunSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start, end := harvest.RollingWindow(s.now(), s.LookbackDays)
	log.WithFields(log.Fields{"start": start.Format(model.DateLayout), "end": end.Format(model.DateLayout)}).Info("running scheduled harvest")

	run, err := s.Pipeline.Run(s.Ctx, harvest.Request{Selection: s.Selection, Start: start, End: end})
	if err != nil {
		log.WithError(err).Error("scheduled harvest failed")
		s.trySend(notifier.FormatRunFailure(start.Format(model.DateLayout), end.Format(model.DateLayout), err))
		return nil, err
	}
	s.trySend(notifier.FormatRunSummary(run))
	return run, nil
}

func (s *Scheduler) harvestTask() {
	_, _ = s.RunNow()
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(_ context.Context, command string) string {
	switch command {
	case "/harvest":
		go s.harvestTask()
		return "Harvest started."
	case "/runs":
		runs, err := s.Recorder.ListRuns(10)
		if err != nil {
			return fmt.Sprintf("Could not list runs: %v", err)
		}
		return notifier.FormatHistory(runs)
	default:
		return "Available commands:\n• /harvest\n• /runs"
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.WithError(err).Error("send notification")
	}
}
