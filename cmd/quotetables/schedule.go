package main

import (
	"context"
	"flag"

	"QuoteTables/internal/harvest"
	"QuoteTables/internal/notifier"
	"QuoteTables/internal/scheduler"
	"QuoteTables/internal/symbols"

	"github.com/google/subcommands"
	log "github.com/sirupsen/logrus"
)

type scheduleCmd struct {
	runOnStart bool
}

func (*scheduleCmd) Name() string     { return "schedule" }
func (*scheduleCmd) Synopsis() string { return "harvest on the configured cron schedule" }
func (*scheduleCmd) Usage() string {
	return `schedule [-now]

  Runs a rolling-window harvest of the configured universes on the
  schedule.cron spec until interrupted. Posts a summary of every run to
  Telegram when a bot token and chat id are configured.
`
}

func (c *scheduleCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.runOnStart, "now", false, "also run a harvest immediately")
}

func (c *scheduleCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		return failure(err)
	}
	sel := symbols.Selection{Manual: cfg.Schedule.Manual}
	for _, u := range cfg.Schedule.Universes {
		sel.Universes = append(sel.Universes, symbols.UniverseID(u))
	}
	if err := sel.Validate(); err != nil {
		return failure(err)
	}
	s, err := newSink(cfg.Output.Dir, cfg.Output.Format)
	if err != nil {
		return failure(err)
	}

	rec := openRecorder(cfg)
	defer rec.Close()

	p := &harvest.Pipeline{
		Directory: newDirectory(cfg),
		Collector: newCollector(cfg, 0),
		Sink:      s,
		Recorder:  rec,
		OutputDir: cfg.Output.Dir,
	}

	var tn *notifier.TelegramNotifier
	var n scheduler.Notifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		n = tn
	}

	sched := scheduler.NewScheduler(ctx, p, sel, cfg.Schedule.LookbackDays, n, rec)
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		return failure(err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info("telegram polling started")
	}
	if c.runOnStart || cfg.Schedule.RunOnStart {
		log.Info("run on start enabled, executing harvest now")
		go sched.RunNow()
	}

	log.WithField("cron", cfg.Schedule.Cron).Info("QuoteTables scheduler is running. Press Ctrl+C to stop.")
	<-ctx.Done()
	log.Info("shutdown signal received, stopping...")
	return subcommands.ExitSuccess
}
