package main

import (
	"context"
	"flag"
	"fmt"

	"QuoteTables/internal/harvest"

	"github.com/google/subcommands"
)

type fetchCmd struct {
	sel     selectionFlags
	start   string
	end     string
	quick   string
	verbose bool
	name    string
	out     string
	format  string
	workers int
}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "download daily quotes and write per-field tables" }
func (*fetchCmd) Usage() string {
	return `fetch [-dow] [-sp] [-commodities] [-currencies] [-manual A,B] -start YYYY-MM-DD -end YYYY-MM-DD
      [-quick field | -verbose] [-name file] [-out dir] [-format csv|xlsx] [-workers n]

  Downloads the daily bars of every selected symbol between start and end
  (inclusive) and writes one table per field with a column per symbol.
  Symbols whose row count differs from the most common one are dropped.

  -quick writes only the named field; -verbose writes one directory per
  symbol instead of combined tables.
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {
	c.sel.register(f)
	f.StringVar(&c.start, "start", "", "first date, YYYY-MM-DD")
	f.StringVar(&c.end, "end", "", "last date (inclusive), YYYY-MM-DD")
	f.StringVar(&c.quick, "quick", "", "write only this field (open, high, low, close, adj_close, volume)")
	f.BoolVar(&c.verbose, "verbose", false, "write one directory per symbol")
	f.StringVar(&c.name, "name", "", "also write the long table of every fetched row under this name")
	f.StringVar(&c.out, "out", "", "output directory (default from config)")
	f.StringVar(&c.format, "format", "", "output format: csv or xlsx (default from config)")
	f.IntVar(&c.workers, "workers", 0, "concurrent downloads (default from config)")
}

func (c *fetchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	start, end, err := harvest.ParseWindow(c.start, c.end)
	if err != nil {
		return failure(err)
	}
	req := harvest.Request{
		Selection: c.sel.selection(),
		Start:     start,
		End:       end,
		Quick:     c.quick,
		Verbose:   c.verbose,
		LongName:  c.name,
	}
	if err := req.Validate(); err != nil {
		return failure(err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return failure(err)
	}
	out, format := cfg.Output.Dir, cfg.Output.Format
	if c.out != "" {
		out = c.out
	}
	if c.format != "" {
		format = c.format
	}
	s, err := newSink(out, format)
	if err != nil {
		return failure(err)
	}

	rec := openRecorder(cfg)
	defer rec.Close()

	p := &harvest.Pipeline{
		Directory: newDirectory(cfg),
		Collector: newCollector(cfg, c.workers),
		Sink:      s,
		Recorder:  rec,
		OutputDir: out,
	}
	run, err := p.Run(ctx, req)
	if err != nil {
		return failure(err)
	}

	fmt.Printf("%d/%d symbols retained, %d rows each, written to %s\n", len(run.Retained), run.Requested, run.Length, out)
	if len(run.Skipped) > 0 {
		fmt.Printf("skipped: %v\n", run.Skipped)
	}
	if len(run.Dropped) > 0 {
		fmt.Printf("dropped: %v\n", run.Dropped)
	}
	return subcommands.ExitSuccess
}
