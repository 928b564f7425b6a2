package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"QuoteTables/internal/model"

	"github.com/google/subcommands"
)

type historyCmd struct {
	limit int
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "list recent runs from the archive" }
func (*historyCmd) Usage() string {
	return `history [-n count]

  Lists the most recent harvest runs recorded in the SQLite archive.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", 20, "number of runs to show")
}

func (c *historyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		return failure(err)
	}
	rec := openRecorder(cfg)
	defer rec.Close()

	runs, err := rec.ListRuns(c.limit)
	if err != nil {
		return failure(err)
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return subcommands.ExitSuccess
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSTARTED\tWINDOW\tSOURCES\tREQUESTED\tRETAINED\tROWS")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s..%s\t%s\t%d\t%d\t%d\n",
			shortRunID(r.ID),
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.Start.Format(model.DateLayout), r.End.Format(model.DateLayout),
			strings.Join(r.Universes, ","),
			r.Requested, len(r.Retained), r.Length)
	}
	if err := w.Flush(); err != nil {
		return failure(err)
	}
	return subcommands.ExitSuccess
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
