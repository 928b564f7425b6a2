package main

import (
	"context"
	"flag"
	"fmt"

	"QuoteTables/internal/symbols"

	"github.com/google/subcommands"
)

type membersCmd struct {
	sel selectionFlags
}

func (*membersCmd) Name() string     { return "members" }
func (*membersCmd) Synopsis() string { return "print the resolved symbol set" }
func (*membersCmd) Usage() string {
	return `members [-dow] [-sp] [-commodities] [-currencies] [-manual A,B]

  Prints the deduplicated symbols a fetch with the same flags would request,
  one per line.
`
}

func (c *membersCmd) SetFlags(f *flag.FlagSet) {
	c.sel.register(f)
}

func (c *membersCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	sel := c.sel.selection()
	if err := sel.Validate(); err != nil {
		return failure(err)
	}
	cfg, err := loadConfig()
	if err != nil {
		return failure(err)
	}
	set, err := symbols.Build(ctx, sel, newDirectory(cfg))
	if err != nil {
		return failure(err)
	}
	for _, s := range set.Slice() {
		fmt.Println(s)
	}
	return subcommands.ExitSuccess
}
