package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/msoler/patrimonio/renderer"
)

type historyCmd struct{}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display the snapshot history" }
func (*historyCmd) Usage() string {
	return `pat history

  Lists all snapshots, newest first, with their totals.
`
}

func (*historyCmd) SetFlags(*flag.FlagSet) {}

func (c *historyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, _, err := OpenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.HistoryMarkdown(store.Snapshots()))
	return subcommands.ExitSuccess
}

type viewCmd struct {
	id int64
}

func (*viewCmd) Name() string     { return "view" }
func (*viewCmd) Synopsis() string { return "display one snapshot with its assets" }
func (*viewCmd) Usage() string {
	return `pat view [-id <id>]

  Shows the asset detail of a snapshot, the latest by default.
`
}

func (c *viewCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.id, "id", 0, "snapshot id, latest by default")
}

func (c *viewCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, _, err := OpenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}

	snap, ok := store.Latest()
	if c.id != 0 {
		snap, ok = store.Find(c.id)
	}
	if !ok {
		fmt.Fprintln(os.Stderr, "no such snapshot")
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.SnapshotMarkdown(snap))
	return subcommands.ExitSuccess
}

type copyCmd struct {
	id int64
}

func (*copyCmd) Name() string     { return "copy" }
func (*copyCmd) Synopsis() string { return "print a snapshot in the pasteable tabular format" }
func (*copyCmd) Usage() string {
	return `pat copy [-id <id>]

  Prints a snapshot's assets as tab-separated rows with locale numbers,
  the same format capture accepts. Handy as a template for the next
  capture.
`
}

func (c *copyCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.id, "id", 0, "snapshot id, latest by default")
}

func (c *copyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, _, err := OpenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}

	id := c.id
	if id == 0 {
		latest, ok := store.Latest()
		if !ok {
			fmt.Fprintln(os.Stderr, "no snapshots yet")
			return subcommands.ExitFailure
		}
		id = latest.ID
	}
	text, err := store.ExportTabular(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Print(text)
	return subcommands.ExitSuccess
}
