package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/msoler/patrimonio/date"
)

type editCmd struct {
	id   int64
	date string
	tag  string
	note string
	file string
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "replace a snapshot's content, keeping its id" }
func (*editCmd) Usage() string {
	return `pat edit -id <id> [-d <date>] [-t <tag>] [-n <note>] [-f <file>]

  Replaces the snapshot with the given id. The asset rows are read from
  stdin unless -f is given; the history is re-sorted if the date moved.
`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.id, "id", 0, "id of the snapshot to edit")
	f.StringVar(&c.date, "d", "", "new date, defaults to the snapshot's current date")
	f.StringVar(&c.tag, "t", "", "free-form tag")
	f.StringVar(&c.note, "n", "", "free-form note")
	f.StringVar(&c.file, "f", "", "file with the tabular text, stdin by default")
}

func (c *editCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == 0 {
		fmt.Fprintln(os.Stderr, "-id is required")
		return subcommands.ExitUsageError
	}

	store, _, err := OpenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	snap, ok := store.Find(c.id)
	if !ok {
		fmt.Fprintf(os.Stderr, "snapshot %d not found\n", c.id)
		return subcommands.ExitFailure
	}

	on := snap.Date
	if c.date != "" {
		d, err := date.Parse(c.date)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
		on = d.Time()
	}

	raw, err := readInput(c.file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := store.Edit(c.id, raw, on, c.tag, c.note); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Updated snapshot %d\n", c.id)
	return subcommands.ExitSuccess
}

type deleteCmd struct {
	id int64
}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete a snapshot" }
func (*deleteCmd) Usage() string {
	return `pat delete -id <id>

  Removes the snapshot with the given id from the history.
`
}

func (c *deleteCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.id, "id", 0, "id of the snapshot to delete")
}

func (c *deleteCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == 0 {
		fmt.Fprintln(os.Stderr, "-id is required")
		return subcommands.ExitUsageError
	}
	store, _, err := OpenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := store.Delete(c.id); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Deleted snapshot %d\n", c.id)
	return subcommands.ExitSuccess
}
