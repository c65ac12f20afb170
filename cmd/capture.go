package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/msoler/patrimonio/date"
)

type captureCmd struct {
	date string
	tag  string
	note string
	file string
}

func (*captureCmd) Name() string     { return "capture" }
func (*captureCmd) Synopsis() string { return "record a new snapshot from pasted tabular text" }
func (*captureCmd) Usage() string {
	return `pat capture [-d <date>] [-t <tag>] [-n <note>] [-f <file>]

  Records a snapshot of the portfolio from tab-separated rows of
  name, term, category, buy price, quantity, price, invested, value.
  Reads from stdin unless -f is given.
`
}

func (c *captureCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "date of the snapshot")
	f.StringVar(&c.tag, "t", "", "free-form tag, e.g. 'monthly'")
	f.StringVar(&c.note, "n", "", "free-form note")
	f.StringVar(&c.file, "f", "", "file with the tabular text, stdin by default")
}

func (c *captureCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	raw, err := readInput(c.file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		return subcommands.ExitFailure
	}

	store, _, err := OpenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}

	snap, err := store.Capture(raw, on.Time(), c.tag, c.note)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Captured snapshot %d with %d assets, total %s\n",
		snap.ID, len(snap.Assets), fmtEur(snap.Metrics.TotalCurrentValue))
	return subcommands.ExitSuccess
}

func readInput(file string) (string, error) {
	if file == "" || file == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(file)
	return string(data), err
}
