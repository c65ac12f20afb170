package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/msoler/patrimonio"
)

type exportCmd struct {
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the whole history as JSON" }
func (*exportCmd) Usage() string {
	return `pat export [-o <file>]

  Writes the full snapshot history as a JSON array, the same format
  import accepts. Prints to stdout by default.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "output file, stdout by default")
}

func (c *exportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, _, err := OpenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	data, err := store.ExportJSON()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.output == "" {
		fmt.Println(string(data))
		return subcommands.ExitSuccess
	}
	if err := os.WriteFile(c.output, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", c.output, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Exported %d snapshots to %s\n", store.Len(), c.output)
	return subcommands.ExitSuccess
}

type importCmd struct {
	file string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "replace the history with an exported JSON array" }
func (*importCmd) Usage() string {
	return `pat import [-f <file>]

  Replaces the whole snapshot history with the given JSON array. Legacy
  keyed-object assets are migrated on the way in. Reads from stdin
  unless -f is given.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "file with the JSON array, stdin by default")
}

func (c *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	if err := store.Import([]byte(raw)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Imported %d snapshots\n", store.Len())
	return subcommands.ExitSuccess
}

type categoryCmd struct {
	clear bool
}

func (*categoryCmd) Name() string     { return "category" }
func (*categoryCmd) Synopsis() string { return "show or set the persistent category filter" }
func (*categoryCmd) Usage() string {
	return `pat category [<name>] [-clear]

  Without arguments, shows the persisted category filter. With a name,
  persists it so every report defaults to that category. -clear removes
  the filter.
`
}

func (c *categoryCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.clear, "clear", false, "remove the persisted filter")
}

func (c *categoryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	storage, err := OpenStorage()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening storage: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.clear {
		if err := storage.Delete(patrimonio.KeySelectedCategory); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Println("Category filter cleared")
		return subcommands.ExitSuccess
	}

	if name := f.Arg(0); name != "" {
		if err := storage.Write(patrimonio.KeySelectedCategory, []byte(name)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Category filter set to %q\n", name)
		return subcommands.ExitSuccess
	}

	current := SelectedCategory(storage, "")
	if current == "" {
		fmt.Println("No category filter (whole portfolio)")
	} else {
		fmt.Printf("Category filter: %q\n", current)
	}
	return subcommands.ExitSuccess
}
