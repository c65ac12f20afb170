package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/msoler/patrimonio"
	"github.com/msoler/patrimonio/renderer"
)

type holdingsCmd struct {
	asset string
	qty   float64
	buy   float64
	price float64
}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "adjust quantities and prices of the latest snapshot" }
func (*holdingsCmd) Usage() string {
	return `pat holdings [-a <asset> [-qty <n>] [-buy <n>] [-price <n>]]

  Without flags, lists the latest snapshot's holdings. With -a, updates
  the named asset and recomputes its values from price × quantity. On
  the same day as the snapshot the edit replaces it; on a later day the
  edited state becomes a new snapshot and the original is kept.
`
}

func (c *holdingsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.asset, "a", "", "asset name to update")
	f.Float64Var(&c.qty, "qty", -1, "new quantity")
	f.Float64Var(&c.buy, "buy", -1, "new unit purchase price")
	f.Float64Var(&c.price, "price", -1, "new unit current price")
}

func (c *holdingsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, _, err := OpenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.asset == "" {
		latest, ok := store.Latest()
		if !ok {
			fmt.Fprintln(os.Stderr, "no snapshots yet")
			return subcommands.ExitFailure
		}
		printMarkdown(renderer.SnapshotMarkdown(latest))
		return subcommands.ExitSuccess
	}

	editor, err := patrimonio.NewHoldingsEditor(store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	index := -1
	for i, a := range editor.Assets() {
		if patrimonio.NormKey(a.Name) == patrimonio.NormKey(c.asset) {
			index = i
			break
		}
	}
	if index < 0 {
		fmt.Fprintf(os.Stderr, "asset %q not found in the latest snapshot\n", c.asset)
		return subcommands.ExitFailure
	}

	if c.qty >= 0 {
		editor.SetQuantity(index, c.qty)
	}
	if c.buy >= 0 {
		editor.SetPurchasePrice(index, c.buy)
	}
	if c.price >= 0 {
		editor.SetCurrentPrice(index, c.price)
	}

	summary, err := editor.Apply(time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println(summary)
	return subcommands.ExitSuccess
}
