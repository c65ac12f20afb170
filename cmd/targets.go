package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/msoler/patrimonio"
	"github.com/msoler/patrimonio/renderer"
)

type targetsCmd struct {
	category string
	set      string
	pct      float64
	monthly  float64
	budget   float64
}

func (*targetsCmd) Name() string     { return "targets" }
func (*targetsCmd) Synopsis() string { return "display or edit allocation targets" }
func (*targetsCmd) Usage() string {
	return `pat targets [-c <category>] [-set <name> -pct <n> | -set <name> -monthly <n> | -budget <n>]

  Without edit flags, shows the targets table: current weight vs target,
  gap, planned monthly contribution and its projected impact.

  -set with -pct records a target percentage for a category (or, with -c,
  for an asset within that category). -set with -monthly records a
  planned contribution. -budget records the global monthly budget.
`
}

func (c *targetsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.category, "c", "", "category filter, 'all' for the whole portfolio")
	f.StringVar(&c.set, "set", "", "category (or asset, with -c) to edit")
	f.Float64Var(&c.pct, "pct", -1, "target percentage to record")
	f.Float64Var(&c.monthly, "monthly", -1, "monthly contribution to record")
	f.Float64Var(&c.budget, "budget", -1, "global monthly budget to record")
}

func (c *targetsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, storage, err := OpenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	targets, err := patrimonio.LoadTargets(storage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	meta, err := patrimonio.LoadTargetsMeta(storage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	category := SelectedCategory(storage, c.category)

	dirty := false
	if c.budget >= 0 {
		meta.MonthlyBudget = c.budget
		if err := patrimonio.SaveTargetsMeta(storage, meta); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	if c.set != "" {
		switch {
		case c.pct >= 0 && category != "":
			targets.SetAssetTarget(category, c.set, c.pct)
			dirty = true
		case c.pct >= 0:
			targets.SetCategoryTarget(c.set, c.pct)
			dirty = true
		case c.monthly >= 0:
			targets.SetMonthly(c.set, c.monthly)
			dirty = true
		default:
			fmt.Fprintln(os.Stderr, "-set needs -pct or -monthly")
			return subcommands.ExitUsageError
		}
	}
	if dirty {
		if err := patrimonio.SaveTargets(storage, targets); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	latest, ok := store.Latest()
	if !ok {
		fmt.Fprintln(os.Stderr, "no snapshots yet")
		return subcommands.ExitFailure
	}
	report := patrimonio.TargetGaps(latest, targets, meta, category)
	printMarkdown(renderer.TargetsMarkdown(report, meta, category))
	return subcommands.ExitSuccess
}

type autoBalanceCmd struct{}

func (*autoBalanceCmd) Name() string     { return "autobalance" }
func (*autoBalanceCmd) Synopsis() string { return "split the monthly budget across categories" }
func (*autoBalanceCmd) Usage() string {
	return `pat autobalance

  Distributes the monthly budget across the portfolio's categories,
  over-weighting the ones furthest below their target, and records the
  result as each category's monthly contribution.
`
}

func (*autoBalanceCmd) SetFlags(*flag.FlagSet) {}

func (c *autoBalanceCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, storage, err := OpenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	targets, err := patrimonio.LoadTargets(storage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	meta, err := patrimonio.LoadTargetsMeta(storage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	latest, ok := store.Latest()
	if !ok {
		fmt.Fprintln(os.Stderr, "no snapshots yet")
		return subcommands.ExitFailure
	}
	if !patrimonio.AutoBalance(latest, targets, meta) {
		fmt.Fprintln(os.Stderr, "set a monthly budget first: pat targets -budget <n>")
		return subcommands.ExitFailure
	}
	if err := patrimonio.SaveTargets(storage, targets); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	report := patrimonio.TargetGaps(latest, targets, meta, "")
	printMarkdown(renderer.TargetsMarkdown(report, meta, ""))
	return subcommands.ExitSuccess
}
