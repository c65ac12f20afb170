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

// topHoldings is how many entries the top holdings table shows.
const topHoldings = 5

type summaryCmd struct {
	category string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the portfolio summary" }
func (*summaryCmd) Usage() string {
	return `pat summary [-c <category>]

  Shows the current totals, the last period's gain net of contributions,
  and profit comparisons against year start, previous month and one year
  ago.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.category, "c", "", "category filter, 'all' for the whole portfolio")
}

func (c *summaryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, storage, err := OpenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	category := SelectedCategory(storage, c.category)
	summary := patrimonio.Summarize(store.Snapshots(), category)
	printMarkdown(renderer.SummaryMarkdown(summary, category))
	return subcommands.ExitSuccess
}

type analyticsCmd struct {
	category string
	rng      string
}

func (*analyticsCmd) Name() string     { return "analytics" }
func (*analyticsCmd) Synopsis() string { return "display performance analytics over a range" }
func (*analyticsCmd) Usage() string {
	return `pat analytics [-r all|6m|1y|3y] [-c <category>]

  Shows drawdown, volatility, best and worst performers, the best month
  and a one-year projection, plus the per-category performance table.
`
}

func (c *analyticsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.rng, "r", "all", "trailing range anchored at the latest snapshot")
	f.StringVar(&c.category, "c", "", "category filter, 'all' for the whole portfolio")
}

func (c *analyticsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	r, err := patrimonio.ParseRange(c.rng)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	store, storage, err := OpenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	category := SelectedCategory(storage, c.category)

	snapshots := store.Snapshots()
	report := patrimonio.ComputeAnalytics(snapshots, r, category)
	rows := patrimonio.PerformanceRows(snapshots, r, category)
	var top []patrimonio.TopItem
	if latest, ok := store.Latest(); ok {
		top = patrimonio.TopItems(latest, category, topHoldings)
	}
	printMarkdown(renderer.AnalyticsMarkdown(report, rows, top))
	return subcommands.ExitSuccess
}

type opportunitiesCmd struct {
	category string
	months   int
}

func (*opportunitiesCmd) Name() string     { return "opportunities" }
func (*opportunitiesCmd) Synopsis() string { return "scan for unusual moves in the latest assets" }
func (*opportunitiesCmd) Usage() string {
	return `pat opportunities [-m <months>] [-c <category>]

  Ranks the latest snapshot's assets by signal strength over a trailing
  window of monthly points: abnormal drops and rallies, deep drawdowns,
  sustained trends, net sell-offs.
`
}

func (c *opportunitiesCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.months, "m", 1, "comparison window in months")
	f.StringVar(&c.category, "c", "", "category filter, 'all' for the whole portfolio")
}

func (c *opportunitiesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, storage, err := OpenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	category := SelectedCategory(storage, c.category)
	monthly := patrimonio.CollapseMonthly(store.Snapshots())
	signals := patrimonio.Opportunities(monthly, category, c.months)
	printMarkdown(renderer.OpportunitiesMarkdown(signals))
	return subcommands.ExitSuccess
}

type compositionCmd struct {
	category string
	months   int
}

func (*compositionCmd) Name() string     { return "composition" }
func (*compositionCmd) Synopsis() string { return "display the weight breakdown and its drift" }
func (*compositionCmd) Usage() string {
	return `pat composition [-m <months>] [-c <category>]

  Shows how the portfolio (or a category) is split by weight and how each
  slice drifted against the snapshot -m months back.
`
}

func (c *compositionCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.months, "m", 1, "comparison period in months")
	f.StringVar(&c.category, "c", "", "category filter, 'all' for the whole portfolio")
}

func (c *compositionCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, storage, err := OpenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	category := SelectedCategory(storage, c.category)
	report := patrimonio.Composition(store.Snapshots(), category, c.months)
	printMarkdown(renderer.CompositionMarkdown(report, category, c.months))
	return subcommands.ExitSuccess
}
