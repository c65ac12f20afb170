package renderer

import (
	"bytes"
	"fmt"
	"math"

	md "github.com/nao1215/markdown"

	"github.com/msoler/patrimonio"
)

// TargetsMarkdown renders the allocation targets table with its summary
// line.
func TargetsMarkdown(r patrimonio.TargetsReport, meta patrimonio.TargetsMeta, category string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	if r.AssetView {
		doc.H1(fmt.Sprintf("Targets for %s", category))
	} else {
		doc.H1("Allocation Targets")
	}

	if len(r.Rows) == 0 {
		doc.PlainText("No data.")
		doc.Build()
		return buf.String()
	}

	if r.AssetView {
		table := md.TableSet{
			Alignment: []md.TableAlignment{
				md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight,
			},
			Header: []string{"Asset", "Current", "Target", "Gap"},
			Rows:   [][]string{},
		}
		for _, row := range r.Rows {
			table.Rows = append(table.Rows, []string{
				row.Name,
				fmt.Sprintf("%.1f%%", row.CurrentPct),
				fmt.Sprintf("%.1f%%", row.Target),
				fmt.Sprintf("%+.1f%%", row.Gap),
			})
		}
		doc.Table(table)
	} else {
		table := md.TableSet{
			Alignment: []md.TableAlignment{
				md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight,
				md.AlignRight, md.AlignRight, md.AlignRight,
			},
			Header: []string{"Category", "Current", "Target", "Gap", "Monthly", "Base", "Impact"},
			Rows:   [][]string{},
		}
		for _, row := range r.Rows {
			impact := "neutral"
			if row.ImpactActive {
				impact = fmt.Sprintf("%+.2fpp", row.GapDelta)
			}
			table.Rows = append(table.Rows, []string{
				row.Name,
				fmt.Sprintf("%.1f%%", row.CurrentPct),
				fmt.Sprintf("%.1f%%", row.Target),
				fmt.Sprintf("%+.1f%%", row.Gap),
				eur(row.Monthly),
				eur(row.BaseMonthly),
				impact,
			})
		}
		doc.Table(table)
		doc.PlainText(fmt.Sprintf("Monthly total: %s (budget %s)", eur(r.MonthlyTotal), eur(meta.MonthlyBudget)))
	}

	delta := 100 - r.TargetSum
	word := "missing"
	if delta < 0 {
		word = "over"
	}
	doc.PlainText(fmt.Sprintf("Targets: %.1f%% (%s %.1f%%)", r.TargetSum, word, math.Abs(delta)))

	doc.Build()
	return buf.String()
}

// CompositionMarkdown renders the weight breakdown with drift against the
// comparison period.
func CompositionMarkdown(r patrimonio.CompositionReport, category string, compareMonths int) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	if category != "" {
		doc.H1(fmt.Sprintf("Composition of %s", category))
	} else {
		doc.H1("Portfolio Composition")
	}

	if len(r.Rows) == 0 {
		doc.PlainText("No data.")
		doc.Build()
		return buf.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight,
		},
		Header: []string{"Name", "Weight", fmt.Sprintf("%dm ago", compareMonths), "Change"},
		Rows:   [][]string{},
	}
	for _, row := range r.Rows {
		change := "-"
		if r.HasPrev && r.HasChange {
			if math.Abs(row.Change) < 0.05 {
				change = "="
			} else {
				change = fmt.Sprintf("%+.1f%%", row.Change)
			}
		}
		prev := "-"
		if r.HasPrev {
			prev = fmt.Sprintf("%.1f%%", row.PrevPercent)
		}
		table.Rows = append(table.Rows, []string{
			row.Label,
			fmt.Sprintf("%.1f%%", row.Percent),
			prev,
			change,
		})
	}
	doc.Table(table)
	doc.Build()
	return buf.String()
}
