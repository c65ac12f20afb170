package renderer

import (
	"bytes"
	"fmt"
	"strings"

	md "github.com/nao1215/markdown"

	"github.com/msoler/patrimonio"
)

// AnalyticsMarkdown renders the KPI row, the performance table and the
// top holdings for a selected range.
func AnalyticsMarkdown(r patrimonio.AnalyticsReport, rows []patrimonio.PerformanceRow, top []patrimonio.TopItem) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	title := fmt.Sprintf("Analytics (%s)", r.Range)
	if r.Category != "" {
		title = fmt.Sprintf("Analytics for %s (%s)", r.Category, r.Range)
	}
	doc.H1(title)

	bestMonth := "-"
	if r.HasBestMonth {
		bestMonth = fmt.Sprintf("%s (%s)", r.BestMonth.UTC().Format("2006-01"), signedPct(r.BestMonthReturn))
	}
	doc.BulletList(
		fmt.Sprintf("Max drawdown: %.2f pp", r.MaxDrawdown),
		fmt.Sprintf("Best: %s (%s)", r.Performers.Best.Name, signedPct(r.Performers.Best.ROI*100)),
		fmt.Sprintf("Worst: %s (%s)", r.Performers.Worst.Name, signedPct(r.Performers.Worst.ROI*100)),
		fmt.Sprintf("Win rate: %.0f%% of %d", r.Performers.WinRate, r.Performers.Items),
		fmt.Sprintf("Volatility (annualized): %s", pct(r.Volatility)),
		fmt.Sprintf("Best month: %s", bestMonth),
		fmt.Sprintf("Projected value (1y): %s at %s", eur(r.ProjectedValue), signedPct(r.CAGR*100)),
	)

	if len(rows) > 0 {
		header := "Performance by Category"
		if r.Category != "" {
			header = "Performance by Asset"
		}
		doc.H2(header)
		table := md.TableSet{
			Alignment: []md.TableAlignment{
				md.AlignLeft,
				md.AlignRight,
				md.AlignRight,
				md.AlignRight,
				md.AlignRight,
				md.AlignRight,
			},
			Header: []string{"Name", "Invested", "Value", "ROI", "Volatility", "Drawdown"},
			Rows:   [][]string{},
		}
		for _, row := range rows {
			vol, dd := "-", "-"
			if row.HasVolatility {
				vol = pct(row.Volatility)
			}
			if row.HasDrawdown {
				dd = fmt.Sprintf("%.1f%%", row.Drawdown)
			}
			table.Rows = append(table.Rows, []string{
				row.Name,
				eur(row.Invested),
				eur(row.Current),
				signedPct(row.ROI),
				vol,
				dd,
			})
		}
		doc.Table(table)
	}

	if len(top) > 0 {
		doc.H2("Top Holdings")
		table := md.TableSet{
			Alignment: []md.TableAlignment{
				md.AlignLeft,
				md.AlignRight,
				md.AlignRight,
				md.AlignRight,
			},
			Header: []string{"Name", "Value", "Invested", "ROI"},
			Rows:   [][]string{},
		}
		for _, item := range top {
			table.Rows = append(table.Rows, []string{
				item.Name,
				eur(item.Value),
				eur(item.Invested),
				signedPct(item.ROI),
			})
		}
		doc.Table(table)
	}

	doc.Build()
	return buf.String()
}

// OpportunitiesMarkdown renders the ranked opportunity signals.
func OpportunitiesMarkdown(opportunities []patrimonio.Opportunity) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Opportunities")

	if len(opportunities) == 0 {
		doc.PlainText("No notable signals in the period.")
		doc.Build()
		return buf.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignLeft,
		},
		Header: []string{"Asset", "Last", "Trend", "Flow", "Drawdown", "Z", "Signals"},
		Rows:   [][]string{},
	}
	for _, o := range opportunities {
		st := o.Stats
		table.Rows = append(table.Rows, []string{
			o.Name,
			signedPct(st.LastReturn),
			signedPct(st.Trend),
			signedPct(st.NetFlowPct),
			fmt.Sprintf("%.1f%%", st.Drawdown),
			fmt.Sprintf("%.2f", st.ZScore),
			strings.Join(o.Tags, ", "),
		})
	}
	doc.Table(table)
	doc.Build()
	return buf.String()
}
