package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"

	"github.com/msoler/patrimonio"
)

// SummaryMarkdown renders the headline summary card.
func SummaryMarkdown(s patrimonio.Summary, category string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	title := "Portfolio Summary"
	if category != "" {
		title = fmt.Sprintf("Summary for %s", category)
	}
	doc.H1(title)

	period := "since start"
	if s.HasPrevMonth {
		period = "vs previous month"
	}
	doc.BulletList(
		fmt.Sprintf("Total value: %s", eur(s.TotalValue)),
		fmt.Sprintf("Invested: %s", eur(s.TotalInvested)),
		fmt.Sprintf("Profit: %s (%s)", signedEur(s.Profit), signedPct(s.AccumROI)),
		fmt.Sprintf("Period gain (%s): %s (%s)", period, signedEur(s.PeriodGain), signedPct(s.PeriodROI)),
	)
	if s.HasPrevMonth {
		doc.PlainText(fmt.Sprintf("Invested this period: %s", signedEur(s.PeriodInvested)))
	}

	doc.H2("Profit vs")
	doc.BulletList(
		fmt.Sprintf("Year start: %s", comparison(s.VsYearStart)),
		fmt.Sprintf("Previous month: %s", comparison(s.VsPrevMonth)),
		fmt.Sprintf("One year ago: %s", comparison(s.VsYearAgo)),
	)

	doc.Build()
	return buf.String()
}

func comparison(c patrimonio.Comparison) string {
	if !c.OK {
		return "-"
	}
	return signedEur(c.Change)
}
