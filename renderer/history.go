package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"

	"github.com/msoler/patrimonio"
	"github.com/msoler/patrimonio/date"
)

// HistoryMarkdown renders the snapshot history, newest first.
func HistoryMarkdown(snapshots []patrimonio.Snapshot) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Snapshot History")

	if len(snapshots) == 0 {
		doc.PlainText("No snapshots yet. Capture one with `pat capture`.")
		doc.Build()
		return buf.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignRight,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"ID", "Date", "Tag", "Value", "Invested", "Variation"},
		Rows:   [][]string{},
	}
	for i := len(snapshots) - 1; i >= 0; i-- {
		s := snapshots[i]
		table.Rows = append(table.Rows, []string{
			fmt.Sprintf("%d", s.ID),
			date.Of(s.Date.UTC()).String(),
			s.Tag,
			eur(s.Metrics.TotalCurrentValue),
			eur(s.Metrics.TotalPurchaseValue),
			signedEur(s.Metrics.Variation),
		})
	}
	doc.Table(table)
	doc.Build()
	return buf.String()
}

// SnapshotMarkdown renders one snapshot with its full asset list.
func SnapshotMarkdown(s patrimonio.Snapshot) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(fmt.Sprintf("Snapshot %s", date.Of(s.Date.UTC())))
	if s.Tag != "" {
		doc.PlainText(fmt.Sprintf("Tag: %s", s.Tag))
	}
	if s.Note != "" {
		doc.PlainText(s.Note)
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Name", "Category", "Term", "Qty", "Buy Price", "Price", "Invested", "Value"},
		Rows:   [][]string{},
	}
	for _, a := range s.Assets {
		table.Rows = append(table.Rows, []string{
			a.Name,
			a.Category,
			a.Term,
			qty(a.Quantity),
			eur(a.PurchasePrice),
			eur(a.CurrentPrice),
			eur(a.PurchaseValue),
			eur(a.CurrentValue),
		})
	}
	doc.Table(table)

	doc.BulletList(
		fmt.Sprintf("Total value: %s", eur(s.Metrics.TotalCurrentValue)),
		fmt.Sprintf("Invested: %s", eur(s.Metrics.TotalPurchaseValue)),
		fmt.Sprintf("Variation: %s", signedEur(s.Metrics.Variation)),
	)
	doc.Build()
	return buf.String()
}
