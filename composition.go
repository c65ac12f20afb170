package patrimonio

import (
	"sort"
	"time"
)

// compositionLimit caps the per-asset composition list.
const compositionLimit = 8

// PreviousMonthSnapshot returns the most recent snapshot strictly from an
// earlier calendar month than the given one. The latest element is
// skipped, it is the comparison subject itself.
func PreviousMonthSnapshot(snapshots []Snapshot, current Snapshot) (Snapshot, bool) {
	cy, cm := current.Date.UTC().Year(), current.Date.UTC().Month()
	for i := len(snapshots) - 2; i >= 0; i-- {
		d := snapshots[i].Date.UTC()
		if d.Year() < cy || (d.Year() == cy && d.Month() < cm) {
			return snapshots[i], true
		}
	}
	return Snapshot{}, false
}

// SnapshotMonthsAgo returns the most recent snapshot dated in or before
// the calendar month monthsBack months before the given one.
func SnapshotMonthsAgo(snapshots []Snapshot, current Snapshot, monthsBack int) (Snapshot, bool) {
	cur := current.Date.UTC()
	target := time.Date(cur.Year(), cur.Month()-time.Month(monthsBack)+1, 0, 0, 0, 0, 0, time.UTC)
	ty, tm := target.Year(), target.Month()
	for i := len(snapshots) - 2; i >= 0; i-- {
		d := snapshots[i].Date.UTC()
		if d.Year() < ty || (d.Year() == ty && d.Month() <= tm) {
			return snapshots[i], true
		}
	}
	return Snapshot{}, false
}

// YearStartSnapshot returns the first snapshot on or after January 1st of
// the given snapshot's year.
func YearStartSnapshot(snapshots []Snapshot, current Snapshot) (Snapshot, bool) {
	start := time.Date(current.Date.UTC().Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	for _, s := range snapshots {
		if !s.Date.Before(start) {
			return s, true
		}
	}
	return Snapshot{}, false
}

// CompositionRow is one slice of the composition breakdown with its drift
// against the comparison snapshot.
type CompositionRow struct {
	Label       string
	Percent     float64
	PrevPercent float64
	Change      float64 // percentage points, 0 without a comparison point
}

// CompositionReport is the weight breakdown of the latest snapshot:
// categories of the whole portfolio, or the largest assets of the
// selected category, each with its drift over the comparison period.
type CompositionReport struct {
	Rows      []CompositionRow
	HasPrev   bool
	HasChange bool // some row drifted noticeably; otherwise changes render as a dash
}

// Composition breaks down the latest snapshot by weight and compares each
// slice against the snapshot compareMonths months back. Assets are
// matched across snapshots by normalized name; portfolio categories by
// exact label, like every single-snapshot aggregation.
func Composition(snapshots []Snapshot, category string, compareMonths int) CompositionReport {
	if len(snapshots) == 0 {
		return CompositionReport{}
	}
	latest := snapshots[len(snapshots)-1]
	prev, hasPrev := SnapshotMonthsAgo(snapshots, latest, compareMonths)

	report := CompositionReport{HasPrev: hasPrev}
	if category != "" {
		report.Rows = assetComposition(latest, prev, hasPrev, category)
	} else {
		report.Rows = categoryComposition(latest, prev, hasPrev)
	}
	for _, row := range report.Rows {
		if row.Change > 0.01 || row.Change < -0.01 {
			report.HasChange = true
			break
		}
	}
	return report
}

func assetComposition(latest, prev Snapshot, hasPrev bool, category string) []CompositionRow {
	var assets []Asset
	total := 0.0
	for _, a := range latest.Assets {
		if a.Category == category {
			assets = append(assets, a)
			total += a.CurrentValue
		}
	}
	if total == 0 {
		total = 1
	}

	prevTotal := total
	prevByName := make(map[string]Asset)
	if hasPrev {
		ck := NormKey(category)
		prevTotal = 0
		for _, a := range prev.Assets {
			if NormKey(a.Category) != ck {
				continue
			}
			prevTotal += a.CurrentValue
			key := NormKey(a.Name)
			if _, seen := prevByName[key]; !seen {
				prevByName[key] = a
			}
		}
		if prevTotal == 0 {
			prevTotal = 1
		}
	}

	sort.SliceStable(assets, func(i, j int) bool {
		return assets[i].CurrentValue > assets[j].CurrentValue
	})
	if len(assets) > compositionLimit {
		assets = assets[:compositionLimit]
	}

	rows := make([]CompositionRow, 0, len(assets))
	for _, a := range assets {
		row := CompositionRow{
			Label:   a.Name,
			Percent: a.CurrentValue / total * 100,
		}
		if hasPrev {
			if pa, ok := prevByName[NormKey(a.Name)]; ok {
				row.PrevPercent = pa.CurrentValue / prevTotal * 100
			}
			row.Change = row.Percent - row.PrevPercent
		}
		rows = append(rows, row)
	}
	return rows
}

func categoryComposition(latest, prev Snapshot, hasPrev bool) []CompositionRow {
	total := latest.Metrics.TotalCurrentValue
	if total == 0 {
		total = 1
	}
	prevTotal := total
	if hasPrev {
		prevTotal = prev.Metrics.TotalCurrentValue
		if prevTotal == 0 {
			prevTotal = 1
		}
	}

	cats := latest.Categories()
	sort.SliceStable(cats, func(i, j int) bool {
		return latest.Metrics.CategoryTotals[cats[i]] > latest.Metrics.CategoryTotals[cats[j]]
	})

	rows := make([]CompositionRow, 0, len(cats))
	for _, cat := range cats {
		row := CompositionRow{
			Label:   cat,
			Percent: latest.Metrics.CategoryTotals[cat] / total * 100,
		}
		if hasPrev {
			row.PrevPercent = prev.Metrics.CategoryTotals[cat] / prevTotal * 100
			row.Change = row.Percent - row.PrevPercent
		}
		rows = append(rows, row)
	}
	return rows
}
