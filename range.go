package patrimonio

import (
	"fmt"
	"sort"

	"github.com/msoler/patrimonio/date"
)

// Range is a trailing window over the snapshot history, anchored at the
// latest snapshot (not at "now": a stale history still shows its tail).
type Range string

const (
	RangeAll Range = "all"
	Range6M  Range = "6m"
	Range1Y  Range = "1y"
	Range3Y  Range = "3y"
)

// ParseRange parses a range token.
func ParseRange(s string) (Range, error) {
	switch Range(s) {
	case RangeAll, Range6M, Range1Y, Range3Y:
		return Range(s), nil
	default:
		return RangeAll, fmt.Errorf("unknown range %q (want all, 6m, 1y or 3y)", s)
	}
}

// months returns the window length, 0 meaning unbounded.
func (r Range) months() int {
	switch r {
	case Range6M:
		return 6
	case Range1Y:
		return 12
	case Range3Y:
		return 36
	default:
		return 0
	}
}

// SelectRange filters snapshots to the trailing window. The cutoff is the
// latest snapshot's date minus N months, zeroed to midnight; snapshots on
// the cutoff day are included, as is the latest itself.
func SelectRange(snapshots []Snapshot, r Range) []Snapshot {
	if len(snapshots) == 0 {
		return nil
	}
	months := r.months()
	if months == 0 {
		return snapshots
	}
	latest := snapshots[len(snapshots)-1]
	cutoff := date.Of(latest.Date.UTC()).AddMonths(-months).Time()

	var selected []Snapshot
	for _, s := range snapshots {
		if !s.Date.Before(cutoff) {
			selected = append(selected, s)
		}
	}
	return selected
}

// CollapseMonthly keeps one snapshot per calendar month: the last one
// observed, which in a chronologically ordered input is the month's most
// recent state. The result is sorted ascending by date. All time-series
// analytics run on this collapsed series so a burst of same-month
// captures does not distort returns.
func CollapseMonthly(snapshots []Snapshot) []Snapshot {
	byMonth := make(map[string]Snapshot)
	for _, s := range snapshots {
		byMonth[date.Of(s.Date.UTC()).MonthKey()] = s
	}
	monthly := make([]Snapshot, 0, len(byMonth))
	for _, s := range byMonth {
		monthly = append(monthly, s)
	}
	sort.Slice(monthly, func(i, j int) bool {
		return monthly[i].Date.Before(monthly[j].Date)
	})
	return monthly
}
