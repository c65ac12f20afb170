package patrimonio

// Comparison is the profit delta against a reference snapshot: how much
// more (or less) the portfolio has earned since then, flows excluded on
// both sides because each term is value − invested.
type Comparison struct {
	Change float64
	OK     bool
}

// Summary is the headline card: current totals, the gain and ROI of the
// last monthly period, and profit comparisons against fixed reference
// points.
type Summary struct {
	TotalValue    float64
	TotalInvested float64
	Profit        float64 // value − invested, cumulative

	// Last period, against the most recent snapshot of an earlier month.
	// Without one, PeriodGain and PeriodROI fall back to the cumulative
	// figures.
	PeriodGain     float64 // net of contributions in the period
	PeriodROI      float64 // percent
	PeriodInvested float64 // contributions since the reference snapshot
	HasPrevMonth   bool

	AccumROI float64 // cumulative, percent

	VsYearStart Comparison
	VsPrevMonth Comparison
	VsYearAgo   Comparison
}

// Summarize builds the headline summary for the latest snapshot,
// optionally restricted to one category (exact label match, like the
// stored aggregates).
func Summarize(snapshots []Snapshot, category string) Summary {
	if len(snapshots) == 0 {
		return Summary{}
	}
	latest := snapshots[len(snapshots)-1]
	value, invested := latest.Totals(category)

	s := Summary{
		TotalValue:    value,
		TotalInvested: invested,
		Profit:        value - invested,
		PeriodGain:    value - invested,
		AccumROI:      CumulativeROI(value, invested),
	}
	if invested > 0 {
		s.PeriodROI = s.AccumROI
	}

	prev, hasPrev := PreviousMonthSnapshot(snapshots, latest)
	if hasPrev {
		prevValue, prevInvested := prev.Totals(category)
		s.HasPrevMonth = true
		s.PeriodInvested = invested - prevInvested
		s.PeriodGain = value - prevValue - s.PeriodInvested
		s.PeriodROI = 0
		if prevValue > 0 {
			s.PeriodROI = s.PeriodGain / prevValue * 100
		}
	}

	compare := func(ref Snapshot, ok bool) Comparison {
		if !ok {
			return Comparison{}
		}
		refValue, refInvested := ref.Totals(category)
		return Comparison{Change: s.Profit - (refValue - refInvested), OK: true}
	}
	if start, ok := YearStartSnapshot(snapshots, latest); ok {
		s.VsYearStart = compare(start, true)
	}
	s.VsPrevMonth = compare(prev, hasPrev)
	if yearAgo, ok := SnapshotMonthsAgo(snapshots, latest, 12); ok {
		s.VsYearAgo = compare(yearAgo, true)
	}
	return s
}
