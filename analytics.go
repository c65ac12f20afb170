package patrimonio

import (
	"math"
	"sort"
	"time"
)

// daysPerYear is the CAGR year length. The projection KPI historically
// used a 365-day year for its "negligible elapsed time" threshold while
// the annualized ROI series uses 365.25; both are kept as-is.
const (
	daysPerYear     = 365.25
	projectionYear  = 365.0
	fallbackCAGR    = 0.07
	minCAGRYears    = 0.01
	cagrClampFloor  = -0.5
	cagrClampCeil   = 1.0
)

// CumulativeROI is (value − invested) / invested as a percentage, 0 when
// nothing is invested. Never NaN or Inf.
func CumulativeROI(value, invested float64) float64 {
	if invested <= 0 {
		return 0
	}
	return (value - invested) / invested * 100
}

// AnnualizedROI converts a cumulative position into a compound annual
// rate (percent) over the elapsed period. Guarded to 0 when the elapsed
// time, the invested amount or the growth ratio make the power
// meaningless.
func AnnualizedROI(value, invested float64, start, current time.Time) float64 {
	if invested <= 0 {
		return 0
	}
	ratio := value / invested
	if ratio <= 0 {
		return 0
	}
	years := current.Sub(start).Hours() / 24 / daysPerYear
	if years <= 0 {
		return 0
	}
	return (math.Pow(ratio, 1/years) - 1) * 100
}

// PeriodicReturns computes the percentage return between consecutive
// points, net of contribution/withdrawal flows: the gain between two
// points is value − previousValue − (invested − previousInvested), so a
// deposit does not masquerade as market performance. The result is
// index-aligned with the input; the first element is always 0.
func PeriodicReturns(series []Snapshot, category string) []float64 {
	returns := make([]float64, len(series))
	for i := 1; i < len(series); i++ {
		value, invested := series[i].Totals(category)
		prevValue, prevInvested := series[i-1].Totals(category)
		gain := value - prevValue - (invested - prevInvested)
		if prevValue > 0 {
			returns[i] = gain / prevValue * 100
		}
	}
	return returns
}

// Volatility annualizes the population standard deviation of the given
// monthly percent returns by √12. Returns 0 for an empty series.
func Volatility(percentReturns []float64) float64 {
	_, std := meanStd(percentReturns)
	return std * math.Sqrt(12)
}

// RatioVolatility is the category-table variant: it takes plain ratio
// returns, annualizes by √12 and scales to percent. ok is false when
// there are fewer than 2 returns (rendered as a dash, not as 0).
func RatioVolatility(returns []float64) (vol float64, ok bool) {
	if len(returns) < 2 {
		return 0, false
	}
	_, std := meanStd(returns)
	return std * math.Sqrt(12) * 100, true
}

// PeakROIDrawdown tracks the cumulative ROI of the (optionally
// category-filtered) series and reports the worst peak-relative drop in
// percentage points. This is deliberately a percentage-point drawdown on
// the ROI curve, not a price-ratio drawdown; MaxDrawdown is the other
// definition and both are in use.
func PeakROIDrawdown(monthly []Snapshot, category string) float64 {
	peak := math.Inf(-1)
	maxDD := 0.0
	for _, s := range monthly {
		value, invested := s.Totals(category)
		roi := CumulativeROI(value, invested)
		if roi > peak {
			peak = roi
		}
		if dd := roi - peak; dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// MaxDrawdown is the ratio-based drawdown over a raw value series:
// worst (value − runningPeak) / runningPeak, as a percentage. ok is
// false for series shorter than 2 points.
func MaxDrawdown(values []float64) (dd float64, ok bool) {
	if len(values) < 2 {
		return 0, false
	}
	peak := values[0]
	maxDD := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			if d := (v - peak) / peak; d < maxDD {
				maxDD = d
			}
		}
	}
	return maxDD * 100, true
}

// ItemROI names one item (asset or category) with its ROI as a ratio.
type ItemROI struct {
	Name string
	ROI  float64
}

// PerformersReport holds the latest-snapshot-only per-item statistics.
type PerformersReport struct {
	Best    ItemROI
	Worst   ItemROI
	WinRate float64 // percent of items with ROI >= 0
	Items   int
}

// Performers computes best/worst item and win rate on the latest snapshot
// only: per asset when a category is selected, per category otherwise.
func Performers(latest Snapshot, category string) PerformersReport {
	var items []ItemROI
	if category != "" {
		for _, a := range latest.Assets {
			if a.Category != category {
				continue
			}
			roi := 0.0
			if a.PurchaseValue > 0 {
				roi = (a.CurrentValue - a.PurchaseValue) / a.PurchaseValue
			}
			items = append(items, ItemROI{Name: a.Name, ROI: roi})
		}
	} else {
		for _, cat := range latest.Categories() {
			value := latest.Metrics.CategoryTotals[cat]
			invested := latest.Metrics.CategoryInvested[cat]
			roi := 0.0
			if invested > 0 {
				roi = (value - invested) / invested
			}
			items = append(items, ItemROI{Name: cat, ROI: roi})
		}
	}

	report := PerformersReport{Best: ItemROI{Name: "-"}, Worst: ItemROI{Name: "-"}}
	if len(items) == 0 {
		return report
	}
	best, worst := items[0], items[0]
	wins := 0
	for _, it := range items {
		if it.ROI > best.ROI {
			best = it
		}
		if it.ROI < worst.ROI {
			worst = it
		}
		if it.ROI >= 0 {
			wins++
		}
	}
	report.Best, report.Worst = best, worst
	report.Items = len(items)
	report.WinRate = float64(wins) / float64(len(items)) * 100
	return report
}

// Projection estimates next year's portfolio value from the CAGR observed
// across the selected range (first vs latest snapshot, whole-portfolio
// totals). The rate is clamped to [-50%, +100%] and falls back to a flat
// 7% when the range is too short to mean anything.
func Projection(rangeSnapshots []Snapshot, latest Snapshot) (projected, cagr float64) {
	cagr = fallbackCAGR
	if len(rangeSnapshots) >= 2 {
		first := rangeSnapshots[0]
		years := latest.Date.Sub(first.Date).Hours() / 24 / projectionYear
		if years > minCAGRYears && first.Metrics.TotalPurchaseValue > 0 {
			totalReturn := latest.Metrics.TotalCurrentValue / first.Metrics.TotalPurchaseValue
			cagr = math.Pow(totalReturn, 1/years) - 1
			cagr = math.Max(cagrClampFloor, math.Min(cagr, cagrClampCeil))
		}
	}
	return latest.Metrics.TotalCurrentValue * (1 + cagr), cagr
}

// AnalyticsReport aggregates the KPI row of the dashboard for a selected
// range and optional category filter.
type AnalyticsReport struct {
	Range           Range
	Category        string
	MaxDrawdown     float64 // percentage points, peak-relative on cumulative ROI
	Performers      PerformersReport
	Volatility      float64 // annualized, percent
	BestMonth       time.Time
	BestMonthReturn float64
	HasBestMonth    bool
	ProjectedValue  float64
	CAGR            float64
}

// ComputeAnalytics derives the full KPI set. It tolerates an empty
// snapshot list and returns a zeroed report.
func ComputeAnalytics(snapshots []Snapshot, r Range, category string) AnalyticsReport {
	report := AnalyticsReport{
		Range:    r,
		Category: category,
		Performers: PerformersReport{
			Best: ItemROI{Name: "-"}, Worst: ItemROI{Name: "-"},
		},
	}
	if len(snapshots) == 0 {
		return report
	}

	latest := snapshots[len(snapshots)-1]
	rangeSnapshots := SelectRange(snapshots, r)
	monthly := CollapseMonthly(rangeSnapshots)

	report.MaxDrawdown = PeakROIDrawdown(monthly, category)
	report.Performers = Performers(latest, category)
	report.ProjectedValue, report.CAGR = Projection(rangeSnapshots, latest)

	returns := PeriodicReturns(monthly, category)
	if len(returns) > 1 {
		report.Volatility = Volatility(returns[1:])
		best := math.Inf(-1)
		for i := 1; i < len(returns); i++ {
			if returns[i] > best {
				best = returns[i]
				report.BestMonth = monthly[i].Date
				report.BestMonthReturn = returns[i]
				report.HasBestMonth = true
			}
		}
	}
	return report
}

// PerformanceRow is one line of the performance table: a category of the
// whole portfolio, or an asset of the selected category.
type PerformanceRow struct {
	Name          string
	Invested      float64
	Current       float64
	ROI           float64 // percent
	Volatility    float64 // annualized percent, whole-portfolio view only
	HasVolatility bool
	Drawdown      float64 // ratio-based percent, whole-portfolio view only
	HasDrawdown   bool
}

// PerformanceRows builds the performance table from the latest snapshot,
// sorted by ROI descending. In the whole-portfolio view each category
// also gets volatility and ratio drawdown over its monthly value series.
func PerformanceRows(snapshots []Snapshot, r Range, category string) []PerformanceRow {
	if len(snapshots) == 0 {
		return nil
	}
	latest := snapshots[len(snapshots)-1]

	var rows []PerformanceRow
	if category != "" {
		for _, a := range latest.Assets {
			if a.Category != category {
				continue
			}
			rows = append(rows, PerformanceRow{
				Name:     a.Name,
				Invested: a.PurchaseValue,
				Current:  a.CurrentValue,
				ROI:      CumulativeROI(a.CurrentValue, a.PurchaseValue),
			})
		}
	} else {
		monthly := CollapseMonthly(SelectRange(snapshots, r))
		for _, cat := range latest.Categories() {
			invested := latest.Metrics.CategoryInvested[cat]
			current := latest.Metrics.CategoryTotals[cat]

			values := make([]float64, len(monthly))
			for i, s := range monthly {
				values[i], _ = s.Totals(cat)
			}
			// Plain month-over-month changes: the table tracks the value
			// curve itself, flows included.
			var returns []float64
			for i := 1; i < len(values); i++ {
				if values[i-1] > 0 {
					returns = append(returns, (values[i]-values[i-1])/values[i-1])
				} else {
					returns = append(returns, 0)
				}
			}

			row := PerformanceRow{
				Name:     cat,
				Invested: invested,
				Current:  current,
				ROI:      CumulativeROI(current, invested),
			}
			row.Volatility, row.HasVolatility = RatioVolatility(returns)
			row.Drawdown, row.HasDrawdown = MaxDrawdown(values)
			rows = append(rows, row)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].ROI > rows[j].ROI })
	return rows
}

// TopItem is one entry of the "top holdings" table.
type TopItem struct {
	Name     string
	Value    float64
	Invested float64
	ROI      float64 // percent
}

// TopItems returns the n largest assets of the selected category, or the
// n largest categories of the whole portfolio, by current value.
func TopItems(latest Snapshot, category string, n int) []TopItem {
	var items []TopItem
	if category != "" {
		for _, a := range latest.Assets {
			if a.Category != category {
				continue
			}
			items = append(items, TopItem{
				Name:     a.Name,
				Value:    a.CurrentValue,
				Invested: a.PurchaseValue,
				ROI:      CumulativeROI(a.CurrentValue, a.PurchaseValue),
			})
		}
	} else {
		for _, cat := range latest.Categories() {
			value := latest.Metrics.CategoryTotals[cat]
			invested := latest.Metrics.CategoryInvested[cat]
			items = append(items, TopItem{
				Name:     cat,
				Value:    value,
				Invested: invested,
				ROI:      CumulativeROI(value, invested),
			})
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Value > items[j].Value })
	if len(items) > n {
		items = items[:n]
	}
	return items
}

// meanStd returns the mean and population standard deviation. The
// analytics deliberately use population variance (divide by N), matching
// the historical definition of the volatility KPI.
func meanStd(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	var variance float64
	for _, x := range xs {
		variance += (x - mean) * (x - mean)
	}
	variance /= float64(len(xs))
	return mean, math.Sqrt(variance)
}
