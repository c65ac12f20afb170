package patrimonio

import (
	"math"
	"sort"
)

// Signal tags attached to an opportunity when its statistics cross the
// corresponding threshold. An item with no tags is never reported.
const (
	TagNetSellOff    = "net sell-off"
	TagAbnormalDrop  = "abnormal drop"
	TagStrongRally   = "strong momentum"
	TagHighDrawdown  = "high drawdown"
	TagPositiveTrend = "positive trend"
	TagNegativeTrend = "negative trend"
)

// opportunityLimit caps how many ranked signals are reported.
const opportunityLimit = 6

// SeriesStats summarizes one asset's trailing monthly series.
type SeriesStats struct {
	LastReturn    float64 // most recent net-of-flow monthly return, percent
	Mean          float64
	Std           float64 // population
	ZScore        float64 // of the last return, 0 when std is 0
	Trend         float64 // net-of-flow gain over the window vs first value, percent
	Drawdown      float64 // last value vs window maximum, percent
	NetInvestment float64 // invested delta over the window, euros
	NetFlowPct    float64 // net investment vs first value, percent
}

// Opportunity is one ranked signal.
type Opportunity struct {
	Name  string
	Stats SeriesStats
	Tags  []string
	Score float64
}

// Opportunities scans the assets of the latest snapshot for unusual moves
// over a trailing window of monthly points. The window is the last
// max(rangeMonths+1, 3) points of the collapsed series, so even a 1-month
// range compares at least two returns. Assets are matched across
// snapshots by normalized name; a category filter restricts both the
// asset list and the matches. Only tagged items are returned, ranked by
// score, at most 6.
func Opportunities(monthly []Snapshot, category string, rangeMonths int) []Opportunity {
	if len(monthly) == 0 {
		return nil
	}
	windowSize := rangeMonths + 1
	if windowSize < 3 {
		windowSize = 3
	}
	if windowSize > len(monthly) {
		windowSize = len(monthly)
	}
	window := monthly[len(monthly)-windowSize:]
	if len(window) < 2 {
		return nil
	}

	latest := monthly[len(monthly)-1]
	ck := NormKey(category)

	var items []Opportunity
	for _, a := range latest.Assets {
		if category != "" && NormKey(a.Category) != ck {
			continue
		}
		series := make([]seriesPoint, len(window))
		for i, s := range window {
			if found, ok := s.FindAsset(a.Name, category); ok {
				series[i] = seriesPoint{value: found.CurrentValue, invested: found.PurchaseValue}
			}
		}
		items = append(items, tag(Opportunity{Name: a.Name, Stats: seriesStats(series)}))
	}

	var ranked []Opportunity
	for _, it := range items {
		if len(it.Tags) > 0 {
			ranked = append(ranked, it)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	if len(ranked) > opportunityLimit {
		ranked = ranked[:opportunityLimit]
	}
	return ranked
}

type seriesPoint struct {
	value, invested float64
}

// seriesStats derives the signal statistics for one asset's window. An
// asset absent from a snapshot contributes a zero point, which the
// prev.value > 0 guard then skips for the return series.
func seriesStats(series []seriesPoint) SeriesStats {
	var returns []float64
	for i := 1; i < len(series); i++ {
		prev, curr := series[i-1], series[i]
		if prev.value <= 0 {
			continue
		}
		gain := curr.value - prev.value - (curr.invested - prev.invested)
		ret := gain / prev.value * 100
		if !math.IsInf(ret, 0) && !math.IsNaN(ret) {
			returns = append(returns, ret)
		}
	}

	mean, std := meanStd(returns)

	first, last := series[0], series[len(series)-1]
	base := 0.0
	if first.value > 0 {
		base = first.value
	}
	stats := SeriesStats{Mean: mean, Std: std}
	stats.NetInvestment = last.invested - first.invested
	if base > 0 {
		netGain := last.value - first.value - stats.NetInvestment
		stats.Trend = netGain / base * 100
		stats.NetFlowPct = stats.NetInvestment / base * 100
	}

	maxValue := 0.0
	for _, p := range series {
		if p.value > maxValue {
			maxValue = p.value
		}
	}
	if maxValue > 0 {
		stats.Drawdown = (last.value - maxValue) / maxValue * 100
	}

	if len(returns) > 0 {
		stats.LastReturn = returns[len(returns)-1]
	}
	if std > 0 {
		stats.ZScore = (stats.LastReturn - mean) / std
	}
	return stats
}

// tag classifies the item and scores it. Withdrawals discount the score
// so a drop caused by selling does not outrank a genuine market move.
func tag(item Opportunity) Opportunity {
	st := item.Stats
	if st.NetFlowPct <= -2 {
		item.Tags = append(item.Tags, TagNetSellOff)
	}
	if st.ZScore <= -1.2 && st.LastReturn < 0 {
		item.Tags = append(item.Tags, TagAbnormalDrop)
	}
	if st.ZScore >= 1.2 && st.LastReturn > 0 {
		item.Tags = append(item.Tags, TagStrongRally)
	}
	if st.Drawdown <= -12 && st.NetInvestment >= 0 {
		item.Tags = append(item.Tags, TagHighDrawdown)
	}
	if st.Trend >= 8 && st.LastReturn >= 0 {
		item.Tags = append(item.Tags, TagPositiveTrend)
	}
	if st.Trend <= -8 && st.LastReturn <= 0 {
		item.Tags = append(item.Tags, TagNegativeTrend)
	}

	penalty := 1.0
	if st.NetInvestment < 0 {
		penalty = 0.6
	}
	item.Score = math.Max(math.Abs(st.ZScore),
		math.Max(math.Abs(st.Drawdown)/10, math.Abs(st.Trend)/10)) * penalty
	return item
}
