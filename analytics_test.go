package patrimonio

import (
	"math"
	"testing"
	"time"
)

func TestPeriodicReturnsNetOfFlows(t *testing.T) {
	series := []Snapshot{
		testSnapshot(1, "2026-01-31", testAsset("A", "X", 100, 100)),
		// Value jumped to 130 but 20 of that is a fresh contribution:
		// only 10 is market gain.
		testSnapshot(2, "2026-02-28", testAsset("A", "X", 120, 130)),
	}
	returns := PeriodicReturns(series, "")
	if len(returns) != 2 || returns[0] != 0 {
		t.Fatalf("unexpected returns shape: %v", returns)
	}
	if math.Abs(returns[1]-10) > 1e-9 {
		t.Errorf("got %v%%, want 10%% (the contribution is not performance)", returns[1])
	}
}

func TestPeriodicReturnsZeroPrevValue(t *testing.T) {
	series := []Snapshot{
		testSnapshot(1, "2026-01-31"),
		testSnapshot(2, "2026-02-28", testAsset("A", "X", 100, 100)),
	}
	returns := PeriodicReturns(series, "")
	if returns[1] != 0 {
		t.Errorf("zero previous value must yield 0, got %v", returns[1])
	}
}

func TestCumulativeROI(t *testing.T) {
	if got := CumulativeROI(110, 100); math.Abs(got-10) > 1e-9 {
		t.Errorf("got %v, want 10", got)
	}
	if got := CumulativeROI(110, 0); got != 0 {
		t.Errorf("zero invested must yield 0, got %v", got)
	}
}

func TestAnnualizedROIGuards(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// Roughly one year of 21% growth stays near 21% annualized.
	got := AnnualizedROI(121, 100, start, end)
	if math.Abs(got-21) > 1 {
		t.Errorf("got %v, want about 21", got)
	}

	for name, v := range map[string]float64{
		"zero invested":  AnnualizedROI(110, 0, start, end),
		"negative ratio": AnnualizedROI(-10, 100, start, end),
		"zero years":     AnnualizedROI(110, 100, end, end),
		"negative years": AnnualizedROI(110, 100, end, start),
	} {
		if v != 0 {
			t.Errorf("%s must yield 0, got %v", name, v)
		}
	}
}

func TestVolatility(t *testing.T) {
	if got := Volatility(nil); got != 0 {
		t.Errorf("empty series must yield 0, got %v", got)
	}
	// Constant returns have zero deviation.
	if got := Volatility([]float64{2, 2, 2}); got != 0 {
		t.Errorf("constant series must yield 0, got %v", got)
	}
	// Population std of {1,-1} is 1, annualized by sqrt(12).
	got := Volatility([]float64{1, -1})
	if math.Abs(got-math.Sqrt(12)) > 1e-9 {
		t.Errorf("got %v, want sqrt(12)", got)
	}
}

func TestPeakROIDrawdown(t *testing.T) {
	// Cumulative ROI series: 0%, 10%, 5%, 15% -> worst drop is 5pp.
	monthly := []Snapshot{
		testSnapshot(1, "2026-01-31", testAsset("A", "X", 100, 100)),
		testSnapshot(2, "2026-02-28", testAsset("A", "X", 100, 110)),
		testSnapshot(3, "2026-03-31", testAsset("A", "X", 100, 105)),
		testSnapshot(4, "2026-04-30", testAsset("A", "X", 100, 115)),
	}
	if got := PeakROIDrawdown(monthly, ""); math.Abs(got-(-5)) > 1e-9 {
		t.Errorf("got %v, want -5", got)
	}
	// Monotonic growth never draws down.
	if got := PeakROIDrawdown(monthly[:2], ""); got != 0 {
		t.Errorf("got %v, want 0", got)
	}
}

func TestMaxDrawdown(t *testing.T) {
	if _, ok := MaxDrawdown([]float64{100}); ok {
		t.Error("single point must report ok=false")
	}
	got, ok := MaxDrawdown([]float64{100, 110, 88, 120})
	if !ok {
		t.Fatal("want ok")
	}
	if math.Abs(got-(-20)) > 1e-9 {
		t.Errorf("got %v, want -20 (88 vs peak 110)", got)
	}
}

func TestPerformers(t *testing.T) {
	latest := testSnapshot(1, "2026-04-30",
		testAsset("Winner", "X", 100, 150),
		testAsset("Loser", "Y", 100, 80),
		testAsset("Flat", "Z", 100, 100),
	)
	report := Performers(latest, "")
	if report.Best.Name != "X" || report.Worst.Name != "Y" {
		t.Errorf("best/worst = %q/%q, want X/Y", report.Best.Name, report.Worst.Name)
	}
	if report.Items != 3 {
		t.Errorf("items = %d, want 3", report.Items)
	}
	// Two of three categories are at or above break-even.
	if math.Abs(report.WinRate-100.0*2/3) > 1e-9 {
		t.Errorf("win rate = %v", report.WinRate)
	}

	byAsset := Performers(latest, "Y")
	if byAsset.Best.Name != "Loser" || byAsset.Items != 1 {
		t.Errorf("category view wrong: %+v", byAsset)
	}

	empty := Performers(Snapshot{}, "")
	if empty.Best.Name != "-" || empty.Worst.Name != "-" || empty.Items != 0 {
		t.Errorf("empty snapshot: %+v", empty)
	}
}

func TestProjection(t *testing.T) {
	// Too short a history falls back to the flat default rate.
	latest := testSnapshot(2, "2026-04-30", testAsset("A", "X", 100, 110))
	projected, cagr := Projection([]Snapshot{latest}, latest)
	if cagr != fallbackCAGR {
		t.Errorf("cagr = %v, want fallback %v", cagr, fallbackCAGR)
	}
	if math.Abs(projected-110*1.07) > 1e-9 {
		t.Errorf("projected = %v", projected)
	}

	// Explosive growth is clamped to +100%/year.
	first := testSnapshot(1, "2025-04-30", testAsset("A", "X", 100, 100))
	_, cagr = Projection([]Snapshot{first, latest}, testSnapshot(3, "2026-04-30", testAsset("A", "X", 100, 1000)))
	if cagr != cagrClampCeil {
		t.Errorf("cagr = %v, want clamp at %v", cagr, cagrClampCeil)
	}
}

func TestComputeAnalyticsEmpty(t *testing.T) {
	report := ComputeAnalytics(nil, RangeAll, "")
	if report.Volatility != 0 || report.MaxDrawdown != 0 || report.HasBestMonth {
		t.Errorf("empty history must zero the report: %+v", report)
	}
	if report.Performers.Best.Name != "-" {
		t.Errorf("empty performers: %+v", report.Performers)
	}
}

func TestPerformanceRows(t *testing.T) {
	snaps := []Snapshot{
		testSnapshot(1, "2026-01-31",
			testAsset("A", "X", 100, 100),
			testAsset("B", "Y", 100, 100)),
		testSnapshot(2, "2026-02-28",
			testAsset("A", "X", 100, 110),
			testAsset("B", "Y", 100, 95)),
		testSnapshot(3, "2026-03-31",
			testAsset("A", "X", 100, 120),
			testAsset("B", "Y", 100, 90)),
	}
	rows := PerformanceRows(snaps, RangeAll, "")
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	// Sorted by ROI descending.
	if rows[0].Name != "X" || rows[1].Name != "Y" {
		t.Errorf("order = %q,%q want X,Y", rows[0].Name, rows[1].Name)
	}
	if !rows[0].HasVolatility || !rows[0].HasDrawdown {
		t.Error("whole-portfolio rows should carry volatility and drawdown")
	}

	assetRows := PerformanceRows(snaps, RangeAll, "X")
	if len(assetRows) != 1 || assetRows[0].Name != "A" {
		t.Errorf("category view wrong: %+v", assetRows)
	}
	if assetRows[0].HasVolatility {
		t.Error("asset rows do not carry volatility")
	}
}

func TestTopItems(t *testing.T) {
	latest := testSnapshot(1, "2026-04-30",
		testAsset("Big", "X", 100, 500),
		testAsset("Mid", "Y", 100, 300),
		testAsset("Small", "Z", 100, 100),
	)
	top := TopItems(latest, "", 2)
	if len(top) != 2 || top[0].Name != "X" || top[1].Name != "Y" {
		t.Errorf("top categories wrong: %+v", top)
	}
	byAsset := TopItems(latest, "X", 5)
	if len(byAsset) != 1 || byAsset[0].Name != "Big" {
		t.Errorf("top assets wrong: %+v", byAsset)
	}
}
