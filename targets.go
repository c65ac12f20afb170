package patrimonio

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Auto-balance tuning. The heuristic over-weights categories below their
// target (gap adjustment) but never starves a category with a positive
// target below a quarter of its base weight.
const (
	adjustFactor  = 0.6
	minFloorRatio = 0.25
)

// AssetTarget is a per-asset allocation target inside a category.
type AssetTarget struct {
	Target float64 `json:"target"`
}

// CategoryTarget holds the desired percentage, the planned monthly
// contribution and optional per-asset targets for one category.
type CategoryTarget struct {
	Target  float64                `json:"target,omitempty"`
	Monthly float64                `json:"monthly,omitempty"`
	Assets  map[string]AssetTarget `json:"assets,omitempty"`
}

// Targets maps category label to its allocation target. Labels match the
// snapshot categories byte-for-byte.
type Targets map[string]CategoryTarget

// TargetsMeta holds settings that apply across all targets.
type TargetsMeta struct {
	MonthlyBudget float64 `json:"monthlyBudget"`
}

// LoadTargets reads the persisted targets; an absent key yields an empty
// map, ready to be filled.
func LoadTargets(storage Storage) (Targets, error) {
	data, ok, err := storage.Read(KeyTargets)
	if err != nil {
		return nil, err
	}
	targets := Targets{}
	if !ok {
		return targets, nil
	}
	if err := json.Unmarshal(data, &targets); err != nil {
		return nil, fmt.Errorf("cannot parse stored targets: %w", err)
	}
	return targets, nil
}

// SaveTargets persists the whole targets map.
func SaveTargets(storage Storage, targets Targets) error {
	data, err := json.Marshal(targets)
	if err != nil {
		return fmt.Errorf("cannot encode targets: %w", err)
	}
	return storage.Write(KeyTargets, data)
}

// LoadTargetsMeta reads the persisted meta, defaulting to a zero budget.
func LoadTargetsMeta(storage Storage) (TargetsMeta, error) {
	data, ok, err := storage.Read(KeyTargetsMeta)
	if err != nil {
		return TargetsMeta{}, err
	}
	if !ok {
		return TargetsMeta{}, nil
	}
	var meta TargetsMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return TargetsMeta{}, fmt.Errorf("cannot parse stored targets meta: %w", err)
	}
	return meta, nil
}

// SaveTargetsMeta persists the meta settings.
func SaveTargetsMeta(storage Storage, meta TargetsMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("cannot encode targets meta: %w", err)
	}
	return storage.Write(KeyTargetsMeta, data)
}

// SetCategoryTarget records a category's target percentage, clamped to
// [0, 100]. Other fields of the entry are preserved.
func (t Targets) SetCategoryTarget(cat string, pct float64) {
	entry := t[cat]
	entry.Target = math.Max(0, math.Min(100, pct))
	t[cat] = entry
}

// SetMonthly records a category's planned monthly contribution, floored
// at 0.
func (t Targets) SetMonthly(cat string, amount float64) {
	entry := t[cat]
	entry.Monthly = math.Max(0, amount)
	t[cat] = entry
}

// SetAssetTarget records a per-asset target inside a category, clamped to
// [0, 100].
func (t Targets) SetAssetTarget(cat, asset string, pct float64) {
	entry := t[cat]
	if entry.Assets == nil {
		entry.Assets = make(map[string]AssetTarget)
	}
	entry.Assets[asset] = AssetTarget{Target: math.Max(0, math.Min(100, pct))}
	t[cat] = entry
}

// GapRow is one line of the targets table: a category of the portfolio,
// or an asset of the selected category.
type GapRow struct {
	Name       string
	CurrentPct float64
	Target     float64
	Gap        float64 // target − current, percentage points

	// Portfolio view only.
	Monthly      float64 // planned contribution
	BaseMonthly  float64 // proportional share of the budget
	GapDelta     float64 // pp of gap closed by the planned contributions
	ImpactActive bool    // contributions exist, so GapDelta is meaningful
}

// TargetsReport is the targets table plus its summary line.
type TargetsReport struct {
	Rows         []GapRow
	TargetSum    float64 // sum of targets, informational (need not be 100)
	MonthlyTotal float64 // sum of planned contributions
	AssetView    bool
}

// TargetGaps builds the targets table. The whole-portfolio view compares
// category weights against their targets and projects the impact of the
// planned monthly contributions; selecting a category switches to
// per-asset targets within it, where contributions do not apply.
func TargetGaps(latest Snapshot, targets Targets, meta TargetsMeta, category string) TargetsReport {
	if category != "" {
		return assetGaps(latest, targets, category)
	}

	report := TargetsReport{}
	totalValue := latest.Metrics.TotalCurrentValue

	sumTargets := 0.0
	totalMonthly := 0.0
	for _, cat := range latest.Categories() {
		sumTargets += targets[cat].Target
		totalMonthly += targets[cat].Monthly
	}
	baseSum := sumTargets
	if baseSum == 0 {
		baseSum = 1
	}

	for _, cat := range latest.Categories() {
		currentValue := latest.Metrics.CategoryTotals[cat]
		currentPct := 0.0
		if totalValue > 0 {
			currentPct = currentValue / totalValue * 100
		}
		target := targets[cat].Target
		monthly := targets[cat].Monthly

		// Where the weight would land after one round of contributions.
		projectedPct := currentPct
		if projectedTotal := totalValue + totalMonthly; projectedTotal > 0 {
			projectedPct = (currentValue + monthly) / projectedTotal * 100
		}
		row := GapRow{
			Name:         cat,
			CurrentPct:   currentPct,
			Target:       target,
			Gap:          target - currentPct,
			Monthly:      monthly,
			BaseMonthly:  baseMonthlyAllocation(target, baseSum, meta.MonthlyBudget),
			GapDelta:     math.Abs(target-currentPct) - math.Abs(target-projectedPct),
			ImpactActive: monthly > 0 && totalMonthly > 0,
		}
		report.Rows = append(report.Rows, row)
		report.TargetSum += target
		report.MonthlyTotal += monthly
	}

	sort.SliceStable(report.Rows, func(i, j int) bool {
		if report.Rows[i].CurrentPct != report.Rows[j].CurrentPct {
			return report.Rows[i].CurrentPct > report.Rows[j].CurrentPct
		}
		return report.Rows[i].Name < report.Rows[j].Name
	})
	return report
}

func assetGaps(latest Snapshot, targets Targets, category string) TargetsReport {
	report := TargetsReport{AssetView: true}

	totalValue := 0.0
	for _, a := range latest.Assets {
		if a.Category == category {
			totalValue += a.CurrentValue
		}
	}
	if totalValue == 0 {
		totalValue = 1
	}
	assetTargets := targets[category].Assets

	for _, a := range latest.Assets {
		if a.Category != category {
			continue
		}
		target := assetTargets[a.Name].Target
		currentPct := a.CurrentValue / totalValue * 100
		report.Rows = append(report.Rows, GapRow{
			Name:       a.Name,
			CurrentPct: currentPct,
			Target:     target,
			Gap:        target - currentPct,
		})
		report.TargetSum += target
	}

	sort.SliceStable(report.Rows, func(i, j int) bool {
		gi, gj := math.Abs(report.Rows[i].Gap), math.Abs(report.Rows[j].Gap)
		if gi != gj {
			return gi > gj
		}
		return report.Rows[i].Name < report.Rows[j].Name
	})
	return report
}

// baseMonthlyAllocation splits the budget across categories in proportion
// to their targets. Zero when there is no budget or no targets.
func baseMonthlyAllocation(target, sumTargets, budget float64) float64 {
	if budget == 0 || sumTargets == 0 {
		return 0
	}
	return math.Max(target, 0) / sumTargets * budget
}

// AutoBalance fills in the monthly contribution of every category of the
// latest snapshot by splitting the budget along gap-adjusted weights:
// weight = target + 0.6 × (target − current%), floored at a quarter of
// the target so an on-target category keeps receiving funds. Allocations
// are rounded to whole euros. Returns false, without touching the
// targets, when there is no budget or no portfolio value to balance
// against.
func AutoBalance(latest Snapshot, targets Targets, meta TargetsMeta) bool {
	totalValue := latest.Metrics.TotalCurrentValue
	if meta.MonthlyBudget <= 0 || totalValue <= 0 {
		return false
	}

	type weighted struct {
		cat    string
		weight float64
	}
	var weights []weighted
	totalWeight := 0.0
	for _, cat := range latest.Categories() {
		currentPct := latest.Metrics.CategoryTotals[cat] / totalValue * 100
		target := targets[cat].Target
		baseWeight := math.Max(target, 0)
		adjusted := baseWeight + adjustFactor*(target-currentPct)
		weight := math.Max(adjusted, baseWeight*minFloorRatio)
		weights = append(weights, weighted{cat: cat, weight: weight})
		totalWeight += weight
	}
	if totalWeight == 0 {
		totalWeight = 1
	}

	for _, w := range weights {
		allocation := w.weight / totalWeight * meta.MonthlyBudget
		entry := targets[w.cat]
		if math.IsNaN(allocation) || math.IsInf(allocation, 0) {
			entry.Monthly = 0
		} else {
			entry.Monthly = math.Round(allocation)
		}
		targets[w.cat] = entry
	}
	return true
}
