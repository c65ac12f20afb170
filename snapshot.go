package patrimonio

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// instantFormat is the persisted timestamp format, millisecond precision
// in UTC (the JavaScript Date#toISOString shape the stored data uses).
const instantFormat = "2006-01-02T15:04:05.000Z"

// Snapshot is a dated record of the full set of holdings and their
// then-current valuations. Only ID, Date, Assets, Tag and Note are ever
// persisted; Metrics is recomputed on every load.
type Snapshot struct {
	ID     int64
	Date   time.Time
	Assets []Asset
	Tag    string
	Note   string

	// Derived, never persisted.
	Metrics Metrics
}

// Metrics are the aggregates derived from a snapshot's asset list.
type Metrics struct {
	TotalCurrentValue  float64
	TotalPurchaseValue float64
	Variation          float64
	CategoryTotals     map[string]float64
	CategoryInvested   map[string]float64
	TermTotals         map[string]float64
}

// ComputeMetrics derives the aggregate metrics from the snapshot's asset
// list in a single pass. It is pure: no side effects, no persistence.
//
// Category and term are opaque grouping keys here, matched byte-for-byte.
// Cross-snapshot identity matching normalizes instead (see NormKey); the
// two policies are deliberately different.
func ComputeMetrics(s Snapshot) Metrics {
	m := Metrics{
		CategoryTotals:   make(map[string]float64),
		CategoryInvested: make(map[string]float64),
		TermTotals:       make(map[string]float64),
	}
	for _, a := range s.Assets {
		m.TotalCurrentValue += a.CurrentValue
		m.TotalPurchaseValue += a.PurchaseValue
		m.CategoryTotals[a.Category] += a.CurrentValue
		m.CategoryInvested[a.Category] += a.PurchaseValue
		m.TermTotals[a.Term] += a.CurrentValue
	}
	m.Variation = m.TotalCurrentValue - m.TotalPurchaseValue
	return m
}

// Totals returns the (current, invested) pair for the snapshot, filtered
// to a category when one is given. The filter matches the category label
// exactly, like the single-snapshot aggregations do.
func (s Snapshot) Totals(category string) (value, invested float64) {
	if category == "" {
		return s.Metrics.TotalCurrentValue, s.Metrics.TotalPurchaseValue
	}
	for _, a := range s.Assets {
		if a.Category == category {
			value += a.CurrentValue
			invested += a.PurchaseValue
		}
	}
	return value, invested
}

// Categories returns the snapshot's category labels in sorted order.
func (s Snapshot) Categories() []string {
	cats := make([]string, 0, len(s.Metrics.CategoryTotals))
	for cat := range s.Metrics.CategoryTotals {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	return cats
}

// FindAsset returns the first asset whose normalized name matches, and
// optionally whose normalized category matches when category is not
// empty. Used for cross-snapshot identity matching.
func (s Snapshot) FindAsset(name, category string) (Asset, bool) {
	nk, ck := NormKey(name), NormKey(category)
	for _, a := range s.Assets {
		if NormKey(a.Name) != nk {
			continue
		}
		if category != "" && NormKey(a.Category) != ck {
			continue
		}
		return a, true
	}
	return Asset{}, false
}

// NormKey normalizes a label for cross-snapshot identity matching:
// trimmed, lowercased, inner whitespace collapsed to single spaces.
func NormKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// jsnapshot is the persisted shape of a snapshot: raw fields only.
type jsnapshot struct {
	ID     int64           `json:"id"`
	Date   string          `json:"date"`
	Assets []Asset         `json:"assets"`
	Tag    string          `json:"tag"`
	Note   string          `json:"note"`
}

// MarshalJSON persists the raw fields only; derived metrics are never
// written.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsnapshot{
		ID:     s.ID,
		Date:   s.Date.UTC().Format(instantFormat),
		Assets: s.Assets,
		Tag:    s.Tag,
		Note:   s.Note,
	})
}

// UnmarshalJSON reads the persisted form. The date accepts both the full
// instant form and a bare day. Metrics are left zero; callers recompute
// them via ComputeMetrics after load or migration.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var js jsnapshot
	if err := json.Unmarshal(data, &js); err != nil {
		return err
	}
	on, err := parseInstant(js.Date)
	if err != nil {
		return err
	}
	*s = Snapshot{ID: js.ID, Date: on, Assets: js.Assets, Tag: js.Tag, Note: js.Note}
	return nil
}

// parseInstant parses an ISO-8601 instant, tolerating a missing time part.
func parseInstant(str string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, str); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid snapshot date %q", str)
}
