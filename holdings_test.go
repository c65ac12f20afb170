package patrimonio

import (
	"math"
	"testing"
	"time"
)

func newEditorStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(MemStorage{})
	snap := testSnapshot(100, "2026-03-10",
		Asset{Name: "BTC", Term: "Largo", Category: "Cripto",
			PurchasePrice: 20000, Quantity: 0.5, CurrentPrice: 60000,
			PurchaseValue: 10000, CurrentValue: 30000},
	)
	if err := store.Append(snap); err != nil {
		t.Fatal(err)
	}
	return store
}

func TestHoldingsEditorRecomputesValues(t *testing.T) {
	store := newEditorStore(t)
	editor, err := NewHoldingsEditor(store)
	if err != nil {
		t.Fatal(err)
	}
	if err := editor.SetQuantity(0, 0.6); err != nil {
		t.Fatal(err)
	}
	a := editor.Assets()[0]
	if math.Abs(a.PurchaseValue-12000) > 1e-9 || math.Abs(a.CurrentValue-36000) > 1e-9 {
		t.Errorf("values not recomputed: %+v", a)
	}

	if err := editor.SetCurrentPrice(0, 50000); err != nil {
		t.Fatal(err)
	}
	if math.Abs(editor.Assets()[0].CurrentValue-30000) > 1e-9 {
		t.Errorf("current value = %v, want 30000", editor.Assets()[0].CurrentValue)
	}

	if err := editor.SetQuantity(5, 1); err == nil {
		t.Error("out-of-range row must fail")
	}
}

func TestHoldingsApplySameDay(t *testing.T) {
	store := newEditorStore(t)
	editor, err := NewHoldingsEditor(store)
	if err != nil {
		t.Fatal(err)
	}
	editor.SetCurrentPrice(0, 64000)

	// Same calendar day as the base snapshot: replaced in place.
	now := time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC)
	summary, err := editor.Apply(now)
	if err != nil {
		t.Fatal(err)
	}
	if !summary.SameDay {
		t.Error("want a same-day summary")
	}
	if store.Len() != 1 {
		t.Fatalf("same-day apply must not add snapshots, have %d", store.Len())
	}
	latest, _ := store.Latest()
	if latest.ID != 100 || math.Abs(latest.Metrics.TotalCurrentValue-32000) > 1e-9 {
		t.Errorf("latest after apply: id=%d total=%v", latest.ID, latest.Metrics.TotalCurrentValue)
	}
}

func TestHoldingsApplyLaterDay(t *testing.T) {
	store := newEditorStore(t)
	editor, err := NewHoldingsEditor(store)
	if err != nil {
		t.Fatal(err)
	}
	editor.SetCurrentPrice(0, 64000)

	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	summary, err := editor.Apply(now)
	if err != nil {
		t.Fatal(err)
	}
	if summary.SameDay {
		t.Error("want a new-snapshot summary")
	}
	if store.Len() != 2 {
		t.Fatalf("later-day apply must append, have %d snapshots", store.Len())
	}
	// The base snapshot keeps its original assets.
	base, _ := store.Find(100)
	if base.Assets[0].CurrentPrice != 60000 {
		t.Errorf("base snapshot mutated: %+v", base.Assets[0])
	}
	latest, _ := store.Latest()
	if latest.ID == 100 || latest.Assets[0].CurrentPrice != 64000 {
		t.Errorf("new snapshot wrong: id=%d %+v", latest.ID, latest.Assets[0])
	}
}

func TestHoldingsChangeSummary(t *testing.T) {
	store := newEditorStore(t)
	editor, err := NewHoldingsEditor(store)
	if err != nil {
		t.Fatal(err)
	}
	editor.SetQuantity(0, 0.6)
	editor.SetCurrentPrice(0, 50000)

	s := editor.Summary(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	if len(s.Changed) != 1 {
		t.Fatalf("got %d changed assets, want 1", len(s.Changed))
	}
	c := s.Changed[0]
	if c.Name != "BTC" || len(c.Fields) != 2 {
		t.Errorf("change detail: %+v", c)
	}
	if s.ValueBefore != 30000 || math.Abs(s.ValueAfter-30000) > 1e-9 {
		t.Errorf("value totals: %v -> %v", s.ValueBefore, s.ValueAfter)
	}
}
