package patrimonio

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

// testAsset builds a minimal asset with the given values.
func testAsset(name, category string, invested, value float64) Asset {
	return Asset{Name: name, Term: "Largo", Category: category,
		PurchaseValue: invested, CurrentValue: value}
}

// testSnapshot builds a metrics-complete snapshot on the given day.
func testSnapshot(id int64, day string, assets ...Asset) Snapshot {
	on, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	s := Snapshot{ID: id, Date: on.UTC(), Assets: assets}
	s.Metrics = ComputeMetrics(s)
	return s
}

func TestCaptureComputesMetrics(t *testing.T) {
	store := NewStore(MemStorage{})
	raw := "MSCI World\tLargo\tIndexados\t95 €\t50\t110 €\t5.000 €\t6.500 €\n" +
		"BTC\tLargo\tCripto\t20.000 €\t0,25\t22.000 €\t5.000 €\t5.500 €"

	snap, err := store.Capture(raw, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), "monthly", "")
	if err != nil {
		t.Fatal(err)
	}
	m := snap.Metrics
	if m.TotalCurrentValue != 12000 || m.TotalPurchaseValue != 10000 || m.Variation != 2000 {
		t.Errorf("totals = %v/%v/%v, want 12000/10000/2000",
			m.TotalCurrentValue, m.TotalPurchaseValue, m.Variation)
	}
	if m.CategoryTotals["Cripto"] != 5500 || m.CategoryInvested["Indexados"] != 5000 {
		t.Errorf("category aggregates wrong: %+v", m)
	}
	if m.TermTotals["Largo"] != 12000 {
		t.Errorf("term totals wrong: %+v", m.TermTotals)
	}
}

func TestCaptureValidation(t *testing.T) {
	store := NewStore(MemStorage{})
	on := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	if _, err := store.Capture("  \n ", on, "", ""); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("blank input: got %v, want ErrEmptyInput", err)
	}
	if _, err := store.Capture("a\tb", time.Time{}, "", ""); !errors.Is(err, ErrNoDate) {
		t.Errorf("zero date: got %v, want ErrNoDate", err)
	}
	if _, err := store.Capture("too\tfew\tcolumns", on, "", ""); !errors.Is(err, ErrNoAssets) {
		t.Errorf("unparseable rows: got %v, want ErrNoAssets", err)
	}
	if store.Len() != 0 {
		t.Errorf("failed captures must not be stored, have %d", store.Len())
	}
}

func TestStoreKeepsChronologicalOrder(t *testing.T) {
	storage := MemStorage{}
	store := NewStore(storage)
	raw := "A\tLargo\tX\t1 €\t1\t1 €\t100 €\t110 €"

	days := []time.Time{
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, d := range days {
		if _, err := store.Capture(raw, d, "", ""); err != nil {
			t.Fatal(err)
		}
	}

	snaps := store.Snapshots()
	for i := 1; i < len(snaps); i++ {
		if snaps[i].Date.Before(snaps[i-1].Date) {
			t.Fatalf("snapshots out of order at %d: %v after %v", i, snaps[i].Date, snaps[i-1].Date)
		}
	}
	latest, _ := store.Latest()
	if !latest.Date.Equal(days[0]) {
		t.Errorf("latest = %v, want %v", latest.Date, days[0])
	}
}

func TestLoadRecomputesAndCompacts(t *testing.T) {
	storage := MemStorage{}
	// Legacy keyed-object assets plus a stale aggregate field.
	storage[KeySnapshots] = []byte(`[{"id":1,"date":"2026-01-05T10:00:00.000Z",
		"assets":[{"name":"BTC","term":"Largo","category":"Cripto",
		"purchaseValue":10000,"currentValue":30000}],
		"totalCurrentValue":999}]`)

	store := NewStore(storage)
	if err := store.Load(); err != nil {
		t.Fatal(err)
	}
	snap, ok := store.Latest()
	if !ok {
		t.Fatal("no snapshot loaded")
	}
	if snap.Metrics.TotalCurrentValue != 30000 {
		t.Errorf("metrics not recomputed: %+v", snap.Metrics)
	}

	// The migrated collection is re-persisted in the compact tuple form.
	var persisted []map[string]json.RawMessage
	if err := json.Unmarshal(storage[KeySnapshots], &persisted); err != nil {
		t.Fatal(err)
	}
	if _, stale := persisted[0]["totalCurrentValue"]; stale {
		t.Error("stale aggregate survived the rewrite")
	}
	if persisted[0]["assets"][1] != '[' {
		t.Errorf("assets not compacted to tuples: %s", persisted[0]["assets"])
	}

	// A second load is a no-op on the content.
	before := string(storage[KeySnapshots])
	if err := store.Load(); err != nil {
		t.Fatal(err)
	}
	if string(storage[KeySnapshots]) != before {
		t.Error("reload changed the persisted form")
	}
}

func TestLoadCorruptResetsHistory(t *testing.T) {
	storage := MemStorage{}
	storage[KeySnapshots] = []byte("{not json")

	store := NewStore(storage)
	err := store.Load()
	var corrupt *CorruptError
	if !errors.As(err, &corrupt) {
		t.Fatalf("got %v, want *CorruptError", err)
	}
	if store.Len() != 0 {
		t.Errorf("store not reset, has %d snapshots", store.Len())
	}
	// The corrupt value is gone and the store stays usable.
	if _, err := store.Capture("A\tLargo\tX\t1 €\t1\t1 €\t100 €\t110 €",
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), "", ""); err != nil {
		t.Fatalf("store unusable after reset: %v", err)
	}
}

func TestEditUnknownIDIsNoOp(t *testing.T) {
	storage := MemStorage{}
	store := NewStore(storage)
	raw := "A\tLargo\tX\t1 €\t1\t1 €\t100 €\t110 €"
	if _, err := store.Capture(raw, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), "", ""); err != nil {
		t.Fatal(err)
	}
	if err := store.Edit(42, raw, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), "", ""); err != nil {
		t.Fatal(err)
	}
	if store.Len() != 1 {
		t.Errorf("edit of unknown id changed the store: %d snapshots", store.Len())
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := NewStore(MemStorage{})
	snap, err := store.Capture("A\tLargo\tX\t1 €\t1\t1 €\t100 €\t110 €",
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), "", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(snap.ID); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(snap.ID); err != nil {
		t.Fatal(err)
	}
	if store.Len() != 0 {
		t.Errorf("want empty store, have %d", store.Len())
	}
}

func TestImport(t *testing.T) {
	store := NewStore(MemStorage{})

	if err := store.Import([]byte(`{"not":"an array"}`)); !errors.Is(err, ErrNotArray) {
		t.Errorf("got %v, want ErrNotArray", err)
	}

	payload := `[
		{"id":0,"date":"2026-01-05","assets":[["A","Largo","X",1,1,1,100,110]]},
		{"id":7,"date":"2026-02-05T10:00:00.000Z",
		 "assets":[{"name":"B","term":"Largo","category":"Y","purchaseValue":50,"currentValue":60}]}
	]`
	if err := store.Import([]byte(payload)); err != nil {
		t.Fatal(err)
	}
	if store.Len() != 2 {
		t.Fatalf("got %d snapshots, want 2", store.Len())
	}
	first := store.Snapshots()[0]
	if first.ID == 0 {
		t.Error("missing id was not assigned")
	}
	if first.Metrics.TotalCurrentValue != 110 {
		t.Errorf("metrics not computed on import: %+v", first.Metrics)
	}
	second := store.Snapshots()[1]
	if second.ID != 7 || second.Assets[0].Name != "B" {
		t.Errorf("legacy snapshot not migrated: %+v", second)
	}
}

func TestPersistHookRuns(t *testing.T) {
	store := NewStore(MemStorage{})
	calls := 0
	store.OnPersist(func() { calls++ })

	if _, err := store.Capture("A\tLargo\tX\t1 €\t1\t1 €\t100 €\t110 €",
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), "", ""); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("hook ran %d times, want 1", calls)
	}
}
