package patrimonio

import (
	"fmt"
	"strings"
	"time"
)

// HoldingsEditor edits the asset list of the latest snapshot. It is the
// one place where values are recomputed from price and quantity; captured
// snapshots always keep their pasted values verbatim.
//
// Applying the edits on the same calendar day as the base snapshot
// updates it in place; on a later day the base snapshot keeps its
// original assets and the edits become a brand-new snapshot, so the
// history records the state before and after.
type HoldingsEditor struct {
	store    *Store
	baseID   int64
	baseDate time.Time
	original []Asset
	edited   []Asset
}

// NewHoldingsEditor starts an editing session over the latest snapshot.
func NewHoldingsEditor(store *Store) (*HoldingsEditor, error) {
	latest, ok := store.Latest()
	if !ok {
		return nil, fmt.Errorf("no snapshots to edit")
	}
	e := &HoldingsEditor{
		store:    store,
		baseID:   latest.ID,
		baseDate: latest.Date,
		original: append([]Asset(nil), latest.Assets...),
		edited:   append([]Asset(nil), latest.Assets...),
	}
	return e, nil
}

// Assets returns the current edited asset list.
func (e *HoldingsEditor) Assets() []Asset { return e.edited }

// SetQuantity updates an asset's quantity and recomputes both values.
func (e *HoldingsEditor) SetQuantity(index int, quantity float64) error {
	return e.update(index, func(a *Asset) { a.Quantity = quantity })
}

// SetPurchasePrice updates an asset's unit purchase price and recomputes
// its purchase value.
func (e *HoldingsEditor) SetPurchasePrice(index int, price float64) error {
	return e.update(index, func(a *Asset) { a.PurchasePrice = price })
}

// SetCurrentPrice updates an asset's unit current price and recomputes
// its current value.
func (e *HoldingsEditor) SetCurrentPrice(index int, price float64) error {
	return e.update(index, func(a *Asset) { a.CurrentPrice = price })
}

func (e *HoldingsEditor) update(index int, mutate func(*Asset)) error {
	if index < 0 || index >= len(e.edited) {
		return fmt.Errorf("no asset at row %d", index)
	}
	a := &e.edited[index]
	mutate(a)
	a.PurchaseValue = a.PurchasePrice * a.Quantity
	a.CurrentValue = a.CurrentPrice * a.Quantity
	return nil
}

// SameDay reports whether the base snapshot was taken on the given
// calendar day (UTC), which decides between update-in-place and a new
// snapshot.
func (e *HoldingsEditor) SameDay(now time.Time) bool {
	by, bm, bd := e.baseDate.UTC().Date()
	ny, nm, nd := now.UTC().Date()
	return by == ny && bm == nm && bd == nd
}

// Apply persists the session. Same-day edits replace the base snapshot's
// assets; otherwise the base snapshot is restored to its original assets
// and the edited list is appended as a new snapshot dated now.
func (e *HoldingsEditor) Apply(now time.Time) (ChangeSummary, error) {
	base, ok := e.store.Find(e.baseID)
	if !ok {
		return ChangeSummary{}, fmt.Errorf("snapshot %d no longer exists", e.baseID)
	}
	summary := e.Summary(now)

	if summary.SameDay {
		base.Assets = append([]Asset(nil), e.edited...)
		return summary, e.store.Replace(base.ID, base)
	}

	base.Assets = append([]Asset(nil), e.original...)
	if err := e.store.Replace(base.ID, base); err != nil {
		return summary, err
	}
	next := Snapshot{
		ID:     now.UnixMilli(),
		Date:   now.UTC(),
		Assets: append([]Asset(nil), e.edited...),
	}
	return summary, e.store.Append(next)
}

// AssetChange names one edited asset and which of its fields changed.
type AssetChange struct {
	Name   string
	Fields []string // "quantity", "purchase price", "price"
}

// ChangeSummary describes what Apply will do (or did).
type ChangeSummary struct {
	SameDay        bool
	ValueBefore    float64
	ValueAfter     float64
	InvestedBefore float64
	InvestedAfter  float64
	Changed        []AssetChange
}

// Summary compares the edited list against the original, row by row.
func (e *HoldingsEditor) Summary(now time.Time) ChangeSummary {
	s := ChangeSummary{SameDay: e.SameDay(now)}
	for _, a := range e.original {
		s.ValueBefore += a.CurrentValue
		s.InvestedBefore += a.PurchaseValue
	}
	for _, a := range e.edited {
		s.ValueAfter += a.CurrentValue
		s.InvestedAfter += a.PurchaseValue
	}
	for i, a := range e.edited {
		if i >= len(e.original) {
			break
		}
		prev := e.original[i]
		var fields []string
		if a.Quantity != prev.Quantity {
			fields = append(fields, "quantity")
		}
		if a.PurchasePrice != prev.PurchasePrice {
			fields = append(fields, "purchase price")
		}
		if a.CurrentPrice != prev.CurrentPrice {
			fields = append(fields, "price")
		}
		if len(fields) > 0 {
			s.Changed = append(s.Changed, AssetChange{Name: a.Name, Fields: fields})
		}
	}
	return s
}

// String renders the summary as the confirmation text shown before
// applying.
func (s ChangeSummary) String() string {
	action := "new snapshot created"
	if s.SameDay {
		action = "snapshot updated"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", action)
	fmt.Fprintf(&b, "total value: %.2f -> %.2f (%+.2f)\n", s.ValueBefore, s.ValueAfter, s.ValueAfter-s.ValueBefore)
	fmt.Fprintf(&b, "invested: %.2f -> %.2f (%+.2f)\n", s.InvestedBefore, s.InvestedAfter, s.InvestedAfter-s.InvestedBefore)
	fmt.Fprintf(&b, "assets changed: %d", len(s.Changed))
	for _, c := range s.Changed {
		fmt.Fprintf(&b, "\n- %s: %s", c.Name, strings.Join(c.Fields, ", "))
	}
	return b.String()
}
