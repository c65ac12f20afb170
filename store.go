package patrimonio

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Validation failures reported by Store mutations. The operation aborts
// and the stored state is left untouched.
var (
	ErrEmptyInput = errors.New("no portfolio data to parse")
	ErrNoDate     = errors.New("a snapshot date is required")
	ErrNoAssets   = errors.New("could not parse any asset row, check the format")
	ErrNotArray   = errors.New("import payload must be a JSON array of snapshots")
)

// CorruptError reports that the persisted snapshot collection could not
// be parsed. The store has already discarded the corrupt value and reset
// itself to empty; the error exists so the caller can notify the user.
type CorruptError struct {
	Err error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("stored snapshots are corrupt, history was reset: %v", e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// Store owns the chronological snapshot collection. The list is always
// kept sorted ascending by date, so the latest snapshot is the last
// element. Every successful mutation persists the raw fields and then
// invokes the mutation hook (typically an asynchronous sync push); the
// hook can never fail a mutation that already happened.
type Store struct {
	storage   Storage
	snapshots []Snapshot
	onPersist func()
}

// NewStore creates a store over the given backend. Call Load before use.
func NewStore(storage Storage) *Store {
	return &Store{storage: storage}
}

// OnPersist installs a hook run after every successful persist, e.g. a
// fire-and-forget push to the sync collaborator.
func (s *Store) OnPersist(f func()) { s.onPersist = f }

// Snapshots returns the chronological snapshot list. Callers must not
// mutate it.
func (s *Store) Snapshots() []Snapshot { return s.snapshots }

// Len returns the number of snapshots.
func (s *Store) Len() int { return len(s.snapshots) }

// Latest returns the most recent snapshot.
func (s *Store) Latest() (Snapshot, bool) {
	if len(s.snapshots) == 0 {
		return Snapshot{}, false
	}
	return s.snapshots[len(s.snapshots)-1], true
}

// Find returns the snapshot with the given id.
func (s *Store) Find(id int64) (Snapshot, bool) {
	for _, snap := range s.snapshots {
		if snap.ID == id {
			return snap, true
		}
	}
	return Snapshot{}, false
}

// Load reads the persisted collection and recomputes all derived metrics.
//
// A parse failure discards the persisted value and resets the store to
// empty, returning a *CorruptError so the user can be notified; the store
// remains usable. On success the (possibly migrated) collection is
// immediately re-persisted in the compact raw-fields form.
func (s *Store) Load() error {
	data, ok, err := s.storage.Read(KeySnapshots)
	if err != nil {
		return err
	}
	if !ok {
		s.snapshots = nil
		return nil
	}

	var loaded []Snapshot
	if err := json.Unmarshal(data, &loaded); err != nil {
		s.snapshots = nil
		s.storage.Delete(KeySnapshots)
		return &CorruptError{Err: err}
	}

	for i := range loaded {
		loaded[i].Metrics = ComputeMetrics(loaded[i])
	}
	s.snapshots = loaded

	// Re-persist right away: strips any legacy representation and any
	// aggregate fields an old version may have written.
	return s.persist()
}

// Capture parses the pasted tabular text and appends a new snapshot.
func (s *Store) Capture(raw string, on time.Time, tag, note string) (Snapshot, error) {
	snap, err := s.buildSnapshot(time.Now().UnixMilli(), raw, on, tag, note)
	if err != nil {
		return Snapshot{}, err
	}
	s.snapshots = append(s.snapshots, snap)
	s.sort()
	return snap, s.persist()
}

// Edit replaces the snapshot with the given id in place, keeping its id.
// Editing an unknown id is a silent no-op.
func (s *Store) Edit(id int64, raw string, on time.Time, tag, note string) error {
	snap, err := s.buildSnapshot(id, raw, on, tag, note)
	if err != nil {
		return err
	}
	for i := range s.snapshots {
		if s.snapshots[i].ID == id {
			s.snapshots[i] = snap
			s.sort()
			return s.persist()
		}
	}
	return nil
}

// Replace swaps the snapshot with the given id for the provided one,
// recomputing its metrics. Used by the holdings editor, which builds the
// asset list directly instead of parsing text.
func (s *Store) Replace(id int64, snap Snapshot) error {
	snap.Metrics = ComputeMetrics(snap)
	for i := range s.snapshots {
		if s.snapshots[i].ID == id {
			s.snapshots[i] = snap
			s.sort()
			return s.persist()
		}
	}
	return nil
}

// Append inserts a fully-built snapshot, recomputing its metrics.
func (s *Store) Append(snap Snapshot) error {
	snap.Metrics = ComputeMetrics(snap)
	s.snapshots = append(s.snapshots, snap)
	s.sort()
	return s.persist()
}

// Delete removes the snapshot with the given id. Idempotent.
func (s *Store) Delete(id int64) error {
	kept := s.snapshots[:0]
	for _, snap := range s.snapshots {
		if snap.ID != id {
			kept = append(kept, snap)
		}
	}
	s.snapshots = kept
	return s.persist()
}

// Import replaces the whole collection with the parsed payload, migrating
// legacy keyed-object assets as needed. A payload that is not a JSON
// array aborts with ErrNotArray and leaves the store untouched.
func (s *Store) Import(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if !strings.HasPrefix(trimmed, "[") {
		return ErrNotArray
	}
	var imported []Snapshot
	if err := json.Unmarshal(data, &imported); err != nil {
		return fmt.Errorf("cannot parse import payload: %w", err)
	}
	now := time.Now().UnixMilli()
	for i := range imported {
		if imported[i].ID == 0 {
			imported[i].ID = now + int64(i)
		}
		imported[i].Metrics = ComputeMetrics(imported[i])
	}
	s.snapshots = imported
	s.sort()
	return s.persist()
}

// ExportJSON emits the whole collection in the import/export format: a
// JSON array of the raw persisted fields only.
func (s *Store) ExportJSON() ([]byte, error) {
	if s.snapshots == nil {
		return []byte("[]"), nil
	}
	return json.MarshalIndent(s.snapshots, "", "  ")
}

// ExportTabular emits a single snapshot's assets in the tabular text
// format, suitable for the clipboard and for re-capture.
func (s *Store) ExportTabular(id int64) (string, error) {
	snap, ok := s.Find(id)
	if !ok {
		return "", fmt.Errorf("snapshot %d not found", id)
	}
	return FormatAssets(snap.Assets), nil
}

func (s *Store) buildSnapshot(id int64, raw string, on time.Time, tag, note string) (Snapshot, error) {
	if strings.TrimSpace(raw) == "" {
		return Snapshot{}, ErrEmptyInput
	}
	if on.IsZero() {
		return Snapshot{}, ErrNoDate
	}
	assets := ParseAssets(raw)
	if len(assets) == 0 {
		return Snapshot{}, ErrNoAssets
	}
	snap := Snapshot{
		ID:     id,
		Date:   on.UTC(),
		Assets: assets,
		Tag:    strings.TrimSpace(tag),
		Note:   strings.TrimSpace(note),
	}
	snap.Metrics = ComputeMetrics(snap)
	return snap, nil
}

func (s *Store) sort() {
	sort.SliceStable(s.snapshots, func(i, j int) bool {
		return s.snapshots[i].Date.Before(s.snapshots[j].Date)
	})
}

// persist writes the raw-fields form and then runs the mutation hook.
func (s *Store) persist() error {
	data, err := json.Marshal(s.snapshots)
	if err != nil {
		return fmt.Errorf("cannot encode snapshots: %w", err)
	}
	if s.snapshots == nil {
		data = []byte("[]")
	}
	if err := s.storage.Write(KeySnapshots, data); err != nil {
		return err
	}
	if s.onPersist != nil {
		s.onPersist()
	}
	return nil
}
