package patrimonio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// The tracker persists four independent logical keys. Each key holds one
// JSON value, overwritten wholesale on every save (no partial updates),
// which is also the unit the sync collaborator exchanges.
const (
	KeySnapshots        = "snapshots"
	KeyTargets          = "targets"
	KeyTargetsMeta      = "targets_meta"
	KeySelectedCategory = "selected_category"
)

// Storage is the local persistence backend for the logical keys.
type Storage interface {
	// Read returns the stored value and whether the key was set.
	Read(key string) (data []byte, ok bool, err error)
	// Write stores the value, replacing any previous one.
	Write(key string, data []byte) error
	// Delete discards the key. Deleting an absent key is not an error.
	Delete(key string) error
}

// DirStorage stores each logical key as a JSON file in a state directory,
// so the data stays human-readable and easy to back up or diff.
type DirStorage struct {
	Dir string
}

// NewDirStorage creates the state directory if needed.
func NewDirStorage(dir string) (*DirStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create state directory %q: %w", dir, err)
	}
	return &DirStorage{Dir: dir}, nil
}

func (d *DirStorage) path(key string) string {
	return filepath.Join(d.Dir, key+".json")
}

func (d *DirStorage) Read(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(d.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cannot read %q: %w", d.path(key), err)
	}
	return data, true, nil
}

func (d *DirStorage) Write(key string, data []byte) error {
	if err := os.WriteFile(d.path(key), data, 0o644); err != nil {
		return fmt.Errorf("cannot write %q: %w", d.path(key), err)
	}
	return nil
}

func (d *DirStorage) Delete(key string) error {
	err := os.Remove(d.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// MemStorage is an in-memory Storage, for tests.
type MemStorage map[string][]byte

func (m MemStorage) Read(key string) ([]byte, bool, error) {
	data, ok := m[key]
	return data, ok, nil
}

func (m MemStorage) Write(key string, data []byte) error {
	m[key] = append([]byte(nil), data...)
	return nil
}

func (m MemStorage) Delete(key string) error {
	delete(m, key)
	return nil
}
