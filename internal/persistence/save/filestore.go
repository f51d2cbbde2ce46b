package save

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoSave reports that a slot has no persisted record.
var ErrNoSave = errors.New("no saved state")

// Store is a slot-addressed byte store. Backends: FileStore here, the
// SQLite store in internal/persistence/savedb.
type Store interface {
	Save(slot string, payload []byte) error
	Load(slot string) ([]byte, error)
	Clear(slot string) error
	Close() error
}

// FileStore keeps one file per slot under a directory, written atomically
// via temp-file rename.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(slot string) string {
	return filepath.Join(f.dir, slot+".json")
}

func (f *FileStore) Save(slot string, payload []byte) error {
	tmp, err := os.CreateTemp(f.dir, slot+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), f.path(slot)); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return nil
}

func (f *FileStore) Load(slot string) ([]byte, error) {
	b, err := os.ReadFile(f.path(slot))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("slot %s: %w", slot, ErrNoSave)
		}
		return nil, err
	}
	return b, nil
}

func (f *FileStore) Clear(slot string) error {
	err := os.Remove(f.path(slot))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (f *FileStore) Close() error { return nil }
