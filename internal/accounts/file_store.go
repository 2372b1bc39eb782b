package accounts

import (
	"fmt"
	"os"
	"path/filepath"
)

// accountsFileName is the store file written under the config directory.
const accountsFileName = "accounts.json"

// FileStore is the default Persistence backend: a single JSON file written
// with owner-only permissions via an atomic temp-file + rename.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore for the accounts file inside dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, accountsFileName)}
}

// Path returns the store file path.
func (f *FileStore) Path() string {
	return f.path
}

// Load implements Persistence. A missing file is (nil, nil).
func (f *FileStore) Load() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// Save implements Persistence. The write goes to a temp file in the same
// directory and is renamed over the target, so a crash mid-write never
// leaves a torn store file.
func (f *FileStore) Save(data []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, accountsFileName+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
