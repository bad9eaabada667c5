package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"armorcrypt/internal/domain"
)

// FileStore keeps one encrypted file per stored pickle under a home
// directory.
type FileStore struct {
	home string
}

// NewFileStore returns a store rooted at home. The directory is created on
// first save.
func NewFileStore(home string) *FileStore {
	return &FileStore{home: home}
}

// Save seals pickle under passphrase and writes it to <home>/<name>.blob.
func (s *FileStore) Save(name, passphrase string, pickle []byte) error {
	enc, err := encrypt(passphrase, pickle)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.home, 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path(name), enc, 0o600)
}

// Load reads and opens <home>/<name>.blob. ok is false when no such file
// exists.
func (s *FileStore) Load(name, passphrase string) ([]byte, bool, error) {
	raw, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	pt, err := decrypt(passphrase, raw)
	if err != nil {
		return nil, false, fmt.Errorf("load %q: %w", name, err)
	}
	return pt, true, nil
}

func (s *FileStore) path(name string) string {
	// Stored names are fixed identifiers, but never trust them as paths.
	name = strings.ReplaceAll(name, string(os.PathSeparator), "_")
	return filepath.Join(s.home, name+".blob")
}

// Compile-time assertion that FileStore implements domain.PickleStore.
var _ domain.PickleStore = (*FileStore)(nil)
