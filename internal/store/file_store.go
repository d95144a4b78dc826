package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"

	"banbds/internal/crypto"
	"banbds/internal/domain"
)

const (
	sessionFile       = "session.json"
	sealedSessionFile = "session.json.enc"
)

// FileStore keeps credentials as a single JSON object on disk. When a
// passphrase is set the object is sealed with scrypt and XChaCha20-Poly1305.
//
// Every write rewrites the whole file through a temp file and rename, so a
// crash or cancellation never leaves a half-written value behind.
type FileStore struct {
	dir        string
	passphrase string
	mu         sync.Mutex
}

// NewFileStore returns a plaintext FileStore rooted at dir.
func NewFileStore(dir string) *FileStore { return &FileStore{dir: dir} }

// NewSealedFileStore returns a FileStore whose file is encrypted with passphrase.
func NewSealedFileStore(dir, passphrase string) *FileStore {
	return &FileStore{dir: dir, passphrase: passphrase}
}

// Path returns the file backing the store.
func (s *FileStore) Path() string {
	if s.passphrase != "" {
		return filepath.Join(s.dir, sealedSessionFile)
	}
	return filepath.Join(s.dir, sessionFile)
}

// Get returns the value stored under key.
func (s *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := m[key]
	return v, ok, nil
}

// Set stores value under key.
func (s *FileStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return err
	}
	m[key] = value
	return s.save(m)
}

// Remove deletes key; removing a missing key is not an error.
func (s *FileStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := m[key]; !ok {
		return nil
	}
	delete(m, key)
	return s.save(m)
}

func (s *FileStore) load() (map[string]string, error) {
	m := make(map[string]string)
	b, err := readFile(s.Path())
	if err != nil || b == nil {
		return m, err
	}
	if s.passphrase != "" {
		if b, err = unseal(s.passphrase, b); err != nil {
			return nil, err
		}
		defer crypto.Wipe(b)
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *FileStore) save(m map[string]string) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if s.passphrase != "" {
		pt := b
		b, err = seal(s.passphrase, pt)
		crypto.Wipe(pt)
		if err != nil {
			return err
		}
	}
	return writeFile(s.Path(), b, 0o600)
}

// Compile-time assertion that FileStore implements domain.KeyValueStore.
var _ domain.KeyValueStore = (*FileStore)(nil)
