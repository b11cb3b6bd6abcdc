package localstore

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/jrsteele09/go-chat-frontend/internal/errors"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

var _ Store = (*FileStore)(nil)

// FileStore keeps every key in one JSON document on disk. The whole document is rewritten on
// each mutation. With a key the document is sealed with nacl/secretbox.
type FileStore struct {
	mu     sync.RWMutex
	path   string
	key    *[32]byte
	values map[string]string
}

// FileStoreOption configures a FileStore
type FileStoreOption func(*FileStore)

// WithSealKey seals the file at rest with the given 32 byte key
func WithSealKey(key *[32]byte) FileStoreOption {
	return func(fs *FileStore) {
		fs.key = key
	}
}

// ParseKey decodes a 64 character hex string into a secretbox key
func ParseKey(hexKey string) (*[32]byte, error) {
	b, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("[localstore ParseKey] key hex decode: %w", err)
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("[localstore ParseKey] key must be 32 bytes (hex 64 chars), got %d", len(b))
	}
	var key [32]byte
	copy(key[:], b)
	return &key, nil
}

// OpenFileStore loads the store at path, starting empty when the file doesn't exist yet
func OpenFileStore(path string, options ...FileStoreOption) (*FileStore, error) {
	fs := &FileStore{
		path:   path,
		values: make(map[string]string),
	}
	for _, opt := range options {
		opt(fs)
	}

	blob, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fs, nil
		}
		return nil, fmt.Errorf("[OpenFileStore] read %s: %w", path, err)
	}
	if len(blob) == 0 {
		return fs, nil
	}

	plain, err := fs.open(blob)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(plain, &fs.values); err != nil {
		return nil, fmt.Errorf("[OpenFileStore] decode %s: %w", path, err)
	}
	return fs, nil
}

func (f *FileStore) Get(key string) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	v, ok := f.values[key]
	if !ok {
		return "", errors.ErrNotFound
	}
	return v, nil
}

func (f *FileStore) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.values[key] = value
	return f.flush()
}

func (f *FileStore) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.values[key]; !ok {
		return nil
	}
	delete(f.values, key)
	return f.flush()
}

func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.values = make(map[string]string)
	return f.flush()
}

func (f *FileStore) Keys() ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	keys := make([]string, 0, len(f.values))
	for k := range f.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// flush writes the document through a temp file and rename. Caller holds the write lock.
func (f *FileStore) flush() error {
	plain, err := json.Marshal(f.values)
	if err != nil {
		return fmt.Errorf("[FileStore flush] encode: %w", err)
	}
	blob, err := f.seal(plain)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("[FileStore flush] create directory: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0600); err != nil {
		return fmt.Errorf("[FileStore flush] write: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("[FileStore flush] rename: %w", err)
	}
	return nil
}

func (f *FileStore) seal(plain []byte) ([]byte, error) {
	if f.key == nil {
		return plain, nil
	}
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("[FileStore seal] nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plain, &nonce, f.key), nil
}

func (f *FileStore) open(blob []byte) ([]byte, error) {
	if f.key == nil {
		return blob, nil
	}
	if len(blob) < nonceSize+secretbox.Overhead {
		return nil, errors.Wrapf(errors.ErrSealedStore, "[FileStore open] %s is too short", f.path)
	}
	var nonce [nonceSize]byte
	copy(nonce[:], blob[:nonceSize])
	plain, ok := secretbox.Open(nil, blob[nonceSize:], &nonce, f.key)
	if !ok {
		return nil, errors.Wrapf(errors.ErrSealedStore, "[FileStore open] %s", f.path)
	}
	return plain, nil
}
