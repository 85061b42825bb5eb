// Package cache persists opaque keyed blobs between runs (compiled shader
// programs, generated textures).
package cache

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// magic identifies a cache file; the last byte is the format version.
var magic = [4]byte{'R', 'V', 'C', 1}

// ErrCorrupt is returned when a cache file cannot be decoded.
var ErrCorrupt = errors.New("corrupt cache file")

const (
	maxKeyLen  = 1 << 16
	maxDataLen = 1 << 30
)

// Store is a thread-safe in-memory blob map backed by one file.
type Store struct {
	path    string
	entries map[string][]byte
	dirty   bool
	mu      sync.RWMutex

	hits   int
	misses int
}

// New creates an empty store saving to path.
func New(path string) *Store {
	return &Store{
		path:    path,
		entries: make(map[string][]byte),
	}
}

// Open loads the store at path. A missing file yields an empty store; a
// corrupt one yields an empty store and ErrCorrupt.
func Open(path string) (*Store, error) {
	s := New(path)
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("opening cache %s: %w", path, err)
	}
	defer f.Close()

	entries, err := decode(bufio.NewReader(f))
	if err != nil {
		return s, fmt.Errorf("reading cache %s: %w", path, err)
	}
	s.entries = entries
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns the blob stored under key.
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.entries[key]
	if ok {
		s.hits++
	} else {
		s.misses++
	}
	return data, ok
}

// Put stores data under key. Storing identical bytes does not mark the
// store dirty.
func (s *Store) Put(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[key]; ok && bytes.Equal(old, data) {
		return
	}
	s.entries[key] = data
	s.dirty = true
}

// Delete removes key.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; ok {
		delete(s.entries, key)
		s.dirty = true
	}
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Dirty reports whether the store changed since it was loaded or saved.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Stats returns lookup statistics.
func (s *Store) Stats() (hits, misses int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hits, s.misses
}

// Save writes the store if it changed. The file is replaced atomically.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty || s.path == "" {
		return nil
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating cache dir: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("creating cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := encode(w, s.entries); err != nil {
		tmp.Close()
		return fmt.Errorf("writing cache %s: %w", s.path, err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("writing cache %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing cache %s: %w", s.path, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing cache %s: %w", s.path, err)
	}

	s.dirty = false
	return nil
}

// encode writes magic, a record count and length-prefixed key/data pairs,
// little-endian, in key order.
func encode(w io.Writer, entries map[string][]byte) error {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(keys))); err != nil {
		return err
	}
	for _, k := range keys {
		data := entries[k]
		if err := binary.Write(w, binary.LittleEndian, uint32(len(k))); err != nil {
			return err
		}
		if _, err := io.WriteString(w, k); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(data))); err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
	}
	return nil
}

func decode(r io.Reader) (map[string][]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrCorrupt, err)
	}
	if header != magic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCorrupt, header[:])
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("%w: count: %v", ErrCorrupt, err)
	}

	entries := make(map[string][]byte, min(count, 1024))
	for i := uint32(0); i < count; i++ {
		var keyLen uint32
		if err := binary.Read(r, binary.LittleEndian, &keyLen); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrCorrupt, i, err)
		}
		if keyLen > maxKeyLen {
			return nil, fmt.Errorf("%w: record %d: key length %d", ErrCorrupt, i, keyLen)
		}
		key := make([]byte, keyLen)
		if _, err := io.ReadFull(r, key); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrCorrupt, i, err)
		}

		var dataLen uint32
		if err := binary.Read(r, binary.LittleEndian, &dataLen); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrCorrupt, i, err)
		}
		if dataLen > maxDataLen {
			return nil, fmt.Errorf("%w: record %d: data length %d", ErrCorrupt, i, dataLen)
		}
		data := make([]byte, dataLen)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrCorrupt, i, err)
		}
		entries[string(key)] = data
	}
	return entries, nil
}
