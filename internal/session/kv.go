package session

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/pebble"
)

// KV is the durable client storage holding the persisted session.
// SetMany and Delete apply all keys atomically.
type KV interface {
	Get(key string) ([]byte, bool, error)
	SetMany(kv map[string][]byte) error
	Delete(keys ...string) error
	Close() error
}

// MemoryKV is a thread-safe map store.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryKV) SetMany(kv map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range kv {
		m.data[k] = append([]byte(nil), v...)
	}
	return nil
}

func (m *MemoryKV) Delete(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *MemoryKV) Close() error { return nil }

// PebbleKV persists the session in a Pebble database so it survives restarts.
type PebbleKV struct {
	db *pebble.DB
}

func NewPebbleKV(dir string) (*PebbleKV, error) {
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &PebbleKV{db: db}, nil
}

func (p *PebbleKV) Get(key string) ([]byte, bool, error) {
	v, closer, err := p.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("pebble get %s: %w", key, err)
	}
	defer closer.Close()
	return append([]byte(nil), v...), true, nil
}

func (p *PebbleKV) SetMany(kv map[string][]byte) error {
	b := p.db.NewBatch()
	defer b.Close()
	for k, v := range kv {
		if err := b.Set([]byte(k), v, nil); err != nil {
			return fmt.Errorf("pebble batch set %s: %w", k, err)
		}
	}
	if err := b.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("pebble commit: %w", err)
	}
	return nil
}

func (p *PebbleKV) Delete(keys ...string) error {
	b := p.db.NewBatch()
	defer b.Close()
	for _, k := range keys {
		if err := b.Delete([]byte(k), nil); err != nil {
			return fmt.Errorf("pebble batch delete %s: %w", k, err)
		}
	}
	if err := b.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("pebble commit: %w", err)
	}
	return nil
}

func (p *PebbleKV) Close() error { return p.db.Close() }
