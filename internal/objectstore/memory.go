package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps objects in memory, listing them in insertion order.
type MemoryStore struct {
	mu       sync.Mutex
	keys     []string
	objects  map[string][]byte
	modified map[string]time.Time
	failures map[string]error
	fetches  []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects:  make(map[string][]byte),
		modified: make(map[string]time.Time),
		failures: make(map[string]error),
	}
}

// Put stores data under key. Overwriting keeps the original listing position.
func (m *MemoryStore) Put(key string, data []byte) *MemoryStore {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, found := m.objects[key]; !found {
		m.keys = append(m.keys, key)
	}
	m.objects[key] = data
	m.modified[key] = time.Now()
	return m
}

// FailOn makes every Get of key fail with err.
func (m *MemoryStore) FailOn(key string, err error) *MemoryStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[key] = err
	return m
}

// Fetches returns the keys passed to Get, in call order.
func (m *MemoryStore) Fetches() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.fetches...)
}

func (m *MemoryStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	objects := []ObjectInfo{}
	for _, key := range m.keys {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		objects = append(objects, ObjectInfo{
			Key:          key,
			Size:         int64(len(m.objects[key])),
			LastModified: m.modified[key],
		})
	}
	return objects, nil
}

func (m *MemoryStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.fetches = append(m.fetches, key)

	if err, found := m.failures[key]; found {
		return nil, err
	}

	data, found := m.objects[key]
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
