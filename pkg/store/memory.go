package store

import (
	"context"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore is a process-local store. It does not survive restarts and is meant
// for tests and the `memory` driver.
type MemoryStore struct {
	c *gocache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{c: gocache.New(gocache.NoExpiration, 0)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	val, found := m.c.Get(key)
	if !found {
		return "", ErrNotFound
	}
	s, _ := val.(string)
	return s, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.c.Set(key, value, gocache.NoExpiration)
	return nil
}

func (m *MemoryStore) Close() error {
	m.c.Flush()
	return nil
}
