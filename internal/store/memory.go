package store

import (
	"context"
	"sync"
)

type memoryKey struct {
	userID int64
	key    string
}

// MemoryArea is a process-local Area.
type MemoryArea struct {
	mu     sync.RWMutex
	values map[memoryKey]string
}

func NewMemoryArea() *MemoryArea {
	return &MemoryArea{values: make(map[memoryKey]string)}
}

func (a *MemoryArea) Get(_ context.Context, userID int64, key string) (string, bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	value, ok := a.values[memoryKey{userID: userID, key: key}]

	return value, ok, nil
}

func (a *MemoryArea) Set(_ context.Context, userID int64, key string, value string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.values[memoryKey{userID: userID, key: key}] = value

	return nil
}

func (a *MemoryArea) Remove(_ context.Context, userID int64, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.values, memoryKey{userID: userID, key: key})

	return nil
}
