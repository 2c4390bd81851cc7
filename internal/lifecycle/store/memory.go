package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/nymkash-gerel/temuulel-app-sub002/internal/lifecycle"
	"github.com/nymkash-gerel/temuulel-app-sub002/internal/workflow"
)

type key struct {
	entity  workflow.EntityType
	storeID uuid.UUID
	id      uuid.UUID
}

// Memory is an in-process lifecycle.Repository.
type Memory struct {
	mu       sync.Mutex
	statuses map[key]workflow.State
}

func NewMemory() *Memory {
	return &Memory{statuses: make(map[key]workflow.State)}
}

var _ lifecycle.Repository = (*Memory)(nil)

// Put stores an entity with the given status, replacing any previous one.
func (m *Memory) Put(entity workflow.EntityType, storeID, id uuid.UUID, status workflow.State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.statuses[key{entity, storeID, id}] = status
}

func (m *Memory) CurrentStatus(_ context.Context, entity workflow.EntityType, storeID, id uuid.UUID) (workflow.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.statuses[key{entity, storeID, id}]
	if !ok {
		return "", lifecycle.ErrNotFound
	}

	return s, nil
}

func (m *Memory) SetStatus(_ context.Context, entity workflow.EntityType, storeID, id uuid.UUID, from, to workflow.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key{entity, storeID, id}

	cur, ok := m.statuses[k]
	if !ok {
		return lifecycle.ErrNotFound
	}

	if cur != from {
		return lifecycle.ErrStatusConflict
	}

	m.statuses[k] = to

	return nil
}
