// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package selection

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Evn42/routine-builder/internal/catalog"
	"github.com/Evn42/routine-builder/internal/storage"
)

// StorageKey is the slot the selection snapshot lives under.
const StorageKey = "selectedProducts"

var (
	// ErrPersist wraps a failed snapshot write. The in-memory change it
	// accompanies has already been applied.
	ErrPersist = errors.New("selection: failed to persist")

	// ErrPersistenceCorrupt describes a stored value that is not a JSON
	// array of products.
	ErrPersistenceCorrupt = errors.New("selection: stored value is corrupt")
)

// =============================================================================
// RESTORE OUTCOME
// =============================================================================

// RestoreOutcome says what Initialize found in storage.
type RestoreOutcome int

const (
	// RestoreEmpty means nothing was stored.
	RestoreEmpty RestoreOutcome = iota
	// RestoreOK means a stored snapshot was restored.
	RestoreOK
	// RestoreCorrupt means the stored value could not be parsed; the set
	// starts empty.
	RestoreCorrupt
	// RestoreUnavailable means storage could not be read; the set starts
	// empty.
	RestoreUnavailable
)

func (o RestoreOutcome) String() string {
	switch o {
	case RestoreEmpty:
		return "empty"
	case RestoreOK:
		return "ok"
	case RestoreCorrupt:
		return "corrupt"
	case RestoreUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("RestoreOutcome(%d)", int(o))
	}
}

// =============================================================================
// STORE
// =============================================================================

// Store is the selection set. Products keep insertion order and are unique
// by name.
type Store struct {
	mu    sync.RWMutex
	kv    storage.KV
	items []catalog.Product
	index map[string]struct{}
	log   *zap.Logger
}

// New creates an empty store backed by kv. Call Initialize to restore the
// previous session.
func New(kv storage.KV, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		kv:    kv,
		index: make(map[string]struct{}),
		log:   log,
	}
}

// Initialize replaces the in-memory set with the stored snapshot. It never
// fails: unreadable or corrupt storage yields an empty set and a warning.
func (s *Store) Initialize() RestoreOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.index = make(map[string]struct{})

	raw, err := s.kv.Get(StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return RestoreEmpty
	}
	if err != nil {
		s.log.Warn("selection storage unavailable", zap.Error(err))
		return RestoreUnavailable
	}

	var stored []catalog.Product
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		s.log.Warn("selection snapshot ignored",
			zap.Error(fmt.Errorf("%w: %v", ErrPersistenceCorrupt, err)))
		return RestoreCorrupt
	}

	for _, p := range stored {
		if _, dup := s.index[p.Name]; dup {
			continue
		}
		s.index[p.Name] = struct{}{}
		s.items = append(s.items, p)
	}
	s.log.Debug("selection restored", zap.Int("count", len(s.items)))
	return RestoreOK
}

// Toggle removes the product with p's name if present, otherwise appends p.
// It reports whether p is selected afterwards.
func (s *Store) Toggle(p catalog.Product) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[p.Name]; ok {
		s.removeAt(s.position(p.Name))
		return false, s.persist()
	}
	s.index[p.Name] = struct{}{}
	s.items = append(s.items, p)
	return true, s.persist()
}

// Remove deletes the product at insertion position index. An out-of-range
// index changes nothing and does not touch storage.
func (s *Store) Remove(index int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.items) {
		return false, nil
	}
	s.removeAt(index)
	return true, s.persist()
}

// RemoveByName deletes the product called name, if selected.
func (s *Store) RemoveByName(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[name]; !ok {
		return false, nil
	}
	s.removeAt(s.position(name))
	return true, s.persist()
}

// Clear empties the set. Storage is written even if it was already empty.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.index = make(map[string]struct{})
	return s.persist()
}

// Contains reports whether a product called name is selected.
func (s *Store) Contains(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[name]
	return ok
}

// Snapshot returns a copy of the set in insertion order.
func (s *Store) Snapshot() []catalog.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catalog.Product, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of selected products.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// position must be called with the lock held and name present.
func (s *Store) position(name string) int {
	for i, p := range s.items {
		if p.Name == name {
			return i
		}
	}
	return -1
}

func (s *Store) removeAt(i int) {
	delete(s.index, s.items[i].Name)
	s.items = append(s.items[:i:i], s.items[i+1:]...)
}

// persist writes the full snapshot. Called with the lock held.
func (s *Store) persist() error {
	items := s.items
	if items == nil {
		items = []catalog.Product{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err := s.kv.Set(StorageKey, string(data)); err != nil {
		s.log.Warn("selection write failed", zap.Int("count", len(items)), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}
