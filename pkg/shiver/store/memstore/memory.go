package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cognicore/shiver/pkg/shiver/internalerr"
	"github.com/cognicore/shiver/pkg/shiver/records"
	"github.com/cognicore/shiver/pkg/shiver/store"
)

var _ store.Store = (*Store)(nil)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu     sync.RWMutex
	nextID int64
	now    func() time.Time
	byKind map[records.Kind][]records.Record
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		nextID: 1,
		now:    time.Now,
		byKind: make(map[records.Kind][]records.Record),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// Add stores a copy of rec under the next identifier.
func (s *Store) Add(ctx context.Context, rec records.Record) (records.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if rec == nil || !rec.Kind().Valid() {
		return nil, fmt.Errorf("%w: record of unknown kind", internalerr.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := rec.Clone()
	records.Stamp(c, s.nextID, s.now())
	s.nextID++
	s.byKind[c.Kind()] = append(s.byKind[c.Kind()], c)
	return c.Clone(), nil
}

// Get returns one record by kind and identifier.
func (s *Store) Get(ctx context.Context, kind records.Kind, id int64) (records.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.byKind[kind] {
		if rec.Meta().ID == id {
			return rec.Clone(), nil
		}
	}
	return nil, fmt.Errorf("%w: %s %d", internalerr.ErrNotFound, kind, id)
}

// GetAll returns copies of a collection.
func (s *Store) GetAll(ctx context.Context, kind records.Kind) ([]records.Record, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: kind %q", internalerr.ErrInvalidInput, kind)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.byKind[kind]
	out := make([]records.Record, len(list))
	for i, rec := range list {
		out[i] = rec.Clone()
	}
	return out, nil
}

// Count reports the size of a collection.
func (s *Store) Count(ctx context.Context, kind records.Kind) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byKind[kind]), nil
}
