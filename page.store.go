package main

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// CollectionStore is the local copy of a resource collection. It is only
// replaced by a successful Load and otherwise patched after each mutation
// confirmed by the backend. It is safe for concurrent use.
type CollectionStore[T Record[T]] struct {
	mu      sync.RWMutex
	logger  *zap.Logger
	kind    string
	gateway Gateway[T]
	records []T
}

// NewCollectionStore provides an empty store of the kind.
func NewCollectionStore[T Record[T]](logger *zap.Logger, kind string, gateway Gateway[T]) *CollectionStore[T] {
	return &CollectionStore[T]{
		logger:  logger,
		kind:    kind,
		gateway: gateway,
		records: []T{},
	}
}

// Load replaces the records with the backend list. On failure the
// previous records are kept.
func (s *CollectionStore[T]) Load(ctx context.Context) error {
	recs, err := s.gateway.List(ctx)
	if err != nil {
		s.logger.Error("store: failed to load", zap.String("kind", s.kind), zap.Error(err))
		return err
	}
	if recs == nil {
		recs = []T{}
	}
	s.mu.Lock()
	s.records = recs
	s.mu.Unlock()
	return nil
}

// ApplyCreate appends a record confirmed by the backend.
func (s *CollectionStore[T]) ApplyCreate(rec T) {
	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()
}

// ApplyUpdate replaces the first record with the same id. It reports
// false and leaves the records untouched when no record matches.
func (s *CollectionStore[T]) ApplyUpdate(rec T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].RecordID() == rec.RecordID() {
			s.records[i] = rec
			return true
		}
	}
	s.logger.Warn("store: updated record is not in the collection", zap.String("kind", s.kind), zap.Int64("id", rec.RecordID()))
	return false
}

// ApplyRemove removes every record with the id and returns how many were removed.
func (s *CollectionStore[T]) ApplyRemove(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := make([]T, 0, len(s.records))
	for _, rec := range s.records {
		if rec.RecordID() != id {
			kept = append(kept, rec)
		}
	}
	removed := len(s.records) - len(kept)
	s.records = kept
	return removed
}

// Records returns a copy of the records in display order.
func (s *CollectionStore[T]) Records() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]T(nil), s.records...)
}

// Find returns the first record with the id.
func (s *CollectionStore[T]) Find(id int64) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records {
		if rec.RecordID() == id {
			return rec, true
		}
	}
	var zero T
	return zero, false
}

func (s *CollectionStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
