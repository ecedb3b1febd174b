package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Supported storage drivers.
const (
	RedisDriver    = "redis"
	BoltDriver     = "bolt"
	PostgresDriver = "postgres"
)

var ErrRecordNotFound = errors.New("record not found")

// DocumentStorage persists JSON documents grouped by kind. Each kind owns
// a monotonic id sequence starting at 1. List returns documents sorted by
// ascending id which is their insertion order.
type DocumentStorage interface {
	NextID(ctx context.Context, kind string) (int64, error)
	Put(ctx context.Context, kind string, id int64, doc []byte) error
	Get(ctx context.Context, kind string, id int64) ([]byte, error)
	Delete(ctx context.Context, kind string, id int64) error
	List(ctx context.Context, kind string) ([][]byte, error)
}

// RecordStorage defines possible operations on a catalog entity.
type RecordStorage[T any] interface {
	Add(ctx context.Context, rec T) (T, error)
	GetOne(ctx context.Context, id int64) (T, error)
	Delete(ctx context.Context, id int64) error
	Update(ctx context.Context, id int64, rec T) (T, error)
	GetAll(ctx context.Context) ([]T, error)
}

var _ RecordStorage[Author] = (*Repository[Author])(nil) // ensure Repository implements RecordStorage.

// Repository is a typed view of one kind of a document storage.
type Repository[T Record[T]] struct {
	kind    string
	storage DocumentStorage
}

// NewRepository provides a repository of records of the given kind.
func NewRepository[T Record[T]](kind string, storage DocumentStorage) *Repository[T] {
	return &Repository[T]{kind: kind, storage: storage}
}

// Add assigns the next id of the kind to the record then inserts it.
func (r *Repository[T]) Add(ctx context.Context, rec T) (T, error) {
	id, err := r.storage.NextID(ctx, r.kind)
	if err != nil {
		return rec, fmt.Errorf("%s: next id: %w", r.kind, err)
	}
	rec = rec.WithRecordID(id)
	doc, err := json.Marshal(rec)
	if err != nil {
		return rec, err
	}
	return rec, r.storage.Put(ctx, r.kind, id, doc)
}

// GetOne retrieves a record based on its ID.
func (r *Repository[T]) GetOne(ctx context.Context, id int64) (T, error) {
	var rec T
	doc, err := r.storage.Get(ctx, r.kind, id)
	if err != nil {
		return rec, err
	}
	err = json.Unmarshal(doc, &rec)
	return rec, err
}

// Delete removes a record based on its ID.
func (r *Repository[T]) Delete(ctx context.Context, id int64) error {
	return r.storage.Delete(ctx, r.kind, id)
}

// Update replaces an existing record. It fails with ErrRecordNotFound
// when no record has this id.
func (r *Repository[T]) Update(ctx context.Context, id int64, rec T) (T, error) {
	if _, err := r.storage.Get(ctx, r.kind, id); err != nil {
		return rec, err
	}
	rec = rec.WithRecordID(id)
	doc, err := json.Marshal(rec)
	if err != nil {
		return rec, err
	}
	return rec, r.storage.Put(ctx, r.kind, id, doc)
}

// GetAll retrieves all records of the kind in insertion order.
func (r *Repository[T]) GetAll(ctx context.Context) ([]T, error) {
	docs, err := r.storage.List(ctx, r.kind)
	if err != nil {
		return nil, err
	}
	recs := make([]T, 0, len(docs))
	for _, doc := range docs {
		var rec T
		if err = json.Unmarshal(doc, &rec); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
