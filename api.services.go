package main

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

type RecordServiceProvider[T any] interface {
	Add(ctx context.Context, rec T) (T, error)
	GetOne(ctx context.Context, id int64) (T, error)
	Delete(ctx context.Context, id int64) error
	Update(ctx context.Context, id int64, rec T) (T, error)
	GetAll(ctx context.Context) ([]T, error)
}

// RecordHooks customize a RecordService for one kind. Every hook is optional.
type RecordHooks[T any] struct {
	// Validate checks and normalizes a record before any write.
	Validate func(ctx context.Context, rec T) (T, error)
	// PrepareAdd runs after Validate on creation only.
	PrepareAdd func(ctx context.Context, rec T) (T, error)
	// Merge builds the record to store from the stored one and the update.
	Merge func(existing, update T) T
	// AbortAdd undoes the effects of PrepareAdd when the record could not be stored.
	AbortAdd func(ctx context.Context, rec T)
}

type RecordService[T Record[T]] struct {
	logger  *zap.Logger
	kind    string
	storage RecordStorage[T]
	queue   Queuer
	hooks   RecordHooks[T]
}

// NewRecordService provides a service for one kind. The queue is optional and
// receives every change once it is stored.
func NewRecordService[T Record[T]](logger *zap.Logger, kind string, storage RecordStorage[T], queue Queuer, hooks RecordHooks[T]) *RecordService[T] {
	return &RecordService[T]{
		logger:  logger,
		kind:    kind,
		storage: storage,
		queue:   queue,
		hooks:   hooks,
	}
}

func (rs *RecordService[T]) Add(ctx context.Context, rec T) (T, error) {
	var err error
	if rs.hooks.Validate != nil {
		if rec, err = rs.hooks.Validate(ctx, rec); err != nil {
			return rec, err
		}
	}
	if rs.hooks.PrepareAdd != nil {
		if rec, err = rs.hooks.PrepareAdd(ctx, rec); err != nil {
			return rec, err
		}
	}
	stored, err := rs.storage.Add(ctx, rec)
	if err != nil {
		if rs.hooks.AbortAdd != nil {
			rs.hooks.AbortAdd(ctx, rec)
		}
		return stored, err
	}
	rec = stored
	rs.publish(ctx, CreateQueue, rec.RecordID(), rec)
	return rec, nil
}

func (rs *RecordService[T]) GetOne(ctx context.Context, id int64) (T, error) {
	return rs.storage.GetOne(ctx, id)
}

func (rs *RecordService[T]) Delete(ctx context.Context, id int64) error {
	if err := rs.storage.Delete(ctx, id); err != nil {
		return err
	}
	rs.publish(ctx, DeleteQueue, id, nil)
	return nil
}

func (rs *RecordService[T]) Update(ctx context.Context, id int64, rec T) (T, error) {
	existing, err := rs.storage.GetOne(ctx, id)
	if err != nil {
		return rec, err
	}
	if rs.hooks.Merge != nil {
		rec = rs.hooks.Merge(existing, rec)
	}
	rec = rec.WithRecordID(id)
	if rs.hooks.Validate != nil {
		if rec, err = rs.hooks.Validate(ctx, rec); err != nil {
			return rec, err
		}
	}
	if rec, err = rs.storage.Update(ctx, id, rec); err != nil {
		return rec, err
	}
	rs.publish(ctx, UpdateQueue, id, rec)
	return rec, nil
}

// Replace stores the record as it is, without running the hooks. It serves
// internal writes such as stock changes which must not depend on the
// record references still being valid.
func (rs *RecordService[T]) Replace(ctx context.Context, id int64, rec T) (T, error) {
	rec, err := rs.storage.Update(ctx, id, rec.WithRecordID(id))
	if err != nil {
		return rec, err
	}
	rs.publish(ctx, UpdateQueue, id, rec)
	return rec, nil
}

func (rs *RecordService[T]) GetAll(ctx context.Context) ([]T, error) {
	return rs.storage.GetAll(ctx)
}

// publish pushes the change to the queue. Failures are only logged since
// the primary storage already holds the change.
func (rs *RecordService[T]) publish(ctx context.Context, qid string, id int64, rec any) {
	if rs.queue == nil {
		return
	}
	change := Change{Kind: rs.kind, ID: id}
	if rec != nil {
		doc, err := json.Marshal(rec)
		if err != nil {
			rs.logger.Error("service: failed to encode change", zap.String("kind", rs.kind), zap.Int64("id", id), zap.Error(err))
			return
		}
		change.Doc = doc
	}
	if err := rs.queue.Push(ctx, qid, change); err != nil {
		rs.logger.Error("service: failed to push change to queue", zap.String("qid", qid), zap.String("kind", rs.kind), zap.Int64("id", id), zap.Error(err))
	}
}
