package main

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

type Consumer interface {
	Consume(ctx context.Context, qids ...string) error
}

// boltDBConsumer replays catalog changes into a bolt mirror.
type boltDBConsumer struct {
	logger  *zap.Logger
	queue   Queuer
	storage DocumentStorage
}

func NewBoltDBConsumer(logger *zap.Logger, q Queuer, storage DocumentStorage) Consumer {
	return &boltDBConsumer{logger, q, storage}
}

func (bc *boltDBConsumer) Consume(ctx context.Context, qids ...string) error {
	for {
		qid, change, err := bc.queue.Pop(ctx, qids...)
		if err != nil && ctx.Err() != nil {
			bc.logger.Info("consumer: queue pop call: context is done: exit", zap.String("reason", ctx.Err().Error()))
			return nil
		}

		if err != nil {
			bc.logger.Error("consumer: error on queue pop call", zap.Error(err))
			continue
		}

		fields := []zap.Field{zap.String("kind", change.Kind), zap.Int64("id", change.ID)}
		switch qid {
		case CreateQueue, UpdateQueue:
			if err = bc.storage.Put(ctx, change.Kind, change.ID, change.Doc); err != nil {
				bc.logger.Error("consumer: failed to save", append(fields, zap.String("qid", qid), zap.Error(err))...)
			}
		case DeleteQueue:
			err = bc.storage.Delete(ctx, change.Kind, change.ID)
			if err != nil && !errors.Is(err, ErrRecordNotFound) {
				bc.logger.Error("consumer: failed to delete", append(fields, zap.Error(err))...)
			}
		default:
			bc.logger.Warn("consumer: received change on unknow queue id", append(fields, zap.String("qid", qid))...)
		}
	}
}
