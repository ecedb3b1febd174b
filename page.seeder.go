package main

import (
	"context"

	"go.uber.org/zap"
)

// Seeder fills an empty collection with sample records.
type Seeder[T Record[T]] struct {
	logger  *zap.Logger
	store   *CollectionStore[T]
	gateway Gateway[T]
}

func NewSeeder[T Record[T]](logger *zap.Logger, store *CollectionStore[T], gateway Gateway[T]) *Seeder[T] {
	return &Seeder[T]{logger: logger, store: store, gateway: gateway}
}

// SeedIfEmpty creates the samples one after the other when the store is
// empty, then reloads the store. The first failed creation stops the
// sequence and is only logged. It returns the number of created records
// and the reload error if any.
func (s *Seeder[T]) SeedIfEmpty(ctx context.Context, samples []T) (int, error) {
	if s.store.Len() > 0 || len(samples) == 0 {
		return 0, nil
	}

	created := 0
	for i, sample := range samples {
		if _, err := s.gateway.Create(ctx, sample); err != nil {
			s.logger.Error("seeder: failed to create sample",
				zap.String("kind", s.store.kind),
				zap.Int("sample.index", i),
				zap.Int("created", created),
				zap.Error(err),
			)
			break
		}
		created++
	}

	return created, s.store.Load(ctx)
}
