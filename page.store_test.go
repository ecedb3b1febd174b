package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCollectionStore(t *testing.T) {
	ctx := context.Background()
	gateway := newMemoryGateway(Category{ID: 1, Name: "Kurgu"}, Category{ID: 2, Name: "Tarih"})
	store := NewCollectionStore[Category](zap.NewNop(), CategoriesResource, gateway)
	assert.Equal(t, 0, store.Len())

	require.NoError(t, store.Load(ctx))
	assert.Equal(t, 2, store.Len())

	store.ApplyCreate(Category{ID: 3, Name: "Bilim"})
	assert.Equal(t, []Category{{ID: 1, Name: "Kurgu"}, {ID: 2, Name: "Tarih"}, {ID: 3, Name: "Bilim"}}, store.Records())

	assert.True(t, store.ApplyUpdate(Category{ID: 2, Name: "Tarih", Description: "Tarihsel kitaplar"}))
	found, ok := store.Find(2)
	require.True(t, ok)
	assert.Equal(t, "Tarihsel kitaplar", found.Description)

	assert.False(t, store.ApplyUpdate(Category{ID: 9, Name: "Yok"}))
	assert.Equal(t, 3, store.Len())

	assert.Equal(t, 1, store.ApplyRemove(1))
	assert.Equal(t, 0, store.ApplyRemove(1))
	_, ok = store.Find(1)
	assert.False(t, ok)

	// records returned are a copy.
	recs := store.Records()
	recs[0].Name = "changed"
	assert.Equal(t, "Tarih", store.Records()[0].Name)
}

// TestCollectionStore_LoadFailure ensures a failed load keeps the records.
func TestCollectionStore_LoadFailure(t *testing.T) {
	gateway := newMemoryGateway(Author{ID: 1, Name: "Orhan Pamuk"})
	store := NewCollectionStore[Author](zap.NewNop(), AuthorsResource, gateway)
	require.NoError(t, store.Load(context.Background()))

	gateway.ListFunc = func(context.Context) ([]Author, error) {
		return nil, &TransportError{Op: "list", Err: errors.New("connection refused")}
	}
	assert.Error(t, store.Load(context.Background()))
	assert.Equal(t, []Author{{ID: 1, Name: "Orhan Pamuk"}}, store.Records())
}

func TestSeeder(t *testing.T) {
	ctx := context.Background()

	t.Run("seeds an empty collection", func(t *testing.T) {
		gateway := newMemoryGateway[Category]()
		store := NewCollectionStore[Category](zap.NewNop(), CategoriesResource, gateway)
		created, err := NewSeeder(zap.NewNop(), store, Gateway[Category](gateway)).SeedIfEmpty(ctx, sampleCategories)
		require.NoError(t, err)
		assert.Equal(t, len(sampleCategories), created)
		assert.Equal(t, len(sampleCategories), store.Len())
		assert.Equal(t, "Kurgu", store.Records()[0].Name)
		assert.Equal(t, int64(1), store.Records()[0].ID)
	})

	t.Run("skips a populated collection", func(t *testing.T) {
		gateway := newMemoryGateway(Category{ID: 1, Name: "Şiir"})
		store := NewCollectionStore[Category](zap.NewNop(), CategoriesResource, gateway)
		require.NoError(t, store.Load(ctx))
		created, err := NewSeeder(zap.NewNop(), store, Gateway[Category](gateway)).SeedIfEmpty(ctx, sampleCategories)
		require.NoError(t, err)
		assert.Zero(t, created)
		_, creates, _, _ := gateway.Calls()
		assert.Zero(t, creates)
	})

	t.Run("stops at the first failure", func(t *testing.T) {
		gateway := newMemoryGateway[Category]()
		create := gateway.CreateFunc
		calls := 0
		gateway.CreateFunc = func(ctx context.Context, draft Category) (Category, error) {
			calls++
			if calls == 3 {
				return draft, &ValidationError{Op: "create", Message: "rejected"}
			}
			return create(ctx, draft)
		}
		store := NewCollectionStore[Category](zap.NewNop(), CategoriesResource, gateway)
		created, err := NewSeeder(zap.NewNop(), store, Gateway[Category](gateway)).SeedIfEmpty(ctx, sampleCategories)
		require.NoError(t, err)
		assert.Equal(t, 2, created)
		assert.Equal(t, 3, calls)
		assert.Equal(t, 2, store.Len())
	})
}
