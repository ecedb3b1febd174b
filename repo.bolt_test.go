package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestBoltStorage_Sequence ensures ids start at 1 and are never reused.
func TestBoltStorage_Sequence(t *testing.T) {
	bs := NewBoltDocumentStorage(zap.NewNop(), newTestBoltDB(t))
	ctx := context.Background()

	id, err := bs.NextID(ctx, AuthorsResource)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	id, err = bs.NextID(ctx, AuthorsResource)
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)

	// each kind owns its sequence.
	id, err = bs.NextID(ctx, BooksResource)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	// a mirrored id moves the sequence forward.
	require.NoError(t, bs.Put(ctx, AuthorsResource, 10, []byte(`{"id":10}`)))
	id, err = bs.NextID(ctx, AuthorsResource)
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)

	_, err = bs.NextID(ctx, "unknown")
	assert.Error(t, err)
}

// TestBoltStorage_Documents ensures documents can be stored, listed in id order and removed.
func TestBoltStorage_Documents(t *testing.T) {
	bs := NewBoltDocumentStorage(zap.NewNop(), newTestBoltDB(t))
	ctx := context.Background()

	require.NoError(t, bs.Put(ctx, CategoriesResource, 300, []byte(`{"id":300}`)))
	require.NoError(t, bs.Put(ctx, CategoriesResource, 2, []byte(`{"id":2}`)))
	require.NoError(t, bs.Put(ctx, CategoriesResource, 1, []byte(`{"id":1}`)))

	t.Run("get existent document", func(t *testing.T) {
		doc, err := bs.Get(ctx, CategoriesResource, 2)
		assert.NoError(t, err)
		assert.Equal(t, `{"id":2}`, string(doc))
	})

	t.Run("get nonexistent document", func(t *testing.T) {
		_, err := bs.Get(ctx, CategoriesResource, 3)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("list in id order", func(t *testing.T) {
		docs, err := bs.List(ctx, CategoriesResource)
		require.NoError(t, err)
		require.Len(t, docs, 3)
		assert.Equal(t, `{"id":1}`, string(docs[0]))
		assert.Equal(t, `{"id":2}`, string(docs[1]))
		assert.Equal(t, `{"id":300}`, string(docs[2]))
	})

	t.Run("list empty kind", func(t *testing.T) {
		docs, err := bs.List(ctx, PublishersResource)
		assert.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("delete existent document", func(t *testing.T) {
		assert.NoError(t, bs.Delete(ctx, CategoriesResource, 2))
		_, err := bs.Get(ctx, CategoriesResource, 2)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("delete nonexistent document", func(t *testing.T) {
		assert.ErrorIs(t, bs.Delete(ctx, CategoriesResource, 2), ErrRecordNotFound)
	})
}

// TestRepository ensures typed records round trip through a document storage.
func TestRepository(t *testing.T) {
	repo := NewRepository[Book](BooksResource, NewBoltDocumentStorage(zap.NewNop(), newTestBoltDB(t)))
	ctx := context.Background()

	book := Book{
		Name:            "Kar",
		PublicationYear: 2002,
		Stock:           10,
		Author:          Ref{ID: 1, Name: "Orhan Pamuk"},
		Publisher:       Ref{ID: 1, Name: "Bilge Kültür Sanat"},
		Categories:      []Ref{{ID: 1, Name: "Kurgu"}},
	}

	created, err := repo.Add(ctx, book)
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	got, err := repo.GetOne(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	got.Stock = 9
	updated, err := repo.Update(ctx, created.ID, got)
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Stock)

	_, err = repo.Update(ctx, 42, got)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	second, err := repo.Add(ctx, Book{Name: "Masumiyet Müzesi"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.ID)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Kar", all[0].Name)
	assert.Equal(t, 9, all[0].Stock)
	assert.Equal(t, "Masumiyet Müzesi", all[1].Name)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.GetOne(ctx, created.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	// a deleted id is never reused.
	third, err := repo.Add(ctx, Book{Name: "Benim Adım Kırmızı"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), third.ID)
}
