//go:build integration

package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// startPostgresContainer runs a postgres container and returns its connection url.
func startPostgresContainer(t *testing.T) (string, func()) {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("catalog"),
		postgres.WithUsername("library"),
		postgres.WithPassword("library"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	cleanup := func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}
	return connStr, cleanup
}

func TestPostgresStorage(t *testing.T) {
	url, cleanup := startPostgresContainer(t)
	defer cleanup()

	ctx := context.Background()
	pool, err := GetPostgresPool(ctx, &Config{Postgres: PostgresConfig{URL: url, MaxConns: 4}})
	require.NoError(t, err)
	defer pool.Close()

	ps := NewPostgresDocumentStorage(zap.NewNop(), pool)

	t.Run("sequence per kind", func(t *testing.T) {
		id, err := ps.NextID(ctx, BooksResource)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), id)
		id, err = ps.NextID(ctx, BooksResource)
		assert.NoError(t, err)
		assert.Equal(t, int64(2), id)
		id, err = ps.NextID(ctx, BorrowingsResource)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), id)
	})

	t.Run("put replaces the document", func(t *testing.T) {
		require.NoError(t, ps.Put(ctx, BooksResource, 1, []byte(`{"id":1,"stock":10}`)))
		require.NoError(t, ps.Put(ctx, BooksResource, 1, []byte(`{"id":1,"stock":9}`)))
		doc, err := ps.Get(ctx, BooksResource, 1)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"id":1,"stock":9}`, string(doc))
	})

	t.Run("get nonexistent", func(t *testing.T) {
		_, err := ps.Get(ctx, BooksResource, 50)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("list in id order", func(t *testing.T) {
		require.NoError(t, ps.Put(ctx, BooksResource, 12, []byte(`{"id":12}`)))
		require.NoError(t, ps.Put(ctx, BooksResource, 3, []byte(`{"id":3}`)))
		docs, err := ps.List(ctx, BooksResource)
		require.NoError(t, err)
		require.Len(t, docs, 3)
		assert.JSONEq(t, `{"id":1,"stock":9}`, string(docs[0]))
		assert.JSONEq(t, `{"id":3}`, string(docs[1]))
		assert.JSONEq(t, `{"id":12}`, string(docs[2]))
	})

	t.Run("delete", func(t *testing.T) {
		assert.NoError(t, ps.Delete(ctx, BooksResource, 12))
		assert.ErrorIs(t, ps.Delete(ctx, BooksResource, 12), ErrRecordNotFound)
	})

	t.Run("catalog services", func(t *testing.T) {
		catalog := NewCatalogServices(zap.NewNop(), ps, nil)
		author, err := catalog.Authors.Add(ctx, Author{Name: "Nazım Hikmet"})
		require.NoError(t, err)
		got, err := catalog.Authors.GetOne(ctx, author.ID)
		require.NoError(t, err)
		assert.Equal(t, author, got)
	})
}
