//go:build integration

package main

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startRedisDockerContainer(t *testing.T) (string, func()) {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("Failed to start Dockertest: %+v", err)
	}

	err = pool.Client.Ping()
	if err != nil {
		t.Fatalf("Could not connect to Docker: %+v", err)
	}

	resource, err := pool.Run("redis", "7.2-alpine", nil)
	if err != nil {
		t.Fatalf("Failed to start redis: %+v", err)
	}

	// build address the container is listening on
	addr := net.JoinHostPort("localhost", resource.GetPort("6379/tcp"))

	// ensure to wait for the container to be ready
	err = pool.Retry(func() error {
		client := redis.NewClient(&redis.Options{Addr: addr})
		defer client.Close()
		return client.Ping(context.Background()).Err()
	})
	if err != nil {
		t.Fatalf("Failed to ping Redis: %+v", err)
	}

	destroyFunc := func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Failed to purge resource: %+v", err)
		}
	}

	return addr, destroyFunc
}

func TestRedisStorage(t *testing.T) {
	addr, destroyFunc := startRedisDockerContainer(t)
	defer destroyFunc()

	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	client, err := GetRedisClient(&Config{Redis: RedisConfig{Host: host, Port: port}})
	require.NoError(t, err)
	defer client.Close()

	rs := NewRedisDocumentStorage(zap.NewNop(), client)
	ctx := context.Background()

	t.Run("sequence per kind", func(t *testing.T) {
		id, err := rs.NextID(ctx, AuthorsResource)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), id)
		id, err = rs.NextID(ctx, AuthorsResource)
		assert.NoError(t, err)
		assert.Equal(t, int64(2), id)
		id, err = rs.NextID(ctx, PublishersResource)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), id)
	})

	t.Run("put and get", func(t *testing.T) {
		require.NoError(t, rs.Put(ctx, AuthorsResource, 1, []byte(`{"id":1,"name":"Orhan Pamuk"}`)))
		doc, err := rs.Get(ctx, AuthorsResource, 1)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"id":1,"name":"Orhan Pamuk"}`, string(doc))
	})

	t.Run("get nonexistent", func(t *testing.T) {
		_, err := rs.Get(ctx, AuthorsResource, 99)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("list sorted by id", func(t *testing.T) {
		require.NoError(t, rs.Put(ctx, AuthorsResource, 10, []byte(`{"id":10}`)))
		require.NoError(t, rs.Put(ctx, AuthorsResource, 2, []byte(`{"id":2}`)))
		docs, err := rs.List(ctx, AuthorsResource)
		require.NoError(t, err)
		require.Len(t, docs, 3)
		assert.JSONEq(t, `{"id":1,"name":"Orhan Pamuk"}`, string(docs[0]))
		assert.JSONEq(t, `{"id":2}`, string(docs[1]))
		assert.JSONEq(t, `{"id":10}`, string(docs[2]))
	})

	t.Run("delete", func(t *testing.T) {
		assert.NoError(t, rs.Delete(ctx, AuthorsResource, 10))
		assert.ErrorIs(t, rs.Delete(ctx, AuthorsResource, 10), ErrRecordNotFound)
	})
}

// TestRedisQueueMirror ensures changes published by a service are replayed
// into the bolt mirror by the consumer.
func TestRedisQueueMirror(t *testing.T) {
	addr, destroyFunc := startRedisDockerContainer(t)
	defer destroyFunc()

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	logger := zap.NewNop()
	queue := NewRedisQueue(client)
	mirror := NewBoltDocumentStorage(logger, newTestBoltDB(t))
	catalog := NewCatalogServices(logger, NewRedisDocumentStorage(logger, client), queue)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewBoltDBConsumer(logger, queue, mirror).Consume(ctx, CreateQueue, UpdateQueue, DeleteQueue)
	}()

	author, err := catalog.Authors.Add(ctx, Author{Name: "Yaşar Kemal"})
	require.NoError(t, err)
	removed, err := catalog.Authors.Add(ctx, Author{Name: "Elif Şafak"})
	require.NoError(t, err)
	require.NoError(t, catalog.Authors.Delete(ctx, removed.ID))

	mirrored := NewRepository[Author](AuthorsResource, mirror)
	assert.Eventually(t, func() bool {
		all, err := mirrored.GetAll(ctx)
		return err == nil && len(all) == 1 && all[0] == author
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not stop")
	}
}
