package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// HKeyPrefix prefixes every catalog hash key. A kind is stored under
// "catalog:<kind>" and its id sequence under "catalog:<kind>:seq".
const HKeyPrefix string = "catalog"

type redisDocumentStorage struct {
	logger *zap.Logger
	client *redis.Client
}

// NewRedisDocumentStorage provides an instance of redis-based document storage.
func NewRedisDocumentStorage(logger *zap.Logger, client *redis.Client) DocumentStorage {
	return &redisDocumentStorage{
		logger: logger,
		client: client,
	}
}

// GetRedisClient provides a ready to use redis client.
func GetRedisClient(config *Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", config.Redis.Host, config.Redis.Port),
		DialTimeout:  config.Redis.DialTimeout,
		ReadTimeout:  config.Redis.ReadTimeout,
		WriteTimeout: config.Redis.WriteTimeout,
		PoolSize:     config.Redis.PoolSize,
		PoolTimeout:  config.Redis.PoolTimeout,
		Password:     config.Redis.Password,
		Username:     config.Redis.Username,
		DB:           config.Redis.DatabaseIndex,
	})

	// test connection.
	if pong, err := client.Ping(context.Background()).Result(); pong != "PONG" || err != nil {
		return client, fmt.Errorf("test connection failed: %v", err)
	}
	return client, nil
}

func hashKey(kind string) string {
	return HKeyPrefix + ":" + kind
}

// NextID increments and returns the id sequence of the kind.
func (rs *redisDocumentStorage) NextID(ctx context.Context, kind string) (int64, error) {
	return rs.client.Incr(ctx, hashKey(kind)+":seq").Result()
}

func (rs *redisDocumentStorage) Put(ctx context.Context, kind string, id int64, doc []byte) error {
	return rs.client.HSet(ctx, hashKey(kind), strconv.FormatInt(id, 10), doc).Err()
}

func (rs *redisDocumentStorage) Get(ctx context.Context, kind string, id int64) ([]byte, error) {
	doc, err := rs.client.HGet(ctx, hashKey(kind), strconv.FormatInt(id, 10)).Bytes()
	if err == redis.Nil {
		return nil, ErrRecordNotFound
	}
	return doc, err
}

func (rs *redisDocumentStorage) Delete(ctx context.Context, kind string, id int64) error {
	n, err := rs.client.HDel(ctx, hashKey(kind), strconv.FormatInt(id, 10)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// List returns all documents of the kind. Hash fields come back in no
// particular order so they are sorted by numeric id.
func (rs *redisDocumentStorage) List(ctx context.Context, kind string) ([][]byte, error) {
	fields, err := rs.client.HGetAll(ctx, hashKey(kind)).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(fields))
	for field := range fields {
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			rs.logger.Warn("redis storage: skipping invalid field", zap.String("kind", kind), zap.String("field", field))
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	docs := make([][]byte, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, []byte(fields[strconv.FormatInt(id, 10)]))
	}
	return docs, nil
}
