package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Predefinied Queue IDs.
const (
	CreateQueue = "catalog:creation"
	UpdateQueue = "catalog:updating"
	DeleteQueue = "catalog:deletion"
)

// Change describes one mutation of the catalog. Doc is empty on deletion.
type Change struct {
	Kind string          `json:"kind"`
	ID   int64           `json:"id"`
	Doc  json.RawMessage `json:"doc,omitempty"`
}

// Ensure *redisQueue implements Queuer.
var _ Queuer = (*redisQueue)(nil)

// Queuer describes a queue.
type Queuer interface {
	Push(ctx context.Context, qid string, change Change) error
	Pop(ctx context.Context, qids ...string) (string, Change, error)
}

// redisQueue represents a queue which implements the Queuer interface.
type redisQueue struct {
	client *redis.Client
}

func NewRedisQueue(client *redis.Client) Queuer {
	return &redisQueue{client: client}
}

// Push enqueues a change onto the queue identified by qid.
func (q *redisQueue) Push(ctx context.Context, qid string, change Change) error {
	changeBytes, err := json.Marshal(change)
	if err != nil {
		return err
	}
	return q.client.RPush(ctx, qid, changeBytes).Err()
}

// Pop blocks until a change is available on one of the queue ids and
// returns it along with the queue id it came from.
func (q *redisQueue) Pop(ctx context.Context, qids ...string) (string, Change, error) {
	var change Change
	var qid string
	infos, err := q.client.BLPop(ctx, 0*time.Second, qids...).Result()
	if err != nil {
		return qid, change, err
	}

	if err = json.Unmarshal([]byte(infos[1]), &change); err != nil {
		return qid, change, err
	}
	qid = infos[0]
	return qid, change, nil
}
