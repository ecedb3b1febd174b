package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/boltdb/bolt"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// This file contains mocks definitions needed to perform unit tests.

// MockGateway implements Gateway with configurable functions.
type MockGateway[T any] struct {
	ListFunc   func(ctx context.Context) ([]T, error)
	CreateFunc func(ctx context.Context, draft T) (T, error)
	UpdateFunc func(ctx context.Context, id int64, draft T) (T, error)
	DeleteFunc func(ctx context.Context, id int64) error

	mu      sync.Mutex
	creates int
	updates int
	deletes int
	lists   int
}

func (m *MockGateway[T]) List(ctx context.Context) ([]T, error) {
	m.mu.Lock()
	m.lists++
	m.mu.Unlock()
	return m.ListFunc(ctx)
}

func (m *MockGateway[T]) Create(ctx context.Context, draft T) (T, error) {
	m.mu.Lock()
	m.creates++
	m.mu.Unlock()
	return m.CreateFunc(ctx, draft)
}

func (m *MockGateway[T]) Update(ctx context.Context, id int64, draft T) (T, error) {
	m.mu.Lock()
	m.updates++
	m.mu.Unlock()
	return m.UpdateFunc(ctx, id, draft)
}

func (m *MockGateway[T]) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	m.deletes++
	m.mu.Unlock()
	return m.DeleteFunc(ctx, id)
}

// Calls returns the number of calls of each operation.
func (m *MockGateway[T]) Calls() (lists, creates, updates, deletes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lists, m.creates, m.updates, m.deletes
}

// newMemoryGateway returns a gateway keeping records in memory and
// assigning increasing ids on creation, like the api does.
func newMemoryGateway[T Record[T]](initial ...T) *MockGateway[T] {
	var mu sync.Mutex
	records := append([]T{}, initial...)
	var seq int64
	for _, rec := range initial {
		if rec.RecordID() > seq {
			seq = rec.RecordID()
		}
	}
	return &MockGateway[T]{
		ListFunc: func(_ context.Context) ([]T, error) {
			mu.Lock()
			defer mu.Unlock()
			return append([]T{}, records...), nil
		},
		CreateFunc: func(_ context.Context, draft T) (T, error) {
			mu.Lock()
			defer mu.Unlock()
			seq++
			rec := draft.WithRecordID(seq)
			records = append(records, rec)
			return rec, nil
		},
		UpdateFunc: func(_ context.Context, id int64, draft T) (T, error) {
			mu.Lock()
			defer mu.Unlock()
			for i := range records {
				if records[i].RecordID() == id {
					records[i] = draft.WithRecordID(id)
					return records[i], nil
				}
			}
			return draft, &NotFoundError{Op: "update", ID: id}
		},
		DeleteFunc: func(_ context.Context, id int64) error {
			mu.Lock()
			defer mu.Unlock()
			for i := range records {
				if records[i].RecordID() == id {
					records = append(records[:i], records[i+1:]...)
					return nil
				}
			}
			return &NotFoundError{Op: "delete", ID: id}
		},
	}
}

// MockRecordStorage implements RecordStorage with configurable functions.
type MockRecordStorage[T any] struct {
	AddFunc    func(ctx context.Context, rec T) (T, error)
	GetOneFunc func(ctx context.Context, id int64) (T, error)
	DeleteFunc func(ctx context.Context, id int64) error
	UpdateFunc func(ctx context.Context, id int64, rec T) (T, error)
	GetAllFunc func(ctx context.Context) ([]T, error)
}

// Add mocks the behavior of record creation by the repository.
func (m *MockRecordStorage[T]) Add(ctx context.Context, rec T) (T, error) {
	return m.AddFunc(ctx, rec)
}

// GetOne mocks the behavior of retrieving a record by the repository.
func (m *MockRecordStorage[T]) GetOne(ctx context.Context, id int64) (T, error) {
	return m.GetOneFunc(ctx, id)
}

// Delete mocks the behavior of deleting a record by the repository.
func (m *MockRecordStorage[T]) Delete(ctx context.Context, id int64) error {
	return m.DeleteFunc(ctx, id)
}

// Update mocks the behavior of updating a record by the repository.
func (m *MockRecordStorage[T]) Update(ctx context.Context, id int64, rec T) (T, error) {
	return m.UpdateFunc(ctx, id, rec)
}

// GetAll mocks the behavior of retrieving all records by the repository.
func (m *MockRecordStorage[T]) GetAll(ctx context.Context) ([]T, error) {
	return m.GetAllFunc(ctx)
}

// MockQueuer is an in-memory queue recording pushed changes.
type MockQueuer struct {
	mu      sync.Mutex
	changes map[string][]Change
	ready   chan struct{}
}

func NewMockQueuer() *MockQueuer {
	return &MockQueuer{changes: map[string][]Change{}, ready: make(chan struct{}, 1024)}
}

func (q *MockQueuer) Push(_ context.Context, qid string, change Change) error {
	q.mu.Lock()
	q.changes[qid] = append(q.changes[qid], change)
	q.mu.Unlock()
	q.ready <- struct{}{}
	return nil
}

// Pop returns the oldest change of the first non-empty queue among qids.
func (q *MockQueuer) Pop(ctx context.Context, qids ...string) (string, Change, error) {
	for {
		select {
		case <-ctx.Done():
			return "", Change{}, ctx.Err()
		case <-q.ready:
		}
		q.mu.Lock()
		for _, qid := range qids {
			if len(q.changes[qid]) > 0 {
				change := q.changes[qid][0]
				q.changes[qid] = q.changes[qid][1:]
				q.mu.Unlock()
				return qid, change, nil
			}
		}
		q.mu.Unlock()
	}
}

// Pushed returns the changes pushed to qid.
func (q *MockQueuer) Pushed(qid string) []Change {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Change{}, q.changes[qid]...)
}

// MockClocker implements a fake Clocker.
type MockClocker struct {
	MockNow time.Time
}

// NewMockClocker returns a mocked instance with fixed time.
func NewMockClocker() *MockClocker {
	return &MockClocker{time.Date(2023, 0o7, 0o2, 0o0, 0o0, 0o0, 0o00000000, time.UTC)}
}

// Now returns an already defined time to be used as mock. This
// equals to `Sun, 02 Jul 2023 00:00:00 UTC` in time.RFC1123 format.
func (mck *MockClocker) Now() time.Time {
	return mck.MockNow
}

// MockUIDHandler implements a fake UIDHandler.
type MockUIDHandler struct {
	MockedUID string
	Valid     bool
}

// NewMockUIDHandler returns a mocked instance with predictable id.
func NewMockUIDHandler(id string, valid bool) *MockUIDHandler {
	return &MockUIDHandler{MockedUID: id, Valid: valid}
}

// Generate constructs a predictable id to be used as mock.
func (muid *MockUIDHandler) Generate(prefix string) string {
	return prefix + ":" + muid.MockedUID
}

// IsValid mocks IsValid behavior by providing configured status.
func (muid *MockUIDHandler) IsValid(_, _ string) bool {
	return muid.Valid
}

// MockNotifier records every notice.
type MockNotifier struct {
	mu      sync.Mutex
	notices []Notice
}

func (mn *MockNotifier) Notify(kind NoticeKind, message string) {
	mn.mu.Lock()
	mn.notices = append(mn.notices, Notice{Kind: kind, Message: message})
	mn.mu.Unlock()
}

// Notices returns a copy of the recorded notices.
func (mn *MockNotifier) Notices() []Notice {
	mn.mu.Lock()
	defer mn.mu.Unlock()
	return append([]Notice{}, mn.notices...)
}

// Last returns the latest notice.
func (mn *MockNotifier) Last() Notice {
	mn.mu.Lock()
	defer mn.mu.Unlock()
	if len(mn.notices) == 0 {
		return Notice{}
	}
	return mn.notices[len(mn.notices)-1]
}

// newTestBoltDB opens a bolt database in a temporary folder removed at
// the end of the test.
func newTestBoltDB(t *testing.T) *bolt.DB {
	t.Helper()
	config := &Config{
		BoltDB: BoltDBConfig{
			FilePath: filepath.Join(t.TempDir(), "catalog.test.db"),
			Timeout:  5 * time.Second,
		},
	}
	client, err := GetBoltDBClient(config)
	require.NoError(t, err, "failed in creating a test bolt database")
	t.Cleanup(func() { client.Close() })
	return client
}

// newTestConfig returns a configuration fit for handlers tests.
func newTestConfig() *Config {
	return &Config{
		OpsEndpointsEnable: true,
		Server: ServerConfig{
			Host:      "127.0.0.1",
			Port:      "8080",
			RateLimit: 1000,
			RateBurst: 1000,
		},
		Storage: StorageConfig{Driver: BoltDriver},
	}
}

// newTestAPIHandler builds an api handler over a temporary bolt database.
func newTestAPIHandler(t *testing.T, queue Queuer) *APIHandler {
	t.Helper()
	logger := zap.NewNop()
	storage := NewBoltDocumentStorage(logger, newTestBoltDB(t))
	clock := NewMockClocker()
	return NewAPIHandler(
		logger,
		newTestConfig(),
		&Statistics{started: clock.Now()},
		clock,
		NewMockUIDHandler("test", false),
		NewCatalogServices(logger, storage, queue),
	)
}

// newTestRouter returns the api router with its middlewares stacks.
func newTestRouter(api *APIHandler) http.Handler {
	public, ops := api.MiddlewaresStacks()
	return api.SetupRoutes(httprouter.New(), &MiddlewareMap{public: public.Chain, ops: ops.Chain})
}

const defaultTestTimeout = 5 * time.Second

// newTestServer serves h on a local port until the end of the test.
func newTestServer(t *testing.T, h http.Handler) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return server
}
