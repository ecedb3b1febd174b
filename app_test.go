package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestNewApp ensures the app is built over a bolt storage and stops cleanly.
func TestNewApp(t *testing.T) {
	config := newTestConfig()
	config.Server.Port = "0"
	config.BoltDB.FilePath = filepath.Join(t.TempDir(), "catalog.db")
	require.NoError(t, InitConfig(config, "abc123", "", ""))

	provider, err := NewApp(config, zap.NewNop(), NewTickClock(NewMockClocker()))
	require.NoError(t, err)
	app, ok := provider.(*App)
	require.True(t, ok)
	assert.Equal(t, "127.0.0.1:0", app.server.Addr)
	assert.Empty(t, app.queueConsumers)
	assert.Len(t, app.closers, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, app.Stop(ctx, ctx)())
	app.Clean()
}

func TestNewApp_UnsupportedDriver(t *testing.T) {
	config := newTestConfig()
	config.Storage.Driver = "mongo"
	_, err := NewApp(config, zap.NewNop(), NewTickClock(NewMockClocker()))
	assert.Error(t, err)
}
