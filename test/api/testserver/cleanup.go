//go:build api

package testserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// CleanupBetweenTests empties Redis and the archive bucket, rewinds the
// clock and rebuilds the application. Call it at the start of each test.
func (ts *TestServer) CleanupBetweenTests(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, ts.Redis.FlushDB(ctx), "failed to flush Redis")
	require.NoError(t, ts.MinIO.ClearBucket(ctx), "failed to clear MinIO bucket")

	ts.Clock.Set(TestMorning)
	require.NoError(t, ts.Reset(ctx), "failed to rebuild application")
}

// Restart rebuilds the application without touching stored data.
func (ts *TestServer) Restart(t *testing.T) {
	t.Helper()
	require.NoError(t, ts.Reset(context.Background()), "failed to restart application")
}
