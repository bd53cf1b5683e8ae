package telemetry

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "telemetry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordForward(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := store.RecordForward(ctx, ForwardEntry{
			Tenant:   "tenant-7",
			Method:   "GET",
			Path:     "/containers/json",
			Status:   200,
			Duration: 12 * time.Millisecond,
			RemoteIP: "10.1.2.3",
		})
		require.NoError(t, err)
	}
	err := store.RecordForward(ctx, ForwardEntry{
		Tenant: "tenant-9", Method: "POST", Path: "/images/create",
		Status: 502, Duration: time.Second, RemoteIP: "10.1.2.4",
	})
	require.NoError(t, err)

	counts, err := store.TenantCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"tenant-7": 3, "tenant-9": 1}, counts)
}

func TestRecordPlot(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.RecordPlot(context.Background(), "192.168.1.20", 42))

	var count int
	err := store.db.QueryRow(`SELECT plot_count FROM plot_complete_info WHERE from_ip = ?`, "192.168.1.20").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 42, count)
}

func TestOpenCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "telemetry.db")
	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}
