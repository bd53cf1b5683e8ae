package gateway

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dockpool/dockpool/pkg/docker"
)

func TestStaticResolver(t *testing.T) {
	ep, err := docker.ParseEndpoint("tcp://10.0.0.5:2375")
	require.NoError(t, err)

	r := NewStaticResolver(map[string]docker.Endpoint{"t1": ep})

	got, err := r.Resolve(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:2375", got.URL().String())

	_, err = r.Resolve(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrTenantNotFound)
}

func TestStaticResolverCopiesFleet(t *testing.T) {
	ep, err := docker.ParseEndpoint("tcp://10.0.0.5:2375")
	require.NoError(t, err)

	fleet := map[string]docker.Endpoint{"t1": ep}
	r := NewStaticResolver(fleet)
	delete(fleet, "t1")

	_, err = r.Resolve(context.Background(), "t1")
	assert.NoError(t, err, "resolver must not observe later fleet mutations")
}

func TestSQLResolver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleet.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE daemon (id TEXT PRIMARY KEY, host_ip TEXT NOT NULL, docker_port INTEGER NOT NULL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO daemon (id, host_ip, docker_port) VALUES ('farm-7', '192.168.1.40', 2375)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	r, err := NewSQLResolver(path)
	require.NoError(t, err)
	defer r.Close()

	ep, err := r.Resolve(context.Background(), "farm-7")
	require.NoError(t, err)
	assert.Equal(t, "http://192.168.1.40:2375", ep.URL().String())

	_, err = r.Resolve(context.Background(), "farm-8")
	assert.ErrorIs(t, err, ErrTenantNotFound)
}
