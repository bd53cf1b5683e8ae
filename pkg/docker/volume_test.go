package docker

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVolumeRequests(t *testing.T) {
	volumes := NewClient(testEndpoint(t)).Volumes()

	list, err := volumes.List()
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, list.Method)
	assert.Equal(t, "/volumes", list.URL.Path)

	prune, err := volumes.Prune()
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, prune.Method)
	assert.Equal(t, "/volumes/prune", prune.URL.Path)

	inspect, err := volumes.Get("data").Inspect()
	require.NoError(t, err)
	assert.Equal(t, "/volumes/data", inspect.URL.Path)

	del, err := volumes.Get("data").Delete()
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, del.Method)
	assert.Equal(t, "/volumes/data", del.URL.Path)
}

func TestVolumeCreateBody(t *testing.T) {
	opts := NewVolumeCreateBuilder().
		Name("pgdata").
		Driver("local").
		Labels(map[string]string{"app": "db"}).
		Build()

	req, err := NewClient(testEndpoint(t)).Volumes().Create(opts)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/volumes/create", req.URL.Path)
	assert.Empty(t, req.URL.RawQuery, "volume create is body-encoded, never query-encoded")
	assert.Equal(t, ContentTypeJSON, req.Header.Get("Content-Type"))

	raw, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "pgdata", doc["Name"])
	assert.Equal(t, "local", doc["Driver"])
	assert.Equal(t, map[string]any{"app": "db"}, doc["Labels"])
	_, hasOpts := doc["DriverOpts"]
	assert.False(t, hasOpts, "unset keys must be absent from the document")
}

func TestVolumeCreateEmptyBody(t *testing.T) {
	req, err := NewClient(testEndpoint(t)).Volumes().Create(nil)
	require.NoError(t, err)

	raw, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))
}
