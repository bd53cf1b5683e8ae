package docker

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetworkList(t *testing.T) {
	networks := NewClient(testEndpoint(t)).Networks()

	req, err := networks.List(nil)
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/networks", req.URL.Path)
	assert.Empty(t, req.URL.RawQuery)

	b := NewNetworkListBuilder()
	b.Filter(NetworkFilterDriver("bridge"))
	b.Filter(NetworkFilterName("frontend"))
	req, err = networks.List(b.Build())
	require.NoError(t, err)

	var filters map[string][]string
	require.NoError(t, json.Unmarshal([]byte(req.URL.Query().Get("filters")), &filters))
	assert.Equal(t, []string{"bridge"}, filters["driver"])
	assert.Equal(t, []string{"frontend"}, filters["name"])
}

func TestNetworkCreate(t *testing.T) {
	opts := NewNetworkCreateBuilder("backend").
		Driver("overlay").
		Attachable(true).
		Build()

	req, err := NewClient(testEndpoint(t)).Networks().Create(opts)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/networks/create", req.URL.Path)
	assert.Equal(t, ContentTypeJSON, req.Header.Get("Content-Type"))

	raw, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "backend", doc["Name"])
	assert.Equal(t, "overlay", doc["Driver"])
	assert.Equal(t, true, doc["Attachable"])
}

func TestNetworkConnectDisconnect(t *testing.T) {
	net := NewClient(testEndpoint(t)).Networks().Get("n-1")

	connect, err := net.Connect(NewNetworkConnectBuilder("box-1").Build())
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, connect.Method)
	assert.Equal(t, "/networks/n-1/connect", connect.URL.Path)

	raw, err := io.ReadAll(connect.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Container":"box-1"}`, string(raw))

	disconnect, err := net.Disconnect(NewNetworkConnectBuilder("box-1").Force(true).Build())
	require.NoError(t, err)
	assert.Equal(t, "/networks/n-1/disconnect", disconnect.URL.Path)

	raw, err = io.ReadAll(disconnect.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Container":"box-1","Force":true}`, string(raw))
}
