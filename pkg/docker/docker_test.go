package docker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEndpoint(t *testing.T) Endpoint {
	t.Helper()
	ep, err := ParseEndpoint("tcp://10.0.0.5:2375")
	require.NoError(t, err)
	return ep
}

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantURL string
		socket  string
		wantErr bool
	}{
		{name: "tcp normalizes to http", raw: "tcp://10.0.0.5:2375", wantURL: "http://10.0.0.5:2375"},
		{name: "http kept as is", raw: "http://127.0.0.1:8010", wantURL: "http://127.0.0.1:8010"},
		{name: "https kept as is", raw: "https://daemon.internal:2376", wantURL: "https://daemon.internal:2376"},
		{name: "unix socket", raw: "unix:///var/run/docker.sock", wantURL: "http://localhost", socket: "/var/run/docker.sock"},
		{name: "trailing slash trimmed", raw: "tcp://10.0.0.5:2375/", wantURL: "http://10.0.0.5:2375"},
		{name: "missing host", raw: "tcp://", wantErr: true},
		{name: "unknown scheme", raw: "ftp://10.0.0.5", wantErr: true},
		{name: "empty unix path", raw: "unix://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ep, err := ParseEndpoint(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, ep.URL().String())
			assert.Equal(t, tt.socket, ep.SocketPath())
		})
	}
}

func TestSystemRequests(t *testing.T) {
	c := NewClient(testEndpoint(t))

	version, err := c.Version()
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, version.Method)
	assert.Equal(t, "http://10.0.0.5:2375/version", version.URL.String())

	info, err := c.Info()
	require.NoError(t, err)
	assert.Equal(t, "/info", info.URL.Path)

	ping, err := c.Ping()
	require.NoError(t, err)
	assert.Equal(t, "/_ping", ping.URL.Path)
}

func TestEventsOptionsSerialize(t *testing.T) {
	var empty *EventsOptions
	_, ok := empty.Serialize()
	assert.False(t, ok, "nil options must serialize to nothing")

	_, ok = NewEventsBuilder().Build().Serialize()
	assert.False(t, ok, "empty options must serialize to nothing")

	opts := NewEventsBuilder().Since(1000).Until(2000).Build()
	query, ok := opts.Serialize()
	require.True(t, ok)
	values, err := url.ParseQuery(query)
	require.NoError(t, err)
	assert.Equal(t, "1000", values.Get("since"))
	assert.Equal(t, "2000", values.Get("until"))
}

func TestEventsFilterAccumulation(t *testing.T) {
	b := NewEventsBuilder()
	b.Filter(EventFilterContainer("web"))
	b.Filter(EventFilterContainer("db"), EventFilterType(EventTypeContainer))

	query, ok := b.Build().Serialize()
	require.True(t, ok)
	values, err := url.ParseQuery(query)
	require.NoError(t, err)

	var filters map[string][]string
	require.NoError(t, json.Unmarshal([]byte(values.Get("filters")), &filters))
	assert.Equal(t, []string{"web", "db"}, filters["container"])
	assert.Equal(t, []string{"container"}, filters["type"])
}

func TestLastWriteWins(t *testing.T) {
	opts := NewEventsBuilder().Since(1).Since(42).Build()
	query, ok := opts.Serialize()
	require.True(t, ok)
	values, err := url.ParseQuery(query)
	require.NoError(t, err)
	assert.Equal(t, "42", values.Get("since"))
	assert.Len(t, values, 1)
}

func TestBuilderImmutableAfterBuild(t *testing.T) {
	b := NewEventsBuilder().Since(1)
	first := b.Build()
	b.Since(2)

	query, ok := first.Serialize()
	require.True(t, ok)
	assert.Equal(t, "since=1", query, "options built earlier must not see later setter calls")
}

func TestRequestConstructionIsPure(t *testing.T) {
	// Construction against a non-routable endpoint must still succeed:
	// nothing may touch the network until a transport sends the request.
	ep, err := ParseEndpoint("tcp://192.0.2.1:1")
	require.NoError(t, err)

	req, err := NewClient(ep).Containers().List(nil)
	require.NoError(t, err)
	assert.NotNil(t, req)
}

func TestHTTPRequestConversion(t *testing.T) {
	req, err := NewClient(testEndpoint(t)).Containers().Get("abc").Stop(nil)
	require.NoError(t, err)
	req.Header.Set("X-Custom", "1")

	httpReq, err := req.HTTPRequest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, httpReq.Method)
	assert.Equal(t, "http://10.0.0.5:2375/containers/abc/stop", httpReq.URL.String())
	assert.Equal(t, "1", httpReq.Header.Get("X-Custom"))
}
