package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dockpool/dockpool/internal/telemetry"
	"github.com/dockpool/dockpool/pkg/docker"
)

// fakeDaemon records the last request it served and answers with a
// canned response.
type fakeDaemon struct {
	srv *httptest.Server

	lastMethod string
	lastPath   string
	lastQuery  url.Values
	lastHeader http.Header
	lastBody   []byte
	hits       int

	status int
	header map[string]string
	body   string
}

func newFakeDaemon(t *testing.T) *fakeDaemon {
	t.Helper()
	d := &fakeDaemon{status: http.StatusOK, body: `[]`}
	d.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d.hits++
		d.lastMethod = r.Method
		d.lastPath = r.URL.Path
		d.lastQuery = r.URL.Query()
		d.lastHeader = r.Header.Clone()
		d.lastBody, _ = io.ReadAll(r.Body)
		for k, v := range d.header {
			w.Header().Set(k, v)
		}
		w.WriteHeader(d.status)
		io.WriteString(w, d.body)
	}))
	t.Cleanup(d.srv.Close)
	return d
}

func (d *fakeDaemon) endpoint(t *testing.T) docker.Endpoint {
	t.Helper()
	ep, err := docker.ParseEndpoint(d.srv.URL)
	require.NoError(t, err)
	return ep
}

func newTestServer(t *testing.T, fleet map[string]docker.Endpoint) *echo.Echo {
	t.Helper()
	g := New(NewStaticResolver(fleet), NewHTTPTransport(), nil)
	e := echo.New()
	g.RegisterRoutes(e)
	return e
}

func doRequest(e *echo.Echo, method, target string, body io.Reader, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestForwardContainerList(t *testing.T) {
	daemon := newFakeDaemon(t)
	daemon.body = `[{"Id":"abc"}]`
	e := newTestServer(t, map[string]docker.Endpoint{"t1": daemon.endpoint(t)})

	rec := doRequest(e, http.MethodGet, "/docker/t1/containers?all=true", nil, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `[{"Id":"abc"}]`, rec.Body.String())
	assert.Equal(t, http.MethodGet, daemon.lastMethod)
	assert.Equal(t, "/containers/json", daemon.lastPath)
	assert.Equal(t, "true", daemon.lastQuery.Get("all"))
}

func TestForwardFiltersRelay(t *testing.T) {
	daemon := newFakeDaemon(t)
	e := newTestServer(t, map[string]docker.Endpoint{"t1": daemon.endpoint(t)})

	spec := url.QueryEscape(`{"status":["running","paused"]}`)
	rec := doRequest(e, http.MethodGet, "/docker/t1/containers?filters="+spec, nil, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var decoded map[string][]string
	require.NoError(t, json.Unmarshal([]byte(daemon.lastQuery.Get("filters")), &decoded))
	assert.Equal(t, map[string][]string{"status": {"running", "paused"}}, decoded)
}

func TestForwardMalformedFilters(t *testing.T) {
	daemon := newFakeDaemon(t)
	e := newTestServer(t, map[string]docker.Endpoint{"t1": daemon.endpoint(t)})

	rec := doRequest(e, http.MethodGet, "/docker/t1/containers?filters=notjson", nil, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, daemon.hits, "a rejected request must not reach the daemon")
}

func TestForwardUnknownTenant(t *testing.T) {
	daemon := newFakeDaemon(t)
	e := newTestServer(t, map[string]docker.Endpoint{"t1": daemon.endpoint(t)})

	rec := doRequest(e, http.MethodGet, "/docker/ghost/containers", nil, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, daemon.hits, "resolution misses are terminal")
}

func TestForwardUnreachableDaemon(t *testing.T) {
	daemon := newFakeDaemon(t)
	ep := daemon.endpoint(t)
	daemon.srv.Close()
	e := newTestServer(t, map[string]docker.Endpoint{"t1": ep})

	rec := doRequest(e, http.MethodGet, "/docker/t1/info", nil, nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestForwardVerbPassthrough(t *testing.T) {
	daemon := newFakeDaemon(t)
	e := newTestServer(t, map[string]docker.Endpoint{"t1": daemon.endpoint(t)})

	tests := []struct {
		name         string
		method, path string
		wantMethod   string
		wantPath     string
		wantQuery    url.Values
	}{
		{"stop with grace period", http.MethodPost, "/docker/t1/containers/box-1/stop?t=30",
			http.MethodPost, "/containers/box-1/stop", url.Values{"t": {"30"}}},
		{"remove", http.MethodDelete, "/docker/t1/containers/box-1?force=true",
			http.MethodDelete, "/containers/box-1", url.Values{"force": {"true"}}},
		{"remove via post alias", http.MethodPost, "/docker/t1/containers/box-1/remove?v=true",
			http.MethodDelete, "/containers/box-1", url.Values{"v": {"true"}}},
		{"image delete", http.MethodDelete, "/docker/t1/images/alpine",
			http.MethodDelete, "/images/alpine", url.Values{}},
		{"rename", http.MethodPost, "/docker/t1/containers/box-1/rename?name=box-2",
			http.MethodPost, "/containers/box-1/rename", url.Values{"name": {"box-2"}}},
		{"pause", http.MethodPost, "/docker/t1/containers/box-1/pause",
			http.MethodPost, "/containers/box-1/pause", url.Values{}},
		{"volume inspect", http.MethodGet, "/docker/t1/volumes/data",
			http.MethodGet, "/volumes/data", url.Values{}},
		{"network disconnect", http.MethodPost, "/docker/t1/networks/net-1/disconnect",
			http.MethodPost, "/networks/net-1/disconnect", url.Values{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(e, tt.method, tt.path, nil, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantMethod, daemon.lastMethod)
			assert.Equal(t, tt.wantPath, daemon.lastPath)
			assert.Equal(t, tt.wantQuery, daemon.lastQuery)
		})
	}
}

func TestForwardCreateBodyRelay(t *testing.T) {
	daemon := newFakeDaemon(t)
	daemon.status = http.StatusCreated
	e := newTestServer(t, map[string]docker.Endpoint{"t1": daemon.endpoint(t)})

	payload := `{"Image":"redis:7","Tty":true}`
	rec := doRequest(e, http.MethodPost, "/docker/t1/containers?name=cache", strings.NewReader(payload),
		map[string]string{"Content-Type": "application/json"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, http.MethodPost, daemon.lastMethod)
	assert.Equal(t, "/containers/create", daemon.lastPath)
	assert.Equal(t, "cache", daemon.lastQuery.Get("name"))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(daemon.lastBody, &doc))
	assert.Equal(t, "redis:7", doc["Image"])
	assert.Equal(t, true, doc["Tty"])
}

func TestForwardPullAuthRelay(t *testing.T) {
	daemon := newFakeDaemon(t)
	e := newTestServer(t, map[string]docker.Endpoint{"t1": daemon.endpoint(t)})

	rec := doRequest(e, http.MethodPost, "/docker/t1/images/pull?fromImage=alpine&tag=3.19", nil,
		map[string]string{docker.HeaderRegistryAuth: "b3BhcXVl"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/images/create", daemon.lastPath)
	assert.Equal(t, "alpine", daemon.lastQuery.Get("fromImage"))
	assert.Equal(t, "3.19", daemon.lastQuery.Get("tag"))
	assert.Equal(t, "b3BhcXVl", daemon.lastHeader.Get(docker.HeaderRegistryAuth),
		"inbound credentials are relayed opaque")
}

func TestRelayPreservesStatusAndHeaders(t *testing.T) {
	daemon := newFakeDaemon(t)
	daemon.status = http.StatusConflict
	daemon.header = map[string]string{
		"Content-Type":   "application/json",
		"Docker-Api-Ver": "1.41",
	}
	daemon.body = `{"message":"name already in use"}`
	e := newTestServer(t, map[string]docker.Endpoint{"t1": daemon.endpoint(t)})

	rec := doRequest(e, http.MethodPost, "/docker/t1/containers", strings.NewReader(`{}`),
		map[string]string{"Content-Type": "application/json"})

	assert.Equal(t, http.StatusConflict, rec.Code, "daemon errors are relayed, not translated")
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "1.41", rec.Header().Get("Docker-Api-Ver"))
	assert.Equal(t, `{"message":"name already in use"}`, rec.Body.String())
}

func TestForwardBuildStreamsContext(t *testing.T) {
	daemon := newFakeDaemon(t)
	e := newTestServer(t, map[string]docker.Endpoint{"t1": daemon.endpoint(t)})

	archive := "fake-tar-bytes"
	rec := doRequest(e, http.MethodPost, "/docker/t1/images/build?t=app:latest", strings.NewReader(archive), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/build", daemon.lastPath)
	assert.Equal(t, "app:latest", daemon.lastQuery.Get("t"))
	assert.Equal(t, archive, string(daemon.lastBody))
	assert.Equal(t, "application/tar", daemon.lastHeader.Get("Content-Type"))
}

func TestCancellationAbortsOutbound(t *testing.T) {
	started := make(chan struct{})
	aborted := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		select {
		case <-r.Context().Done():
			close(aborted)
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)
	ep, err := docker.ParseEndpoint(srv.URL)
	require.NoError(t, err)

	e := newTestServer(t, map[string]docker.Endpoint{"t1": ep})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/docker/t1/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	served := make(chan struct{})
	go func() {
		e.ServeHTTP(rec, req)
		close(served)
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("outbound request never reached the daemon")
	}
	cancel()

	select {
	case <-aborted:
	case <-time.After(2 * time.Second):
		t.Fatal("cancelling the inbound request did not abort the outbound exchange")
	}
	<-served
}

func TestTelemetryAuditAndReport(t *testing.T) {
	store, err := telemetry.Open(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	defer store.Close()

	daemon := newFakeDaemon(t)
	g := New(NewStaticResolver(map[string]docker.Endpoint{"t1": daemon.endpoint(t)}), NewHTTPTransport(), store)
	e := echo.New()
	g.RegisterRoutes(e)

	doRequest(e, http.MethodGet, "/docker/t1/info", nil, nil)
	doRequest(e, http.MethodGet, "/docker/t1/containers", nil, nil)

	rec := doRequest(e, http.MethodPost, "/telemetry/plots", strings.NewReader(`{"count":4}`),
		map[string]string{"Content-Type": "application/json"})
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = doRequest(e, http.MethodGet, "/telemetry/tenants", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var counts map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &counts))
	assert.Equal(t, 2, counts["t1"])
}

func TestForwardBuildQueryRelay(t *testing.T) {
	daemon := newFakeDaemon(t)
	e := newTestServer(t, map[string]docker.Endpoint{"t1": daemon.endpoint(t)})

	labels := url.QueryEscape(`{"team":"infra"}`)
	rec := doRequest(e, http.MethodPost,
		"/docker/t1/images/build?rm=true&memory=1048576&cpushares=512&labels="+labels,
		strings.NewReader("ctx"), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "true", daemon.lastQuery.Get("rm"))
	assert.Equal(t, "1048576", daemon.lastQuery.Get("memory"))
	assert.Equal(t, "512", daemon.lastQuery.Get("cpushares"))
	assert.JSONEq(t, `{"team":"infra"}`, daemon.lastQuery.Get("labels"))
}

func TestForwardServiceLogsRelay(t *testing.T) {
	daemon := newFakeDaemon(t)
	e := newTestServer(t, map[string]docker.Endpoint{"t1": daemon.endpoint(t)})

	rec := doRequest(e, http.MethodGet,
		"/docker/t1/services/svc-1/logs?stdout=true&since=100&until=200&tail=50", nil, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/services/svc-1/logs", daemon.lastPath)
	assert.Equal(t, "true", daemon.lastQuery.Get("stdout"))
	assert.Equal(t, "100", daemon.lastQuery.Get("since"))
	assert.Equal(t, "200", daemon.lastQuery.Get("until"))
	assert.Equal(t, "50", daemon.lastQuery.Get("tail"))
}

func TestTenantsAreIsolated(t *testing.T) {
	d1 := newFakeDaemon(t)
	d2 := newFakeDaemon(t)
	e := newTestServer(t, map[string]docker.Endpoint{
		"t1": d1.endpoint(t),
		"t2": d2.endpoint(t),
	})

	rec := doRequest(e, http.MethodGet, "/docker/t2/info", nil, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, d1.hits)
	assert.Equal(t, 1, d2.hits)
}
