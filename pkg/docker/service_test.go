package docker

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceRequests(t *testing.T) {
	services := NewClient(testEndpoint(t)).Services()

	list, err := services.List(NewServiceListBuilder().Filter(ServiceFilterMode("replicated")).Build())
	require.NoError(t, err)
	assert.Equal(t, "/services", list.URL.Path)
	assert.Contains(t, list.URL.Query().Get("filters"), "replicated")

	inspect, err := services.Get("svc-1").Inspect()
	require.NoError(t, err)
	assert.Equal(t, "/services/svc-1", inspect.URL.Path)

	logs, err := services.Get("svc-1").Logs(NewLogsBuilder().Stdout(true).Build())
	require.NoError(t, err)
	assert.Equal(t, "/services/svc-1/logs", logs.URL.Path)
	assert.Equal(t, "true", logs.URL.Query().Get("stdout"))

	del, err := services.Get("svc-1").Delete()
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, del.Method)
}

func TestServiceCreateWithAuth(t *testing.T) {
	opts := NewServiceCreateBuilder().
		Name("api").
		Image("registry.example.org/api:v2").
		Replicas(3).
		Auth(RegistryAuthToken("tok")).
		Build()

	req, err := NewClient(testEndpoint(t)).Services().Create(opts)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/services/create", req.URL.Path)
	assert.NotEmpty(t, req.Header.Get("X-Registry-Auth"))

	raw, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "api", doc["Name"])
}
