package docker

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Containers builds requests for the container family of endpoints.
//
// API reference: https://docs.docker.com/engine/api/v1.41/#tag/Container
type Containers struct {
	endpoint Endpoint
}

// List builds GET /containers/json.
func (c Containers) List(opts *ContainerListOptions) (*Request, error) {
	return newRequest(c.endpoint, http.MethodGet, withQuery("/containers/json", opts), nil)
}

// Create builds POST /containers/create with a JSON body. A name set on
// the options becomes the `name` query parameter; everything else is the
// container config document.
func (c Containers) Create(opts *ContainerCreateOptions) (*Request, error) {
	doc, err := opts.SerializeBody()
	if err != nil {
		return nil, &RequestBuildError{Path: "/containers/create", Err: err}
	}
	path := "/containers/create"
	if name := opts.Name(); name != "" {
		path += "?name=" + url.QueryEscape(name)
	}
	return newRequest(c.endpoint, http.MethodPost, path, JSONPayload(bytes.NewReader(doc)))
}

// Get returns the operations scoped to one container. The id is treated
// as opaque; the daemon is authoritative for its validity.
func (c Containers) Get(id string) Container {
	return Container{endpoint: c.endpoint, id: id}
}

// Container builds requests against a single container. It is a value
// carrying only the endpoint and the identifier, safe to construct and
// discard per call.
type Container struct {
	endpoint Endpoint
	id       string
}

// ID returns the container identifier this handle is scoped to.
func (c Container) ID() string { return c.id }

func (c Container) path(suffix string) string {
	return "/containers/" + url.PathEscape(c.id) + suffix
}

// Inspect builds GET /containers/{id}/json.
func (c Container) Inspect() (*Request, error) {
	return newRequest(c.endpoint, http.MethodGet, c.path("/json"), nil)
}

// Top builds GET /containers/{id}/top. psArgs is passed through as the
// `ps_args` parameter when non-empty.
func (c Container) Top(psArgs string) (*Request, error) {
	path := c.path("/top")
	if psArgs != "" {
		path += "?ps_args=" + url.QueryEscape(psArgs)
	}
	return newRequest(c.endpoint, http.MethodGet, path, nil)
}

// Logs builds GET /containers/{id}/logs.
func (c Container) Logs(opts *LogsOptions) (*Request, error) {
	return newRequest(c.endpoint, http.MethodGet, withQuery(c.path("/logs"), opts), nil)
}

// Changes builds GET /containers/{id}/changes.
func (c Container) Changes() (*Request, error) {
	return newRequest(c.endpoint, http.MethodGet, c.path("/changes"), nil)
}

// Export builds GET /containers/{id}/export. The response is a tarball of
// the container filesystem.
func (c Container) Export() (*Request, error) {
	return newRequest(c.endpoint, http.MethodGet, c.path("/export"), nil)
}

// Stats builds GET /containers/{id}/stats.
func (c Container) Stats() (*Request, error) {
	return newRequest(c.endpoint, http.MethodGet, c.path("/stats"), nil)
}

// Start builds POST /containers/{id}/start.
func (c Container) Start() (*Request, error) {
	return newRequest(c.endpoint, http.MethodPost, c.path("/start"), nil)
}

// Stop builds POST /containers/{id}/stop. A non-nil wait becomes the `t`
// parameter, the grace period in seconds before the daemon kills the
// container.
func (c Container) Stop(wait *time.Duration) (*Request, error) {
	path := c.path("/stop")
	if wait != nil {
		path += fmt.Sprintf("?t=%d", int(wait.Seconds()))
	}
	return newRequest(c.endpoint, http.MethodPost, path, nil)
}

// Restart builds POST /containers/{id}/restart with the same wait
// semantics as Stop.
func (c Container) Restart(wait *time.Duration) (*Request, error) {
	path := c.path("/restart")
	if wait != nil {
		path += fmt.Sprintf("?t=%d", int(wait.Seconds()))
	}
	return newRequest(c.endpoint, http.MethodPost, path, nil)
}

// Kill builds POST /containers/{id}/kill. signal may be a name or number;
// empty means the daemon default (SIGKILL).
func (c Container) Kill(signal string) (*Request, error) {
	path := c.path("/kill")
	if signal != "" {
		path += "?signal=" + url.QueryEscape(signal)
	}
	return newRequest(c.endpoint, http.MethodPost, path, nil)
}

// Rename builds POST /containers/{id}/rename.
func (c Container) Rename(name string) (*Request, error) {
	path := c.path("/rename") + "?name=" + url.QueryEscape(name)
	return newRequest(c.endpoint, http.MethodPost, path, nil)
}

// Pause builds POST /containers/{id}/pause.
func (c Container) Pause() (*Request, error) {
	return newRequest(c.endpoint, http.MethodPost, c.path("/pause"), nil)
}

// Unpause builds POST /containers/{id}/unpause.
func (c Container) Unpause() (*Request, error) {
	return newRequest(c.endpoint, http.MethodPost, c.path("/unpause"), nil)
}

// Attach builds POST /containers/{id}/attach.
func (c Container) Attach() (*Request, error) {
	return newRequest(c.endpoint, http.MethodPost, c.path("/attach"), nil)
}

// Wait builds POST /containers/{id}/wait.
func (c Container) Wait() (*Request, error) {
	return newRequest(c.endpoint, http.MethodPost, c.path("/wait"), nil)
}

// Remove builds DELETE /containers/{id}.
func (c Container) Remove(opts *RmContainerOptions) (*Request, error) {
	return newRequest(c.endpoint, http.MethodDelete, withQuery(c.path(""), opts), nil)
}

// ContainerFilter narrows a container listing.
type ContainerFilter struct {
	kind  string
	value string
}

// ContainerFilterLabel matches containers carrying the label, as `name` or
// `name=value`.
func ContainerFilterLabel(label string) ContainerFilter { return ContainerFilter{"label", label} }

// ContainerFilterStatus matches one lifecycle status (created, running,
// paused, exited, ...).
func ContainerFilterStatus(status string) ContainerFilter { return ContainerFilter{"status", status} }

// ContainerFilterName matches on container name.
func ContainerFilterName(name string) ContainerFilter { return ContainerFilter{"name", name} }

// ContainerFilterExited matches containers with the given exit code.
func ContainerFilterExited(code int) ContainerFilter {
	return ContainerFilter{"exited", strconv.Itoa(code)}
}

// ContainerFilterNetwork matches containers attached to the network.
func ContainerFilterNetwork(name string) ContainerFilter { return ContainerFilter{"network", name} }

// ContainerFilterVolume matches containers using the volume.
func ContainerFilterVolume(name string) ContainerFilter { return ContainerFilter{"volume", name} }

// ContainerListOptions filters GET /containers/json.
type ContainerListOptions struct {
	params params
}

// Serialize renders the options as a query string; ok is false when no
// option was set.
func (o *ContainerListOptions) Serialize() (query string, ok bool) {
	if o == nil {
		return "", false
	}
	return o.params.encode()
}

// ContainerListBuilder accumulates listing options.
type ContainerListBuilder struct {
	params  params
	filters filterSet
}

// NewContainerListBuilder returns an empty builder.
func NewContainerListBuilder() *ContainerListBuilder {
	return &ContainerListBuilder{params: params{}, filters: filterSet{}}
}

// All includes stopped containers in the listing.
func (b *ContainerListBuilder) All() *ContainerListBuilder {
	b.params["all"] = "true"
	return b
}

// Limit caps the number of results.
func (b *ContainerListBuilder) Limit(n int) *ContainerListBuilder {
	b.params["limit"] = strconv.Itoa(n)
	return b
}

// Since only lists containers created after the given one.
func (b *ContainerListBuilder) Since(id string) *ContainerListBuilder {
	b.params["since"] = id
	return b
}

// Before only lists containers created before the given one.
func (b *ContainerListBuilder) Before(id string) *ContainerListBuilder {
	b.params["before"] = id
	return b
}

// Sized includes container size information in the listing.
func (b *ContainerListBuilder) Sized(s bool) *ContainerListBuilder {
	b.params["size"] = boolParam(s)
	return b
}

// Filter adds listing filters, accumulating values per kind across calls.
func (b *ContainerListBuilder) Filter(filters ...ContainerFilter) *ContainerListBuilder {
	for _, f := range filters {
		b.filters.add(f.kind, f.value)
	}
	b.params["filters"] = b.filters.encode()
	return b
}

// FilterSpec merges an already decoded filter document into the
// accumulated set. Used when relaying caller-supplied filters.
func (b *ContainerListBuilder) FilterSpec(spec map[string][]string) *ContainerListBuilder {
	b.filters.merge(spec)
	b.params["filters"] = b.filters.encode()
	return b
}

// Build produces the immutable options value.
func (b *ContainerListBuilder) Build() *ContainerListOptions {
	return &ContainerListOptions{params: b.params.clone()}
}

// LogsOptions selects which log lines GET /containers/{id}/logs returns.
type LogsOptions struct {
	params params
}

func (o *LogsOptions) Serialize() (query string, ok bool) {
	if o == nil {
		return "", false
	}
	return o.params.encode()
}

// LogsBuilder accumulates log options.
type LogsBuilder struct {
	params params
}

// NewLogsBuilder returns an empty builder.
func NewLogsBuilder() *LogsBuilder {
	return &LogsBuilder{params: params{}}
}

// Follow keeps the connection open and streams new output.
func (b *LogsBuilder) Follow(f bool) *LogsBuilder {
	b.params["follow"] = boolParam(f)
	return b
}

// Stdout includes stdout in the output.
func (b *LogsBuilder) Stdout(s bool) *LogsBuilder {
	b.params["stdout"] = boolParam(s)
	return b
}

// Stderr includes stderr in the output.
func (b *LogsBuilder) Stderr(s bool) *LogsBuilder {
	b.params["stderr"] = boolParam(s)
	return b
}

// Since only returns lines logged after the unix timestamp.
func (b *LogsBuilder) Since(ts int64) *LogsBuilder {
	b.params["since"] = strconv.FormatInt(ts, 10)
	return b
}

// Until only returns lines logged before the unix timestamp.
func (b *LogsBuilder) Until(ts int64) *LogsBuilder {
	b.params["until"] = strconv.FormatInt(ts, 10)
	return b
}

// Timestamps prefixes each line with its timestamp.
func (b *LogsBuilder) Timestamps(t bool) *LogsBuilder {
	b.params["timestamps"] = boolParam(t)
	return b
}

// Tail limits output to the last n lines; the Engine also accepts "all".
func (b *LogsBuilder) Tail(lines string) *LogsBuilder {
	b.params["tail"] = lines
	return b
}

// Build produces the immutable options value.
func (b *LogsBuilder) Build() *LogsOptions {
	return &LogsOptions{params: b.params.clone()}
}

// RmContainerOptions controls DELETE /containers/{id}.
type RmContainerOptions struct {
	params params
}

func (o *RmContainerOptions) Serialize() (query string, ok bool) {
	if o == nil {
		return "", false
	}
	return o.params.encode()
}

// RmContainerBuilder accumulates removal options.
type RmContainerBuilder struct {
	params params
}

// NewRmContainerBuilder returns an empty builder.
func NewRmContainerBuilder() *RmContainerBuilder {
	return &RmContainerBuilder{params: params{}}
}

// Volumes also removes anonymous volumes attached to the container.
func (b *RmContainerBuilder) Volumes(v bool) *RmContainerBuilder {
	b.params["v"] = boolParam(v)
	return b
}

// Force kills the container before removing it.
func (b *RmContainerBuilder) Force(f bool) *RmContainerBuilder {
	b.params["force"] = boolParam(f)
	return b
}

// Link removes the named link instead of the container.
func (b *RmContainerBuilder) Link(l bool) *RmContainerBuilder {
	b.params["link"] = boolParam(l)
	return b
}

// Build produces the immutable options value.
func (b *RmContainerBuilder) Build() *RmContainerOptions {
	return &RmContainerOptions{params: b.params.clone()}
}

// ContainerCreateOptions is the JSON config document for POST
// /containers/create plus the optional container name, which travels as a
// query parameter rather than in the body.
type ContainerCreateOptions struct {
	name string
	doc  body
}

// Name returns the requested container name, if any.
func (o *ContainerCreateOptions) Name() string {
	if o == nil {
		return ""
	}
	return o.name
}

// SerializeBody encodes the config document as JSON. An empty document
// serializes to {}; the Engine fills in defaults.
func (o *ContainerCreateOptions) SerializeBody() ([]byte, error) {
	if o == nil || o.doc == nil {
		return []byte("{}"), nil
	}
	return o.doc.encode()
}

// ContainerCreateBuilder assembles a container config document.
type ContainerCreateBuilder struct {
	name string
	doc  body
}

// NewContainerCreateBuilder returns an empty builder.
func NewContainerCreateBuilder() *ContainerCreateBuilder {
	return &ContainerCreateBuilder{doc: body{}}
}

// Name sets the container name (query parameter, not body).
func (b *ContainerCreateBuilder) Name(name string) *ContainerCreateBuilder {
	b.name = name
	return b
}

// Image sets the image to create the container from.
func (b *ContainerCreateBuilder) Image(image string) *ContainerCreateBuilder {
	b.doc["Image"] = image
	return b
}

// Cmd sets the command to run.
func (b *ContainerCreateBuilder) Cmd(cmd ...string) *ContainerCreateBuilder {
	b.doc["Cmd"] = cmd
	return b
}

// Entrypoint overrides the image entrypoint.
func (b *ContainerCreateBuilder) Entrypoint(entrypoint ...string) *ContainerCreateBuilder {
	b.doc["Entrypoint"] = entrypoint
	return b
}

// Env sets environment variables as KEY=value pairs.
func (b *ContainerCreateBuilder) Env(env ...string) *ContainerCreateBuilder {
	b.doc["Env"] = env
	return b
}

// WorkingDir sets the working directory inside the container.
func (b *ContainerCreateBuilder) WorkingDir(dir string) *ContainerCreateBuilder {
	b.doc["WorkingDir"] = dir
	return b
}

// Hostname sets the container hostname.
func (b *ContainerCreateBuilder) Hostname(hostname string) *ContainerCreateBuilder {
	b.doc["Hostname"] = hostname
	return b
}

// User sets the user the container process runs as.
func (b *ContainerCreateBuilder) User(user string) *ContainerCreateBuilder {
	b.doc["User"] = user
	return b
}

// Tty allocates a pseudo-terminal.
func (b *ContainerCreateBuilder) Tty(t bool) *ContainerCreateBuilder {
	b.doc["Tty"] = t
	return b
}

// Labels sets the container labels.
func (b *ContainerCreateBuilder) Labels(labels map[string]string) *ContainerCreateBuilder {
	b.doc["Labels"] = labels
	return b
}

// FromConfig merges an already decoded config document, key by key, last
// write wins. Used when relaying a caller-supplied create body.
func (b *ContainerCreateBuilder) FromConfig(config map[string]any) *ContainerCreateBuilder {
	for k, v := range config {
		b.doc[k] = v
	}
	return b
}

// Build produces the immutable options value.
func (b *ContainerCreateBuilder) Build() *ContainerCreateOptions {
	return &ContainerCreateOptions{name: b.name, doc: b.doc.clone()}
}
