package docker

import (
	"bytes"
	"net/http"
	"net/url"
)

// Services builds requests for the swarm service family of endpoints.
//
// API reference: https://docs.docker.com/engine/api/v1.41/#tag/Service
type Services struct {
	endpoint Endpoint
}

// List builds GET /services.
func (s Services) List(opts *ServiceListOptions) (*Request, error) {
	return newRequest(s.endpoint, http.MethodGet, withQuery("/services", opts), nil)
}

// Create builds POST /services/create with a JSON service spec.
// Credentials on the options travel in the X-Registry-Auth header so the
// daemon can pull the service image.
func (s Services) Create(opts *ServiceCreateOptions) (*Request, error) {
	doc, err := opts.SerializeBody()
	if err != nil {
		return nil, &RequestBuildError{Path: "/services/create", Err: err}
	}
	var headers []Header
	if opts != nil && opts.auth != nil {
		encoded, err := opts.auth.Encode()
		if err != nil {
			return nil, &RequestBuildError{Path: "/services/create", Err: err}
		}
		headers = append(headers, Header{Name: HeaderRegistryAuth, Value: encoded})
	}
	return newRequest(s.endpoint, http.MethodPost, "/services/create", JSONPayload(bytes.NewReader(doc)), headers...)
}

// Get returns the operations scoped to one service.
func (s Services) Get(id string) Service {
	return Service{endpoint: s.endpoint, id: id}
}

// Service builds requests against a single swarm service.
type Service struct {
	endpoint Endpoint
	id       string
}

// ID returns the service identifier this handle is scoped to.
func (s Service) ID() string { return s.id }

func (s Service) path(suffix string) string {
	return "/services/" + url.PathEscape(s.id) + suffix
}

// Inspect builds GET /services/{id}.
func (s Service) Inspect() (*Request, error) {
	return newRequest(s.endpoint, http.MethodGet, s.path(""), nil)
}

// Delete builds DELETE /services/{id}.
func (s Service) Delete() (*Request, error) {
	return newRequest(s.endpoint, http.MethodDelete, s.path(""), nil)
}

// Logs builds GET /services/{id}/logs, which accepts the same options as
// container logs.
func (s Service) Logs(opts *LogsOptions) (*Request, error) {
	return newRequest(s.endpoint, http.MethodGet, withQuery(s.path("/logs"), opts), nil)
}

// ServiceFilter narrows a service listing.
type ServiceFilter struct {
	kind  string
	value string
}

// ServiceFilterID matches on service id.
func ServiceFilterID(id string) ServiceFilter { return ServiceFilter{"id", id} }

// ServiceFilterLabel matches services carrying the label.
func ServiceFilterLabel(label string) ServiceFilter { return ServiceFilter{"label", label} }

// ServiceFilterMode matches on service mode: replicated or global.
func ServiceFilterMode(mode string) ServiceFilter { return ServiceFilter{"mode", mode} }

// ServiceFilterName matches on service name.
func ServiceFilterName(name string) ServiceFilter { return ServiceFilter{"name", name} }

// ServiceListOptions filters GET /services.
type ServiceListOptions struct {
	params params
}

func (o *ServiceListOptions) Serialize() (query string, ok bool) {
	if o == nil {
		return "", false
	}
	return o.params.encode()
}

// ServiceListBuilder accumulates listing options.
type ServiceListBuilder struct {
	params  params
	filters filterSet
}

// NewServiceListBuilder returns an empty builder.
func NewServiceListBuilder() *ServiceListBuilder {
	return &ServiceListBuilder{params: params{}, filters: filterSet{}}
}

// Filter adds listing filters, accumulating values per kind across calls.
func (b *ServiceListBuilder) Filter(filters ...ServiceFilter) *ServiceListBuilder {
	for _, f := range filters {
		b.filters.add(f.kind, f.value)
	}
	b.params["filters"] = b.filters.encode()
	return b
}

// FilterSpec merges an already decoded filter document into the
// accumulated set. Used when relaying caller-supplied filters.
func (b *ServiceListBuilder) FilterSpec(spec map[string][]string) *ServiceListBuilder {
	b.filters.merge(spec)
	b.params["filters"] = b.filters.encode()
	return b
}

// Build produces the immutable options value.
func (b *ServiceListBuilder) Build() *ServiceListOptions {
	return &ServiceListOptions{params: b.params.clone()}
}

// ServiceCreateOptions is the JSON service spec for POST /services/create
// plus optional registry credentials.
type ServiceCreateOptions struct {
	auth *RegistryAuth
	doc  body
}

// SerializeBody encodes the service spec as JSON.
func (o *ServiceCreateOptions) SerializeBody() ([]byte, error) {
	if o == nil || o.doc == nil {
		return []byte("{}"), nil
	}
	return o.doc.encode()
}

// ServiceCreateBuilder assembles a service spec.
type ServiceCreateBuilder struct {
	auth *RegistryAuth
	doc  body
}

// NewServiceCreateBuilder returns an empty builder.
func NewServiceCreateBuilder() *ServiceCreateBuilder {
	return &ServiceCreateBuilder{doc: body{}}
}

// Name sets the service name.
func (b *ServiceCreateBuilder) Name(name string) *ServiceCreateBuilder {
	b.doc["Name"] = name
	return b
}

// Image sets the container image in the task template.
func (b *ServiceCreateBuilder) Image(image string) *ServiceCreateBuilder {
	b.doc["TaskTemplate"] = body{"ContainerSpec": body{"Image": image}}
	return b
}

// Replicas sets replicated mode with the given replica count.
func (b *ServiceCreateBuilder) Replicas(n uint64) *ServiceCreateBuilder {
	b.doc["Mode"] = body{"Replicated": body{"Replicas": n}}
	return b
}

// Labels sets the service labels.
func (b *ServiceCreateBuilder) Labels(labels map[string]string) *ServiceCreateBuilder {
	b.doc["Labels"] = labels
	return b
}

// FromSpec merges an already decoded service spec, key by key, last write
// wins. Used when relaying a caller-supplied spec.
func (b *ServiceCreateBuilder) FromSpec(spec map[string]any) *ServiceCreateBuilder {
	for k, v := range spec {
		b.doc[k] = v
	}
	return b
}

// Auth attaches registry credentials, sent via X-Registry-Auth.
func (b *ServiceCreateBuilder) Auth(auth *RegistryAuth) *ServiceCreateBuilder {
	b.auth = auth
	return b
}

// Build produces the immutable options value.
func (b *ServiceCreateBuilder) Build() *ServiceCreateOptions {
	return &ServiceCreateOptions{auth: b.auth, doc: b.doc.clone()}
}
