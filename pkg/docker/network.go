package docker

import (
	"bytes"
	"net/http"
	"net/url"
)

// Networks builds requests for the network family of endpoints.
//
// API reference: https://docs.docker.com/engine/api/v1.41/#tag/Network
type Networks struct {
	endpoint Endpoint
}

// List builds GET /networks.
func (n Networks) List(opts *NetworkListOptions) (*Request, error) {
	return newRequest(n.endpoint, http.MethodGet, withQuery("/networks", opts), nil)
}

// Create builds POST /networks/create with a JSON body.
func (n Networks) Create(opts *NetworkCreateOptions) (*Request, error) {
	doc, err := opts.SerializeBody()
	if err != nil {
		return nil, &RequestBuildError{Path: "/networks/create", Err: err}
	}
	return newRequest(n.endpoint, http.MethodPost, "/networks/create", JSONPayload(bytes.NewReader(doc)))
}

// Get returns the operations scoped to one network.
func (n Networks) Get(id string) Network {
	return Network{endpoint: n.endpoint, id: id}
}

// Network builds requests against a single network.
type Network struct {
	endpoint Endpoint
	id       string
}

// ID returns the network identifier this handle is scoped to.
func (n Network) ID() string { return n.id }

func (n Network) path(suffix string) string {
	return "/networks/" + url.PathEscape(n.id) + suffix
}

// Inspect builds GET /networks/{id}.
func (n Network) Inspect() (*Request, error) {
	return newRequest(n.endpoint, http.MethodGet, n.path(""), nil)
}

// Delete builds DELETE /networks/{id}.
func (n Network) Delete() (*Request, error) {
	return newRequest(n.endpoint, http.MethodDelete, n.path(""), nil)
}

// Connect builds POST /networks/{id}/connect, attaching a container.
func (n Network) Connect(opts *NetworkConnectOptions) (*Request, error) {
	doc, err := opts.SerializeBody()
	if err != nil {
		return nil, &RequestBuildError{Path: n.path("/connect"), Err: err}
	}
	return newRequest(n.endpoint, http.MethodPost, n.path("/connect"), JSONPayload(bytes.NewReader(doc)))
}

// Disconnect builds POST /networks/{id}/disconnect.
func (n Network) Disconnect(opts *NetworkConnectOptions) (*Request, error) {
	doc, err := opts.SerializeBody()
	if err != nil {
		return nil, &RequestBuildError{Path: n.path("/disconnect"), Err: err}
	}
	return newRequest(n.endpoint, http.MethodPost, n.path("/disconnect"), JSONPayload(bytes.NewReader(doc)))
}

// NetworkFilter narrows a network listing.
type NetworkFilter struct {
	kind  string
	value string
}

// NetworkFilterDangling matches networks not used by any container.
func NetworkFilterDangling() NetworkFilter { return NetworkFilter{"dangling", "true"} }

// NetworkFilterDriver matches on network driver.
func NetworkFilterDriver(driver string) NetworkFilter { return NetworkFilter{"driver", driver} }

// NetworkFilterID matches on network id.
func NetworkFilterID(id string) NetworkFilter { return NetworkFilter{"id", id} }

// NetworkFilterLabel matches networks carrying the label, as `name` or
// `name=value`.
func NetworkFilterLabel(label string) NetworkFilter { return NetworkFilter{"label", label} }

// NetworkFilterName matches on network name.
func NetworkFilterName(name string) NetworkFilter { return NetworkFilter{"name", name} }

// NetworkListOptions filters GET /networks.
type NetworkListOptions struct {
	params params
}

func (o *NetworkListOptions) Serialize() (query string, ok bool) {
	if o == nil {
		return "", false
	}
	return o.params.encode()
}

// NetworkListBuilder accumulates listing options.
type NetworkListBuilder struct {
	params  params
	filters filterSet
}

// NewNetworkListBuilder returns an empty builder.
func NewNetworkListBuilder() *NetworkListBuilder {
	return &NetworkListBuilder{params: params{}, filters: filterSet{}}
}

// Filter adds listing filters, accumulating values per kind across calls.
func (b *NetworkListBuilder) Filter(filters ...NetworkFilter) *NetworkListBuilder {
	for _, f := range filters {
		b.filters.add(f.kind, f.value)
	}
	b.params["filters"] = b.filters.encode()
	return b
}

// FilterSpec merges an already decoded filter document into the
// accumulated set. Used when relaying caller-supplied filters.
func (b *NetworkListBuilder) FilterSpec(spec map[string][]string) *NetworkListBuilder {
	b.filters.merge(spec)
	b.params["filters"] = b.filters.encode()
	return b
}

// Build produces the immutable options value.
func (b *NetworkListBuilder) Build() *NetworkListOptions {
	return &NetworkListOptions{params: b.params.clone()}
}

// NetworkCreateOptions is the JSON document for POST /networks/create.
type NetworkCreateOptions struct {
	doc body
}

// SerializeBody encodes the document as JSON.
func (o *NetworkCreateOptions) SerializeBody() ([]byte, error) {
	if o == nil || o.doc == nil {
		return []byte("{}"), nil
	}
	return o.doc.encode()
}

// NetworkCreateBuilder assembles a network create document.
type NetworkCreateBuilder struct {
	doc body
}

// NewNetworkCreateBuilder returns a builder for a network with the given
// name. Name is the one required field of the create document.
func NewNetworkCreateBuilder(name string) *NetworkCreateBuilder {
	return &NetworkCreateBuilder{doc: body{"Name": name}}
}

// Driver sets the network driver; the daemon default is "bridge".
func (b *NetworkCreateBuilder) Driver(driver string) *NetworkCreateBuilder {
	b.doc["Driver"] = driver
	return b
}

// Internal restricts external access to the network.
func (b *NetworkCreateBuilder) Internal(i bool) *NetworkCreateBuilder {
	b.doc["Internal"] = i
	return b
}

// Attachable allows manual container attachment.
func (b *NetworkCreateBuilder) Attachable(a bool) *NetworkCreateBuilder {
	b.doc["Attachable"] = a
	return b
}

// CheckDuplicate asks the daemon to reject duplicate network names.
func (b *NetworkCreateBuilder) CheckDuplicate(cd bool) *NetworkCreateBuilder {
	b.doc["CheckDuplicate"] = cd
	return b
}

// Labels sets the network labels.
func (b *NetworkCreateBuilder) Labels(labels map[string]string) *NetworkCreateBuilder {
	b.doc["Labels"] = labels
	return b
}

// FromConfig merges an already decoded create document, key by key, last
// write wins. Used when relaying a caller-supplied body.
func (b *NetworkCreateBuilder) FromConfig(config map[string]any) *NetworkCreateBuilder {
	for k, v := range config {
		b.doc[k] = v
	}
	return b
}

// Build produces the immutable options value.
func (b *NetworkCreateBuilder) Build() *NetworkCreateOptions {
	return &NetworkCreateOptions{doc: b.doc.clone()}
}

// NetworkConnectOptions is the JSON document for the connect and
// disconnect operations.
type NetworkConnectOptions struct {
	doc body
}

// SerializeBody encodes the document as JSON.
func (o *NetworkConnectOptions) SerializeBody() ([]byte, error) {
	if o == nil || o.doc == nil {
		return []byte("{}"), nil
	}
	return o.doc.encode()
}

// NetworkConnectBuilder assembles a connect/disconnect document for the
// given container.
type NetworkConnectBuilder struct {
	doc body
}

// NewNetworkConnectBuilder returns a builder naming the container to
// attach or detach.
func NewNetworkConnectBuilder(containerID string) *NetworkConnectBuilder {
	return &NetworkConnectBuilder{doc: body{"Container": containerID}}
}

// Force applies to disconnect only, detaching even a running container.
func (b *NetworkConnectBuilder) Force(f bool) *NetworkConnectBuilder {
	b.doc["Force"] = f
	return b
}

// FromConfig merges an already decoded document, key by key, last write
// wins. Used when relaying a caller-supplied body.
func (b *NetworkConnectBuilder) FromConfig(config map[string]any) *NetworkConnectBuilder {
	for k, v := range config {
		b.doc[k] = v
	}
	return b
}

// Build produces the immutable options value.
func (b *NetworkConnectBuilder) Build() *NetworkConnectOptions {
	return &NetworkConnectOptions{doc: b.doc.clone()}
}
