package docker

import (
	"bytes"
	"net/http"
	"net/url"
)

// Volumes builds requests for the volume family of endpoints.
//
// API reference: https://docs.docker.com/engine/api/v1.41/#tag/Volume
type Volumes struct {
	endpoint Endpoint
}

// List builds GET /volumes.
func (v Volumes) List() (*Request, error) {
	return newRequest(v.endpoint, http.MethodGet, "/volumes", nil)
}

// Create builds POST /volumes/create with a JSON body. Volume creation is
// body-encoded, not query-encoded.
func (v Volumes) Create(opts *VolumeCreateOptions) (*Request, error) {
	doc, err := opts.SerializeBody()
	if err != nil {
		return nil, &RequestBuildError{Path: "/volumes/create", Err: err}
	}
	return newRequest(v.endpoint, http.MethodPost, "/volumes/create", JSONPayload(bytes.NewReader(doc)))
}

// Prune builds POST /volumes/prune, removing unused volumes.
func (v Volumes) Prune() (*Request, error) {
	return newRequest(v.endpoint, http.MethodPost, "/volumes/prune", nil)
}

// Get returns the operations scoped to one named volume.
func (v Volumes) Get(name string) Volume {
	return Volume{endpoint: v.endpoint, name: name}
}

// Volume builds requests against a single named volume.
type Volume struct {
	endpoint Endpoint
	name     string
}

// Name returns the volume name this handle is scoped to.
func (v Volume) Name() string { return v.name }

func (v Volume) path() string {
	return "/volumes/" + url.PathEscape(v.name)
}

// Inspect builds GET /volumes/{name}.
func (v Volume) Inspect() (*Request, error) {
	return newRequest(v.endpoint, http.MethodGet, v.path(), nil)
}

// Delete builds DELETE /volumes/{name}.
func (v Volume) Delete() (*Request, error) {
	return newRequest(v.endpoint, http.MethodDelete, v.path(), nil)
}

// VolumeCreateOptions is the JSON document for POST /volumes/create. Keys
// follow the Engine's PascalCase body convention.
type VolumeCreateOptions struct {
	doc body
}

// SerializeBody encodes the document as JSON. An empty document
// serializes to {} and the daemon picks a name and defaults.
func (o *VolumeCreateOptions) SerializeBody() ([]byte, error) {
	if o == nil || o.doc == nil {
		return []byte("{}"), nil
	}
	return o.doc.encode()
}

// VolumeCreateBuilder assembles a volume create document.
type VolumeCreateBuilder struct {
	doc body
}

// NewVolumeCreateBuilder returns an empty builder.
func NewVolumeCreateBuilder() *VolumeCreateBuilder {
	return &VolumeCreateBuilder{doc: body{}}
}

// Name sets the volume name.
func (b *VolumeCreateBuilder) Name(name string) *VolumeCreateBuilder {
	b.doc["Name"] = name
	return b
}

// Driver sets the volume driver; the daemon default is "local".
func (b *VolumeCreateBuilder) Driver(driver string) *VolumeCreateBuilder {
	b.doc["Driver"] = driver
	return b
}

// DriverOpts passes driver-specific options.
func (b *VolumeCreateBuilder) DriverOpts(opts map[string]string) *VolumeCreateBuilder {
	b.doc["DriverOpts"] = opts
	return b
}

// Labels sets the volume labels.
func (b *VolumeCreateBuilder) Labels(labels map[string]string) *VolumeCreateBuilder {
	b.doc["Labels"] = labels
	return b
}

// FromConfig merges an already decoded create document, key by key, last
// write wins. Used when relaying a caller-supplied body.
func (b *VolumeCreateBuilder) FromConfig(config map[string]any) *VolumeCreateBuilder {
	for k, v := range config {
		b.doc[k] = v
	}
	return b
}

// Build produces the immutable options value.
func (b *VolumeCreateBuilder) Build() *VolumeCreateOptions {
	return &VolumeCreateOptions{doc: b.doc.clone()}
}
