// Package docker constructs Docker Engine API v1.41 requests without
// executing them. Every operation returns a *Request descriptor that a
// transport collaborator sends; construction itself is pure and never
// performs network I/O.
//
// API reference: https://docs.docker.com/engine/api/v1.41/
package docker

import (
	"net/http"
	"strconv"
)

// Client is the entrypoint for building requests against one daemon. It is
// a small value type: construct one per resolved endpoint and discard it
// after use.
type Client struct {
	endpoint Endpoint
}

// NewClient returns a client bound to the given daemon endpoint.
func NewClient(endpoint Endpoint) Client {
	return Client{endpoint: endpoint}
}

// Endpoint returns the daemon endpoint this client builds requests for.
func (c Client) Endpoint() Endpoint { return c.endpoint }

// Images exposes the image operations.
func (c Client) Images() Images { return Images{endpoint: c.endpoint} }

// Containers exposes the container operations.
func (c Client) Containers() Containers { return Containers{endpoint: c.endpoint} }

// Volumes exposes the volume operations.
func (c Client) Volumes() Volumes { return Volumes{endpoint: c.endpoint} }

// Networks exposes the network operations.
func (c Client) Networks() Networks { return Networks{endpoint: c.endpoint} }

// Services exposes the swarm service operations.
func (c Client) Services() Services { return Services{endpoint: c.endpoint} }

// Version builds a request for the daemon version.
func (c Client) Version() (*Request, error) {
	return newRequest(c.endpoint, http.MethodGet, "/version", nil)
}

// Info builds a request for daemon-wide information.
func (c Client) Info() (*Request, error) {
	return newRequest(c.endpoint, http.MethodGet, "/info", nil)
}

// Ping builds a liveness probe request.
func (c Client) Ping() (*Request, error) {
	return newRequest(c.endpoint, http.MethodGet, "/_ping", nil)
}

// Events builds a request for the daemon event stream.
func (c Client) Events(opts *EventsOptions) (*Request, error) {
	return newRequest(c.endpoint, http.MethodGet, withQuery("/events", opts), nil)
}

// EventsOptions filters the daemon event stream.
type EventsOptions struct {
	params params
}

// Serialize renders the options as a query string; ok is false when no
// option was set.
func (o *EventsOptions) Serialize() (query string, ok bool) {
	if o == nil {
		return "", false
	}
	return o.params.encode()
}

// EventFilter selects events by one attribute. Combine several filters of
// the same kind to match any of the values.
type EventFilter struct {
	kind  string
	value string
}

func EventFilterContainer(name string) EventFilter { return EventFilter{"container", name} }
func EventFilterEvent(action string) EventFilter   { return EventFilter{"event", action} }
func EventFilterImage(name string) EventFilter     { return EventFilter{"image", name} }
func EventFilterLabel(label string) EventFilter    { return EventFilter{"label", label} }
func EventFilterVolume(name string) EventFilter    { return EventFilter{"volume", name} }
func EventFilterNetwork(name string) EventFilter   { return EventFilter{"network", name} }
func EventFilterDaemon(name string) EventFilter    { return EventFilter{"daemon", name} }

// EventType is the object kind an event filter can match on.
type EventType string

const (
	EventTypeContainer EventType = "container"
	EventTypeImage     EventType = "image"
	EventTypeVolume    EventType = "volume"
	EventTypeNetwork   EventType = "network"
	EventTypeDaemon    EventType = "daemon"
)

func EventFilterType(t EventType) EventFilter { return EventFilter{"type", string(t)} }

// EventsBuilder accumulates event stream options. Builders are single
// owner values; do not share one across goroutines.
type EventsBuilder struct {
	params  params
	filters filterSet
}

// NewEventsBuilder returns an empty builder.
func NewEventsBuilder() *EventsBuilder {
	return &EventsBuilder{params: params{}, filters: filterSet{}}
}

// Since only reports events created after the given unix timestamp.
func (b *EventsBuilder) Since(ts int64) *EventsBuilder {
	b.params["since"] = strconv.FormatInt(ts, 10)
	return b
}

// Until only reports events created before the given unix timestamp.
func (b *EventsBuilder) Until(ts int64) *EventsBuilder {
	b.params["until"] = strconv.FormatInt(ts, 10)
	return b
}

// Filter adds event filters. Values accumulate across calls; every call
// rewrites the serialized `filters` parameter with the union seen so far.
func (b *EventsBuilder) Filter(filters ...EventFilter) *EventsBuilder {
	for _, f := range filters {
		b.filters.add(f.kind, f.value)
	}
	b.params["filters"] = b.filters.encode()
	return b
}

// FilterSpec merges an already decoded filter document into the
// accumulated set. Used when relaying caller-supplied filters.
func (b *EventsBuilder) FilterSpec(spec map[string][]string) *EventsBuilder {
	b.filters.merge(spec)
	b.params["filters"] = b.filters.encode()
	return b
}

// Build produces the immutable options value.
func (b *EventsBuilder) Build() *EventsOptions {
	return &EventsOptions{params: b.params.clone()}
}
