package docker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Content types used by the Engine API.
const (
	ContentTypeJSON = "application/json"
	ContentTypeTar  = "application/tar"
)

// Endpoint is the resolved address of one Docker daemon. It is immutable
// once parsed and safe to copy.
type Endpoint struct {
	base       *url.URL
	socketPath string
}

// ParseEndpoint parses a daemon address. Accepted forms are
// tcp://host:port, http://host:port, https://host:port and
// unix:///path/to/docker.sock. The tcp scheme is normalized to http for
// URL construction; unix endpoints build their URLs against a placeholder
// host and record the socket path for the transport to dial.
func ParseEndpoint(raw string) (Endpoint, error) {
	if path, ok := strings.CutPrefix(raw, "unix://"); ok {
		if path == "" {
			return Endpoint{}, fmt.Errorf("unix endpoint %q has no socket path", raw)
		}
		// The host part of the URL is ignored when dialing a unix socket,
		// but the Engine requires a non-empty Host header.
		base, err := url.Parse("http://localhost")
		if err != nil {
			return Endpoint{}, err
		}
		return Endpoint{base: base, socketPath: path}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Endpoint{}, fmt.Errorf("invalid daemon endpoint %q: %w", raw, err)
	}
	switch u.Scheme {
	case "tcp":
		u.Scheme = "http"
	case "http", "https":
	default:
		return Endpoint{}, fmt.Errorf("unsupported endpoint scheme %q in %q", u.Scheme, raw)
	}
	if u.Host == "" {
		return Endpoint{}, fmt.Errorf("daemon endpoint %q has no host", raw)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	return Endpoint{base: u}, nil
}

// URL returns a copy of the base URL requests are built against.
func (e Endpoint) URL() *url.URL {
	u := *e.base
	return &u
}

// SocketPath returns the unix socket path, or "" for tcp endpoints.
func (e Endpoint) SocketPath() string { return e.socketPath }

// IsZero reports whether the endpoint was never resolved.
func (e Endpoint) IsZero() bool { return e.base == nil }

func (e Endpoint) String() string {
	if e.socketPath != "" {
		return "unix://" + e.socketPath
	}
	return e.base.String()
}

// Payload is a request body with its declared content type.
type Payload struct {
	Reader      io.Reader
	ContentType string
}

// JSONPayload wraps an already encoded JSON document.
func JSONPayload(r io.Reader) *Payload {
	return &Payload{Reader: r, ContentType: ContentTypeJSON}
}

// TarPayload wraps a tar archive stream.
func TarPayload(r io.Reader) *Payload {
	return &Payload{Reader: r, ContentType: ContentTypeTar}
}

// Header is one extra request header.
type Header struct {
	Name  string
	Value string
}

// Request is a fully assembled, not yet sent Engine API request. It is
// created fresh per operation, never reused, and owned by the caller until
// handed to a transport.
type Request struct {
	Method   string
	URL      *url.URL
	Header   http.Header
	Body     io.Reader
	Endpoint Endpoint
}

// HTTPRequest converts the descriptor into a *http.Request bound to ctx,
// carrying the method, URL, headers and body over unchanged.
func (r *Request) HTTPRequest(ctx context.Context) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL.String(), r.Body)
	if err != nil {
		return nil, &RequestBuildError{Path: r.URL.Path, Err: err}
	}
	for name, values := range r.Header {
		req.Header[name] = values
	}
	return req, nil
}

// RequestBuildError indicates the request could not be assembled, which
// points at a malformed path or option set on the caller side. It is
// always detected before any network activity.
type RequestBuildError struct {
	Path string
	Err  error
}

func (e *RequestBuildError) Error() string {
	return fmt.Sprintf("build request for %q: %v", e.Path, e.Err)
}

func (e *RequestBuildError) Unwrap() error { return e.Err }

// newRequest assembles a request descriptor. The method is used exactly as
// given. The relative path (which may carry a query string) is joined to
// the endpoint base; a path that cannot be joined fails with a
// RequestBuildError. The content type header is set only when a body is
// present. Caller headers are copied verbatim, last write wins.
func newRequest(endpoint Endpoint, method, path string, body *Payload, headers ...Header) (*Request, error) {
	u, err := endpoint.base.Parse(path)
	if err != nil {
		return nil, &RequestBuildError{Path: path, Err: err}
	}

	req := &Request{
		Method:   method,
		URL:      u,
		Header:   make(http.Header),
		Endpoint: endpoint,
	}
	for _, h := range headers {
		req.Header.Set(h.Name, h.Value)
	}
	if body != nil {
		req.Body = body.Reader
		req.Header.Set("Content-Type", body.ContentType)
	}
	return req, nil
}

// queryOptions is implemented by every query-encoded option set.
type queryOptions interface {
	Serialize() (query string, ok bool)
}

// withQuery appends the serialized options to a path, leaving the path
// untouched when no parameter was set.
func withQuery(path string, opts queryOptions) string {
	if opts == nil {
		return path
	}
	if q, ok := opts.Serialize(); ok {
		return path + "?" + q
	}
	return path
}
