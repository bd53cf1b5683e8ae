package gateway

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/docker/go-connections/sockets"

	"github.com/dockpool/dockpool/pkg/docker"
)

// Transport sends an assembled request to its daemon and returns the raw
// response. The response is relayed to the caller untouched, so the body
// is left open.
type Transport interface {
	Do(ctx context.Context, req *docker.Request) (*http.Response, error)
}

// TransportError reports that the daemon could not be reached or the
// exchange broke mid-flight. The daemon never saw, or never finished,
// the request.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("daemon %s unreachable: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPTransport executes requests with net/http. TCP daemons share one
// client; unix-socket daemons each get a client whose dialer is bound to
// the socket path via go-connections. Clients carry no per-request state
// and are safe to share.
type HTTPTransport struct {
	tcp *http.Client

	mu   sync.Mutex
	unix map[string]*http.Client
}

// NewHTTPTransport returns a transport with no request timeout of its
// own. Deadlines come from the inbound request context, which also
// covers long-lived streams like events and logs.
func NewHTTPTransport() *HTTPTransport {
	return &HTTPTransport{
		tcp:  &http.Client{},
		unix: make(map[string]*http.Client),
	}
}

func (t *HTTPTransport) client(ep docker.Endpoint) (*http.Client, error) {
	socketPath := ep.SocketPath()
	if socketPath == "" {
		return t.tcp, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if c, ok := t.unix[socketPath]; ok {
		return c, nil
	}
	tr := &http.Transport{}
	if err := sockets.ConfigureTransport(tr, "unix", socketPath); err != nil {
		return nil, err
	}
	c := &http.Client{Transport: tr}
	t.unix[socketPath] = c
	return c, nil
}

// Do forwards the request exactly as built. No retries: a failed
// exchange is reported once and the caller decides what to tell its
// client.
func (t *HTTPTransport) Do(ctx context.Context, req *docker.Request) (*http.Response, error) {
	client, err := t.client(req.Endpoint)
	if err != nil {
		return nil, &TransportError{Endpoint: req.Endpoint.String(), Err: err}
	}

	httpReq, err := req.HTTPRequest(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Endpoint: req.Endpoint.String(), Err: err}
	}
	return resp, nil
}
