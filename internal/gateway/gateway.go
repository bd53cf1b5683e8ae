package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"github.com/dockpool/dockpool/internal/telemetry"
	"github.com/dockpool/dockpool/pkg/docker"
)

// Gateway translates inbound tenant-addressed requests into Engine API
// calls against the tenant's daemon and relays the responses back
// verbatim. It holds no per-request state; one instance serves all
// tenants concurrently.
type Gateway struct {
	resolver  Resolver
	transport Transport
	store     *telemetry.Store
}

// New assembles a gateway. store may be nil to disable request auditing.
func New(resolver Resolver, transport Transport, store *telemetry.Store) *Gateway {
	return &Gateway{resolver: resolver, transport: transport, store: store}
}

// buildFunc constructs the outbound request for one operation once the
// tenant's client is known.
type buildFunc func(client docker.Client) (*docker.Request, error)

// forward runs the full pipeline for one inbound request: resolve the
// tenant, build the outbound request, send it, relay the response.
// Resolution misses are terminal 404s with no outbound call; build
// failures are the caller's fault (400); transport failures become 502.
// Whatever the daemon answers, including errors, is relayed as is.
func (g *Gateway) forward(c echo.Context, build buildFunc) error {
	ctx := c.Request().Context()
	tenant := c.Param("daemon")
	started := time.Now()

	endpoint, err := g.resolver.Resolve(ctx, tenant)
	if err != nil {
		if errors.Is(err, ErrTenantNotFound) {
			return c.String(http.StatusNotFound, "unknown daemon: "+tenant)
		}
		log.Error("Tenant resolution failed", "tenant", tenant, "err", err)
		return c.String(http.StatusInternalServerError, "resolver failure")
	}

	req, err := build(docker.NewClient(endpoint))
	if err != nil {
		var buildErr *docker.RequestBuildError
		if errors.As(err, &buildErr) {
			log.Debug("Rejecting unbuildable request", "tenant", tenant, "path", buildErr.Path, "err", err)
			return c.String(http.StatusBadRequest, err.Error())
		}
		log.Error("Request construction failed", "tenant", tenant, "err", err)
		return c.String(http.StatusInternalServerError, "request construction failure")
	}

	resp, err := g.transport.Do(ctx, req)
	if err != nil {
		log.Error("Daemon exchange failed", "tenant", tenant, "endpoint", endpoint.String(), "err", err)
		return c.String(http.StatusBadGateway, "daemon unreachable")
	}
	defer resp.Body.Close()

	g.audit(c, tenant, req, resp.StatusCode, time.Since(started))
	return relay(c, resp)
}

// relay copies the daemon's status, headers and body through unchanged.
// The body is streamed, not buffered, so logs -f and events work.
func relay(c echo.Context, resp *http.Response) error {
	header := c.Response().Header()
	for name, values := range resp.Header {
		header[name] = values
	}
	c.Response().WriteHeader(resp.StatusCode)
	if _, err := io.Copy(c.Response(), resp.Body); err != nil {
		// The daemon's status line already went out; all that is left
		// is noting the broken stream.
		log.Debug("Response relay interrupted", "err", err)
	}
	return nil
}

// audit records the forwarded request. Telemetry is advisory and never
// fails the exchange it describes.
func (g *Gateway) audit(c echo.Context, tenant string, req *docker.Request, status int, elapsed time.Duration) {
	if g.store == nil {
		return
	}
	entry := telemetry.ForwardEntry{
		Tenant:   tenant,
		Method:   req.Method,
		Path:     req.URL.Path,
		Status:   status,
		Duration: elapsed,
		RemoteIP: c.RealIP(),
	}
	if err := g.store.RecordForward(c.Request().Context(), entry); err != nil {
		log.Warn("Telemetry insert failed", "tenant", tenant, "err", err)
	}
}

// queryBool reads a boolean query parameter, treating an absent or
// unparseable value as false, the way the Engine does.
func queryBool(c echo.Context, name string) bool {
	v, err := strconv.ParseBool(c.QueryParam(name))
	return err == nil && v
}

// queryInt64 reads an integer query parameter; ok is false when the
// parameter is absent or malformed.
func queryInt64(c echo.Context, name string) (int64, bool) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// queryFilters decodes the Engine's filters parameter, a JSON map of
// filter kind to values. An absent parameter yields nil; a malformed
// one is an error so the caller can answer 400 instead of silently
// dropping the filter.
func queryFilters(c echo.Context) (map[string][]string, error) {
	raw := c.QueryParam("filters")
	if raw == "" {
		return nil, nil
	}
	var spec map[string][]string
	if err := json.Unmarshal([]byte(raw), &spec); err != nil {
		return nil, err
	}
	return spec, nil
}

// bodyDocument decodes a JSON request body into a generic document for
// the FromConfig relaying hooks. An empty body yields an empty document.
func bodyDocument(c echo.Context) (map[string]any, error) {
	doc := map[string]any{}
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// inboundAuth lifts a relayed X-Registry-Auth header off the inbound
// request. The value is opaque to the gateway and is never logged. Nil
// when the header is absent.
func inboundAuth(c echo.Context) *docker.RegistryAuth {
	v := c.Request().Header.Get(docker.HeaderRegistryAuth)
	if v == "" {
		return nil
	}
	return docker.RegistryAuthEncoded(v)
}

// badFilters is the shared 400 for an unparseable filters parameter.
func badFilters(c echo.Context, err error) error {
	return c.String(http.StatusBadRequest, "invalid filters parameter: "+err.Error())
}

// badBody is the shared 400 for an unreadable or non-JSON request body.
func badBody(c echo.Context, err error) error {
	return c.String(http.StatusBadRequest, "invalid request body: "+err.Error())
}
