package gateway

import (
	"github.com/labstack/echo/v4"

	"github.com/dockpool/dockpool/pkg/docker"
)

// ServiceList relays GET /services.
func (g *Gateway) ServiceList(c echo.Context) error {
	spec, err := queryFilters(c)
	if err != nil {
		return badFilters(c, err)
	}

	b := docker.NewServiceListBuilder()
	if spec != nil {
		b.FilterSpec(spec)
	}
	opts := b.Build()

	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Services().List(opts)
	})
}

// ServiceCreate relays POST /services to POST /services/create with the
// caller's spec and credentials carried through.
func (g *Gateway) ServiceCreate(c echo.Context) error {
	spec, err := bodyDocument(c)
	if err != nil {
		return badBody(c, err)
	}

	b := docker.NewServiceCreateBuilder().FromSpec(spec)
	if auth := inboundAuth(c); auth != nil {
		b.Auth(auth)
	}
	opts := b.Build()

	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Services().Create(opts)
	})
}

// ServiceInspect relays GET /services/:id.
func (g *Gateway) ServiceInspect(c echo.Context) error {
	id := c.Param("id")
	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Services().Get(id).Inspect()
	})
}

// ServiceRemove relays DELETE /services/:id.
func (g *Gateway) ServiceRemove(c echo.Context) error {
	id := c.Param("id")
	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Services().Get(id).Delete()
	})
}

// ServiceLogs relays GET /services/:id/logs. Service logs take the same
// selection parameters as container logs.
func (g *Gateway) ServiceLogs(c echo.Context) error {
	id := c.Param("id")
	b := docker.NewLogsBuilder()
	if queryBool(c, "follow") {
		b.Follow(true)
	}
	if queryBool(c, "stdout") {
		b.Stdout(true)
	}
	if queryBool(c, "stderr") {
		b.Stderr(true)
	}
	if since, ok := queryInt64(c, "since"); ok {
		b.Since(since)
	}
	if until, ok := queryInt64(c, "until"); ok {
		b.Until(until)
	}
	if queryBool(c, "timestamps") {
		b.Timestamps(true)
	}
	if tail := c.QueryParam("tail"); tail != "" {
		b.Tail(tail)
	}
	opts := b.Build()

	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Services().Get(id).Logs(opts)
	})
}
