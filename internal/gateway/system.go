package gateway

import (
	"github.com/labstack/echo/v4"

	"github.com/dockpool/dockpool/pkg/docker"
)

// Version relays GET /version.
func (g *Gateway) Version(c echo.Context) error {
	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Version()
	})
}

// Info relays GET /info.
func (g *Gateway) Info(c echo.Context) error {
	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Info()
	})
}

// Ping relays GET /_ping.
func (g *Gateway) Ping(c echo.Context) error {
	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Ping()
	})
}

// Events relays GET /events. The response is an unbounded stream; it
// runs until the daemon closes it or the inbound client goes away.
func (g *Gateway) Events(c echo.Context) error {
	spec, err := queryFilters(c)
	if err != nil {
		return badFilters(c, err)
	}

	b := docker.NewEventsBuilder()
	if since, ok := queryInt64(c, "since"); ok {
		b.Since(since)
	}
	if until, ok := queryInt64(c, "until"); ok {
		b.Until(until)
	}
	if spec != nil {
		b.FilterSpec(spec)
	}
	opts := b.Build()

	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Events(opts)
	})
}
