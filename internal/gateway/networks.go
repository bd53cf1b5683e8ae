package gateway

import (
	"github.com/labstack/echo/v4"

	"github.com/dockpool/dockpool/pkg/docker"
)

// NetworkList relays GET /networks.
func (g *Gateway) NetworkList(c echo.Context) error {
	spec, err := queryFilters(c)
	if err != nil {
		return badFilters(c, err)
	}

	b := docker.NewNetworkListBuilder()
	if spec != nil {
		b.FilterSpec(spec)
	}
	opts := b.Build()

	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Networks().List(opts)
	})
}

// NetworkCreate relays POST /networks to POST /networks/create with the
// caller's JSON document carried through.
func (g *Gateway) NetworkCreate(c echo.Context) error {
	config, err := bodyDocument(c)
	if err != nil {
		return badBody(c, err)
	}
	name, _ := config["Name"].(string)
	opts := docker.NewNetworkCreateBuilder(name).FromConfig(config).Build()

	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Networks().Create(opts)
	})
}

// NetworkInspect relays GET /networks/:id.
func (g *Gateway) NetworkInspect(c echo.Context) error {
	id := c.Param("id")
	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Networks().Get(id).Inspect()
	})
}

// NetworkRemove relays DELETE /networks/:id.
func (g *Gateway) NetworkRemove(c echo.Context) error {
	id := c.Param("id")
	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Networks().Get(id).Delete()
	})
}

// NetworkConnect relays POST /networks/:id/connect.
func (g *Gateway) NetworkConnect(c echo.Context) error {
	id := c.Param("id")
	opts, err := connectDocument(c)
	if err != nil {
		return badBody(c, err)
	}
	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Networks().Get(id).Connect(opts)
	})
}

// NetworkDisconnect relays POST /networks/:id/disconnect.
func (g *Gateway) NetworkDisconnect(c echo.Context) error {
	id := c.Param("id")
	opts, err := connectDocument(c)
	if err != nil {
		return badBody(c, err)
	}
	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Networks().Get(id).Disconnect(opts)
	})
}

// connectDocument rebuilds the connect/disconnect body from the inbound
// request.
func connectDocument(c echo.Context) (*docker.NetworkConnectOptions, error) {
	config, err := bodyDocument(c)
	if err != nil {
		return nil, err
	}
	containerID, _ := config["Container"].(string)
	return docker.NewNetworkConnectBuilder(containerID).FromConfig(config).Build(), nil
}
