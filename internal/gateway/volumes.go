package gateway

import (
	"github.com/labstack/echo/v4"

	"github.com/dockpool/dockpool/pkg/docker"
)

// VolumeList relays GET /volumes.
func (g *Gateway) VolumeList(c echo.Context) error {
	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Volumes().List()
	})
}

// VolumeCreate relays POST /volumes to POST /volumes/create with the
// caller's JSON document carried through.
func (g *Gateway) VolumeCreate(c echo.Context) error {
	config, err := bodyDocument(c)
	if err != nil {
		return badBody(c, err)
	}
	opts := docker.NewVolumeCreateBuilder().FromConfig(config).Build()

	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Volumes().Create(opts)
	})
}

// VolumePrune relays POST /volumes/prune.
func (g *Gateway) VolumePrune(c echo.Context) error {
	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Volumes().Prune()
	})
}

// VolumeInspect relays GET /volumes/:name.
func (g *Gateway) VolumeInspect(c echo.Context) error {
	name := c.Param("name")
	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Volumes().Get(name).Inspect()
	})
}

// VolumeRemove relays DELETE /volumes/:name.
func (g *Gateway) VolumeRemove(c echo.Context) error {
	name := c.Param("name")
	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Volumes().Get(name).Delete()
	})
}
