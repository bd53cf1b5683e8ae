package gateway

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dockpool/dockpool/pkg/docker"
)

// ContainerList relays GET /containers to GET /containers/json.
func (g *Gateway) ContainerList(c echo.Context) error {
	spec, err := queryFilters(c)
	if err != nil {
		return badFilters(c, err)
	}

	b := docker.NewContainerListBuilder()
	if queryBool(c, "all") {
		b.All()
	}
	if limit, ok := queryInt64(c, "limit"); ok {
		b.Limit(int(limit))
	}
	if since := c.QueryParam("since"); since != "" {
		b.Since(since)
	}
	if before := c.QueryParam("before"); before != "" {
		b.Before(before)
	}
	if queryBool(c, "size") {
		b.Sized(true)
	}
	if spec != nil {
		b.FilterSpec(spec)
	}
	opts := b.Build()

	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Containers().List(opts)
	})
}

// ContainerCreate relays POST /containers to POST /containers/create.
// The caller's JSON config travels through unchanged; the optional name
// query parameter is carried over.
func (g *Gateway) ContainerCreate(c echo.Context) error {
	config, err := bodyDocument(c)
	if err != nil {
		return badBody(c, err)
	}

	b := docker.NewContainerCreateBuilder().FromConfig(config)
	if name := c.QueryParam("name"); name != "" {
		b.Name(name)
	}
	opts := b.Build()

	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Containers().Create(opts)
	})
}

// ContainerInspect relays GET /containers/:id.
func (g *Gateway) ContainerInspect(c echo.Context) error {
	id := c.Param("id")
	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Containers().Get(id).Inspect()
	})
}

// ContainerRemove relays DELETE /containers/:id.
func (g *Gateway) ContainerRemove(c echo.Context) error {
	id := c.Param("id")
	b := docker.NewRmContainerBuilder()
	if queryBool(c, "v") {
		b.Volumes(true)
	}
	if queryBool(c, "force") {
		b.Force(true)
	}
	if queryBool(c, "link") {
		b.Link(true)
	}
	opts := b.Build()

	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Containers().Get(id).Remove(opts)
	})
}

// ContainerTop relays GET /containers/:id/top.
func (g *Gateway) ContainerTop(c echo.Context) error {
	id := c.Param("id")
	psArgs := c.QueryParam("ps_args")
	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Containers().Get(id).Top(psArgs)
	})
}

// ContainerLogs relays GET /containers/:id/logs. With follow the
// response streams until the container stops or the client hangs up.
func (g *Gateway) ContainerLogs(c echo.Context) error {
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
		return client.Containers().Get(id).Logs(opts)
	})
}

// ContainerChanges relays GET /containers/:id/changes.
func (g *Gateway) ContainerChanges(c echo.Context) error {
	id := c.Param("id")
	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Containers().Get(id).Changes()
	})
}

// ContainerExport relays GET /containers/:id/export. The response is a
// tarball of the container filesystem.
func (g *Gateway) ContainerExport(c echo.Context) error {
	id := c.Param("id")
	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Containers().Get(id).Export()
	})
}

// ContainerStats relays GET /containers/:id/stats.
func (g *Gateway) ContainerStats(c echo.Context) error {
	id := c.Param("id")
	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Containers().Get(id).Stats()
	})
}

// ContainerStart relays POST /containers/:id/start.
func (g *Gateway) ContainerStart(c echo.Context) error {
	id := c.Param("id")
	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Containers().Get(id).Start()
	})
}

// ContainerStop relays POST /containers/:id/stop, carrying the optional
// kill-after grace period through.
func (g *Gateway) ContainerStop(c echo.Context) error {
	id := c.Param("id")
	wait := queryWait(c)
	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Containers().Get(id).Stop(wait)
	})
}

// ContainerRestart relays POST /containers/:id/restart.
func (g *Gateway) ContainerRestart(c echo.Context) error {
	id := c.Param("id")
	wait := queryWait(c)
	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Containers().Get(id).Restart(wait)
	})
}

// ContainerKill relays POST /containers/:id/kill.
func (g *Gateway) ContainerKill(c echo.Context) error {
	id := c.Param("id")
	signal := c.QueryParam("signal")
	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Containers().Get(id).Kill(signal)
	})
}

// ContainerRename relays POST /containers/:id/rename.
func (g *Gateway) ContainerRename(c echo.Context) error {
	id := c.Param("id")
	name := c.QueryParam("name")
	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Containers().Get(id).Rename(name)
	})
}

// ContainerPause relays POST /containers/:id/pause.
func (g *Gateway) ContainerPause(c echo.Context) error {
	id := c.Param("id")
	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Containers().Get(id).Pause()
	})
}

// ContainerUnpause relays POST /containers/:id/unpause.
func (g *Gateway) ContainerUnpause(c echo.Context) error {
	id := c.Param("id")
	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Containers().Get(id).Unpause()
	})
}

// ContainerAttach relays POST /containers/:id/attach.
func (g *Gateway) ContainerAttach(c echo.Context) error {
	id := c.Param("id")
	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Containers().Get(id).Attach()
	})
}

// ContainerWait relays POST /containers/:id/wait. The response arrives
// only once the container exits.
func (g *Gateway) ContainerWait(c echo.Context) error {
	id := c.Param("id")
	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Containers().Get(id).Wait()
	})
}

// queryWait reads the t parameter shared by stop and restart: seconds
// to wait before killing. Nil means the daemon default.
func queryWait(c echo.Context) *time.Duration {
	raw := c.QueryParam("t")
	if raw == "" {
		return nil
	}
	secs, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	d := time.Duration(secs) * time.Second
	return &d
}
