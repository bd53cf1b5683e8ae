package gateway

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dockpool/dockpool/pkg/docker"
)

// ImageList relays GET /images to GET /images/json.
func (g *Gateway) ImageList(c echo.Context) error {
	spec, err := queryFilters(c)
	if err != nil {
		return badFilters(c, err)
	}

	b := docker.NewImageListBuilder()
	if queryBool(c, "all") {
		b.All()
	}
	if queryBool(c, "digests") {
		b.Digests(true)
	}
	if name := c.QueryParam("filter"); name != "" {
		b.FilterName(name)
	}
	if spec != nil {
		b.FilterSpec(spec)
	}
	opts := b.Build()

	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Images().List(opts)
	})
}

// ImagePull relays POST /images/create. Registry credentials arrive in
// the inbound X-Registry-Auth header and are carried through opaque.
func (g *Gateway) ImagePull(c echo.Context) error {
	b := docker.NewPullBuilder()
	if image := c.QueryParam("fromImage"); image != "" {
		b.Image(image)
	}
	if src := c.QueryParam("fromSrc"); src != "" {
		b.Src(src)
	}
	if repo := c.QueryParam("repo"); repo != "" {
		b.Repo(repo)
	}
	if tag := c.QueryParam("tag"); tag != "" {
		b.Tag(tag)
	}
	if auth := inboundAuth(c); auth != nil {
		b.Auth(auth)
	}
	opts := b.Build()

	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Images().Pull(opts)
	})
}

// ImageBuild relays POST /build. The inbound body is the tar build
// context and streams through to the daemon as is.
func (g *Gateway) ImageBuild(c echo.Context) error {
	b := docker.NewImageBuildBuilder("")
	if dockerfile := c.QueryParam("dockerfile"); dockerfile != "" {
		b.Dockerfile(dockerfile)
	}
	if tag := c.QueryParam("t"); tag != "" {
		b.Tag(tag)
	}
	if remote := c.QueryParam("remote"); remote != "" {
		b.Remote(remote)
	}
	if queryBool(c, "nocache") {
		b.NoCache(true)
	}
	if queryBool(c, "rm") {
		b.Rm(true)
	}
	if queryBool(c, "forcerm") {
		b.ForceRm(true)
	}
	if mode := c.QueryParam("networkmode"); mode != "" {
		b.NetworkMode(mode)
	}
	if mem, ok := queryInt64(c, "memory"); ok && mem > 0 {
		b.Memory(uint64(mem))
	}
	if shares, ok := queryInt64(c, "cpushares"); ok && shares > 0 {
		b.CPUShares(uint32(shares))
	}
	if raw := c.QueryParam("labels"); raw != "" {
		var labels map[string]string
		if err := json.Unmarshal([]byte(raw), &labels); err != nil {
			return c.String(http.StatusBadRequest, "invalid labels parameter: "+err.Error())
		}
		b.Labels(labels)
	}
	opts := b.Build()
	buildContext := c.Request().Body

	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Images().BuildFrom(opts, buildContext)
	})
}

// ImageSearch relays GET /images/search.
func (g *Gateway) ImageSearch(c echo.Context) error {
	term := c.QueryParam("term")
	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Images().Search(term)
	})
}

// ImageExportAll relays GET /images/get for a comma-separated names
// parameter. The response is one tarball covering all of them.
func (g *Gateway) ImageExportAll(c echo.Context) error {
	var names []string
	if raw := c.QueryParam("names"); raw != "" {
		names = strings.Split(raw, ",")
	}
	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Images().ExportAll(names)
	})
}

// ImageImport relays POST /images/load, streaming the inbound tarball
// through.
func (g *Gateway) ImageImport(c echo.Context) error {
	tarball := c.Request().Body
	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Images().Import(tarball)
	})
}

// ImageInspect relays GET /images/:name/json.
func (g *Gateway) ImageInspect(c echo.Context) error {
	name := c.Param("name")
	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Images().Get(name).Inspect()
	})
}

// ImageHistory relays GET /images/:name/history.
func (g *Gateway) ImageHistory(c echo.Context) error {
	name := c.Param("name")
	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Images().Get(name).History()
	})
}

// ImageExport relays GET /images/:name/get.
func (g *Gateway) ImageExport(c echo.Context) error {
	name := c.Param("name")
	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Images().Get(name).Export()
	})
}

// ImageTag relays POST /images/:name/tag.
func (g *Gateway) ImageTag(c echo.Context) error {
	name := c.Param("name")
	b := docker.NewTagBuilder()
	if repo := c.QueryParam("repo"); repo != "" {
		b.Repo(repo)
	}
	if tag := c.QueryParam("tag"); tag != "" {
		b.Tag(tag)
	}
	opts := b.Build()

	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Images().Get(name).Tag(opts)
	})
}

// ImagePush relays POST /images/:name/push with the inbound credentials
// carried through.
func (g *Gateway) ImagePush(c echo.Context) error {
	name := c.Param("name")
	b := docker.NewPushBuilder()
	if tag := c.QueryParam("tag"); tag != "" {
		b.Tag(tag)
	}
	if auth := inboundAuth(c); auth != nil {
		b.Auth(auth)
	}
	opts := b.Build()

	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Images().Get(name).Push(opts)
	})
}

// ImageRemove relays DELETE /images/:name.
func (g *Gateway) ImageRemove(c echo.Context) error {
	name := c.Param("name")
	b := docker.NewRmImageBuilder()
	if queryBool(c, "force") {
		b.Force(true)
	}
	if queryBool(c, "noprune") {
		b.NoPrune(true)
	}
	opts := b.Build()

	return g.forward(c, func(client docker.Client) (*docker.Request, error) {
		return client.Images().Get(name).Delete(opts)
	})
}
