package gateway

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes binds the gateway's inbound surface. Every daemon
// route carries the tenant identifier as the first path segment after
// /docker; the verb the client sends is the verb the daemon sees.
func (g *Gateway) RegisterRoutes(e *echo.Echo) {
	d := e.Group("/docker/:daemon")

	// System.
	d.GET("/version", g.Version)
	d.GET("/info", g.Info)
	d.GET("/ping", g.Ping)
	d.GET("/events", g.Events)

	// Containers.
	d.GET("/containers", g.ContainerList)
	d.POST("/containers", g.ContainerCreate)
	d.GET("/containers/:id", g.ContainerInspect)
	d.DELETE("/containers/:id", g.ContainerRemove)
	d.GET("/containers/:id/top", g.ContainerTop)
	d.GET("/containers/:id/logs", g.ContainerLogs)
	d.GET("/containers/:id/changes", g.ContainerChanges)
	d.GET("/containers/:id/export", g.ContainerExport)
	d.GET("/containers/:id/stats", g.ContainerStats)
	d.POST("/containers/:id/start", g.ContainerStart)
	d.POST("/containers/:id/stop", g.ContainerStop)
	d.POST("/containers/:id/restart", g.ContainerRestart)
	d.POST("/containers/:id/kill", g.ContainerKill)
	d.POST("/containers/:id/rename", g.ContainerRename)
	d.POST("/containers/:id/pause", g.ContainerPause)
	d.POST("/containers/:id/unpause", g.ContainerUnpause)
	d.POST("/containers/:id/attach", g.ContainerAttach)
	d.POST("/containers/:id/wait", g.ContainerWait)
	// Alias for clients that POST a removal; outbound is still DELETE
	// /containers/{id}.
	d.POST("/containers/:id/remove", g.ContainerRemove)

	// Images.
	d.GET("/images", g.ImageList)
	d.POST("/images/pull", g.ImagePull)
	d.POST("/images/build", g.ImageBuild)
	d.GET("/images/search", g.ImageSearch)
	d.GET("/images/export", g.ImageExportAll)
	d.POST("/images/load", g.ImageImport)
	d.GET("/images/:name", g.ImageInspect)
	d.DELETE("/images/:name", g.ImageRemove)
	d.GET("/images/:name/history", g.ImageHistory)
	d.GET("/images/:name/get", g.ImageExport)
	d.POST("/images/:name/tag", g.ImageTag)
	d.POST("/images/:name/push", g.ImagePush)

	// Volumes.
	d.GET("/volumes", g.VolumeList)
	d.POST("/volumes", g.VolumeCreate)
	d.POST("/volumes/prune", g.VolumePrune)
	d.GET("/volumes/:name", g.VolumeInspect)
	d.DELETE("/volumes/:name", g.VolumeRemove)

	// Networks.
	d.GET("/networks", g.NetworkList)
	d.POST("/networks", g.NetworkCreate)
	d.GET("/networks/:id", g.NetworkInspect)
	d.DELETE("/networks/:id", g.NetworkRemove)
	d.POST("/networks/:id/connect", g.NetworkConnect)
	d.POST("/networks/:id/disconnect", g.NetworkDisconnect)

	// Services (swarm mode daemons only; others answer 503 themselves).
	d.GET("/services", g.ServiceList)
	d.POST("/services", g.ServiceCreate)
	d.GET("/services/:id", g.ServiceInspect)
	d.DELETE("/services/:id", g.ServiceRemove)
	d.GET("/services/:id/logs", g.ServiceLogs)

	e.POST("/telemetry/plots", g.PlotReport)
	e.GET("/telemetry/tenants", g.TenantReport)
}

// TenantReport answers with the forwarded-request count per tenant.
func (g *Gateway) TenantReport(c echo.Context) error {
	if g.store == nil {
		return c.JSON(http.StatusOK, map[string]int{})
	}
	counts, err := g.store.TenantCounts(c.Request().Context())
	if err != nil {
		log.Error("Tenant count query failed", "err", err)
		return c.String(http.StatusInternalServerError, "telemetry unavailable")
	}
	return c.JSON(http.StatusOK, counts)
}

// PlotReport records a completed-plot report from a farming host. The
// payload is a counter, nothing more; failures to persist it do not
// bother the reporter.
func (g *Gateway) PlotReport(c echo.Context) error {
	var payload struct {
		Count int `json:"count"`
	}
	if err := c.Bind(&payload); err != nil {
		return badBody(c, err)
	}
	if payload.Count <= 0 {
		payload.Count = 1
	}

	if g.store != nil {
		if err := g.store.RecordPlot(c.Request().Context(), c.RealIP(), payload.Count); err != nil {
			log.Warn("Plot report insert failed", "from", c.RealIP(), "err", err)
		}
	}
	return c.NoContent(http.StatusAccepted)
}
