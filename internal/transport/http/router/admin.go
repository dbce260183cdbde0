package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"biotrack/internal/core/server"
	mdw "biotrack/internal/transport/http/middleware"
)

// NewAdminEngine serves /health, /metrics from g and the /admin/v1 tools.
// Probe paths are left out of the access log.
func NewAdminEngine(l *zap.Logger, reg *Registry, g prometheus.Gatherer, o Options) *gin.Engine {
	r := server.NewEngine(l, server.Options{
		Mode:      o.Mode,
		AccessLog: true,
		SkipPaths: []string{"/health", "/metrics"},
	})
	r.Use(mdw.RequestID(), mdw.Recovery(l))
	if o.MaxBodyBytes > 0 {
		r.Use(mdw.MaxBodyBytes(o.MaxBodyBytes))
	}
	if o.Timeout > 0 {
		r.Use(mdw.Timeout(o.Timeout))
	}

	r.GET("/health", health(o.Checks))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(g, promhttp.HandlerOpts{EnableOpenMetrics: true})))
	r.NoRoute(notFound)

	reg.MountAdmin(r.Group("/admin/v1"))
	return r
}
