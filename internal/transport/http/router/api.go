package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"biotrack/internal/core/server"
	mdw "biotrack/internal/transport/http/middleware"
)

type Options struct {
	Mode        string
	CORSOrigins []string

	RPS           float64
	Burst         int
	PerIP         bool
	MaxConcurrent int64
	MaxBodyBytes  int64
	Timeout       time.Duration

	// Tracing wraps every request in an otel span named after ServiceName.
	Tracing     bool
	ServiceName string

	Checks map[string]Check
}

// NewAPIEngine serves the public REST surface at the root path.
func NewAPIEngine(l *zap.Logger, reg *Registry, m *mdw.Metrics, o Options) *gin.Engine {
	r := server.NewEngine(l, server.Options{Mode: o.Mode, CORSOrigins: o.CORSOrigins})
	if o.Tracing {
		r.Use(otelgin.Middleware(o.ServiceName))
	}
	r.Use(chain(l, m, o)...)

	r.GET("/health", health(o.Checks))
	r.NoRoute(notFound)
	reg.MountAPI(&r.RouterGroup)
	return r
}

func chain(l *zap.Logger, m *mdw.Metrics, o Options) []gin.HandlerFunc {
	limit := mdw.RateLimit
	if o.PerIP {
		limit = mdw.RateLimitPerIP
	}
	hs := []gin.HandlerFunc{mdw.RequestID()}
	if o.RPS > 0 {
		hs = append(hs, limit(rate.Limit(o.RPS), max(1, o.Burst)))
	}
	if o.MaxConcurrent > 0 {
		hs = append(hs, mdw.ConcurrencyLimit(o.MaxConcurrent))
	}
	if o.MaxBodyBytes > 0 {
		hs = append(hs, mdw.MaxBodyBytes(o.MaxBodyBytes))
	}
	if o.Timeout > 0 {
		hs = append(hs, mdw.Timeout(o.Timeout))
	}
	hs = append(hs, mdw.Recovery(l))
	if m != nil {
		hs = append(hs, m.Handler())
	}
	return append(hs, mdw.AccessLog(l))
}
