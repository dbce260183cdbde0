package router

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"biotrack/internal/transport/http/response"
)

// Check reports whether a dependency (database, redis) is reachable.
type Check func(ctx context.Context) error

func health(checks map[string]Check) gin.HandlerFunc {
	names := make([]string, 0, len(checks))
	for n := range checks {
		names = append(names, n)
	}
	sort.Strings(names)

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{}
		healthy := true
		for _, n := range names {
			if err := checks[n](ctx); err != nil {
				status[n] = "down"
				healthy = false
				continue
			}
			status[n] = "up"
		}
		if !healthy {
			c.JSON(http.StatusServiceUnavailable, response.New(response.CodeUnavailable, "unhealthy", status))
			return
		}
		c.JSON(http.StatusOK, response.OK(status))
	}
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, response.Error(response.CodeNotFound, "route not found"))
}
