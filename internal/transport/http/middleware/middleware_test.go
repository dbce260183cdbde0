package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	mdw "biotrack/internal/transport/http/middleware"
)

func init() { gin.SetMode(gin.TestMode) }

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func ok(c *gin.Context) { c.String(http.StatusOK, "ok") }

func TestRateLimit(t *testing.T) {
	tests := []struct {
		name string
		mw   gin.HandlerFunc
	}{
		{"global", mdw.RateLimit(0.001, 1)},
		{"per ip", mdw.RateLimitPerIP(0.001, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(tt.mw)
			r.GET("/x", ok)

			if w := serve(r, http.MethodGet, "/x", ""); w.Code != http.StatusOK {
				t.Fatalf("first request: %d", w.Code)
			}
			if w := serve(r, http.MethodGet, "/x", ""); w.Code != http.StatusTooManyRequests {
				t.Fatalf("second request: got %d want 429", w.Code)
			}
		})
	}
}

func TestMaxBodyBytes(t *testing.T) {
	r := gin.New()
	r.Use(mdw.MaxBodyBytes(8))
	r.POST("/x", ok)

	if w := serve(r, http.MethodPost, "/x", "small"); w.Code != http.StatusOK {
		t.Fatalf("small body: %d", w.Code)
	}
	if w := serve(r, http.MethodPost, "/x", strings.Repeat("a", 64)); w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("large body: got %d want 413", w.Code)
	}
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(mdw.Recovery(zap.NewNop()))
	r.GET("/boom", func(*gin.Context) { panic("secret detail") })

	w := serve(r, http.MethodGet, "/boom", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("got %d want 500", w.Code)
	}
	if strings.Contains(w.Body.String(), "secret detail") {
		t.Fatalf("panic value leaked: %s", w.Body.String())
	}
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(mdw.Timeout(10 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})

	if w := serve(r, http.MethodGet, "/slow", ""); w.Code != http.StatusGatewayTimeout {
		t.Fatalf("got %d want 504", w.Code)
	}
}

func TestConcurrencyLimit_RejectsWhenContextEnds(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	r := gin.New()
	r.Use(mdw.ConcurrencyLimit(1))
	r.GET("/hold", func(c *gin.Context) {
		close(started)
		<-release
		c.Status(http.StatusOK)
	})
	r.GET("/x", ok)

	go serve(r, http.MethodGet, "/hold", "")
	<-started
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/x", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("got %d want 503", w.Code)
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(mdw.RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(mdw.KeyRequestID)) })

	w := serve(r, http.MethodGet, "/x", "")
	rid := w.Header().Get(mdw.KeyRequestID)
	if rid == "" || w.Body.String() != rid {
		t.Fatalf("generated id not propagated: header=%q body=%q", rid, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(mdw.KeyRequestID, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get(mdw.KeyRequestID) != "abc-123" {
		t.Fatalf("incoming id not kept: %q", w.Header().Get(mdw.KeyRequestID))
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := mdw.NewMetrics(reg, "api")
	r := gin.New()
	r.Use(m.Handler())
	r.GET("/users/:id", ok)

	serve(r, http.MethodGet, "/users/1", "")
	serve(r, http.MethodGet, "/users/2", "")

	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues(http.MethodGet, "/users/:id", "200")); got != 2 {
		t.Fatalf("expected 2 requests counted on the route template, got %v", got)
	}
}
