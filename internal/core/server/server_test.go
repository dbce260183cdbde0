package server

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewEngine_CORSAndRecovery(t *testing.T) {
	r := NewEngine(zap.NewNop(), Options{Mode: gin.TestMode, CORSOrigins: []string{"https://app.example"}})
	r.GET("/boom", func(*gin.Context) { panic("boom") })
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("Origin", "https://app.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Fatalf("allow origin = %q", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("panic status = %d", w.Code)
	}
}

func TestAddr(t *testing.T) {
	if got := Addr("127.0.0.1", 8081); got != "127.0.0.1:8081" {
		t.Fatalf("got %q", got)
	}
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	srv := BuildServer(addr, http.NotFoundHandler(), time.Second, time.Second, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, srv, zap.NewNop(), time.Second) }()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if c, err := net.Dial("tcp", addr); err == nil {
			c.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("server did not start")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("run did not return")
	}
}

func TestRun_ReportsListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	srv := BuildServer(ln.Addr().String(), http.NotFoundHandler(), time.Second, time.Second, time.Second)
	if err := Run(context.Background(), srv, zap.NewNop(), time.Second); err == nil {
		t.Fatal("expected address in use error")
	}
}

func TestGinOutputIsSetOnceNotPerEngine(t *testing.T) {
	prevOut, prevErr := gin.DefaultWriter, gin.DefaultErrorWriter
	t.Cleanup(func() { gin.DefaultWriter, gin.DefaultErrorWriter = prevOut, prevErr })

	core, logs := observer.New(zap.DebugLevel)
	RouteGinOutput(zap.New(core).Named("gin"))
	routed := gin.DefaultWriter

	NewEngine(zap.NewNop().Named("api"), Options{Mode: gin.TestMode})
	NewEngine(zap.NewNop().Named("admin"), Options{Mode: gin.TestMode})
	if gin.DefaultWriter != routed {
		t.Fatal("building an engine replaced gin's process writer")
	}

	_, _ = gin.DefaultWriter.Write([]byte("[GIN-debug] GET /x\n"))
	entries := logs.All()
	if len(entries) != 1 || entries[0].LoggerName != "gin" || entries[0].Message != "[GIN-debug] GET /x" {
		t.Fatalf("entries = %+v", entries)
	}

	var buf bytes.Buffer
	gin.DefaultWriter = &buf
	NewEngine(zap.NewNop(), Options{Mode: gin.TestMode})
	if gin.DefaultWriter != &buf {
		t.Fatal("engine overwrote a caller-chosen writer")
	}
}
