// Command admin runs only the operations listener against a shared database,
// for deployments that keep the public API in a separate process.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"biotrack/internal/app"
	"biotrack/internal/core/config"
	"biotrack/internal/core/logger"
	"biotrack/internal/core/server"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		panic(err)
	}
	log, flush := logger.New(logger.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON, AddCaller: true})
	defer flush()
	log = log.Named("admin")
	server.RouteGinOutput(log.Named("gin"))

	if cfg.DB.Driver == "memory" {
		log.Warn("memory storage is private to this process; run cmd/api to manage its data")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("bootstrap", zap.Error(err))
	}
	defer a.Close()

	srv := server.BuildServer(server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port), a.AdminEngine(),
		5*time.Second, 10*time.Second, 60*time.Second)
	if err := server.Run(ctx, srv, log, 10*time.Second); err != nil {
		log.Error("admin server stopped with error", zap.Error(err))
		return
	}
	log.Info("admin stopped gracefully")
}
