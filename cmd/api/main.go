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
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"biotrack/internal/app"
	"biotrack/internal/core/config"
	"biotrack/internal/core/logger"
	"biotrack/internal/core/server"
	"biotrack/internal/core/tracing"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		panic(err)
	}
	log, flush := logger.New(loggerOptions(cfg))
	defer flush()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()
	server.RouteGinOutput(log.Named("gin"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.Init(ctx, tracing.Options{
			ServiceName: cfg.App.Name,
			Environment: cfg.App.Env,
			Endpoint:    cfg.Tracing.Endpoint,
			SampleRatio: cfg.Tracing.SampleRatio,
		})
		if err != nil {
			log.Fatal("tracing init", zap.Error(err))
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(sctx)
		}()
	}

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("bootstrap", zap.Error(err))
	}
	defer a.Close()

	hc := cfg.App.HTTP
	apiSrv := server.BuildServer(server.Addr(hc.Host, hc.Port), a.APIEngine(),
		time.Duration(hc.ReadTimeoutSec)*time.Second,
		time.Duration(hc.WriteTimeoutSec)*time.Second,
		time.Duration(hc.IdleTimeoutSec)*time.Second,
	)
	adminSrv := server.BuildServer(server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port), a.AdminEngine(),
		5*time.Second, 10*time.Second, 60*time.Second)

	log.Info("biotrack api starting",
		zap.String("env", cfg.App.Env),
		zap.String("api", apiSrv.Addr),
		zap.String("admin", adminSrv.Addr),
		zap.String("db", cfg.DB.Driver),
		zap.Bool("redis", cfg.Redis.Enabled()),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(gctx, apiSrv, log, 10*time.Second) })
	g.Go(func() error { return server.Run(gctx, adminSrv, log, 10*time.Second) })
	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", zap.Error(err))
		return
	}
	log.Info("biotrack api stopped gracefully")
}

func loggerOptions(cfg *config.Config) logger.Options {
	f := cfg.Log.File
	return logger.Options{
		Level:       cfg.Log.Level,
		JSON:        cfg.Log.JSON,
		AddCaller:   true,
		Development: cfg.App.Env == "local",
		Rotate: logger.FileRotate{
			Enable:     f.Enable,
			Filename:   f.Filename,
			MaxSizeMB:  f.MaxSizeMB,
			MaxBackups: f.MaxBackups,
			MaxAgeDays: f.MaxAgeDays,
			Compress:   f.Compress,
		},
	}
}
