// Package app wires configuration into storage, services and the two HTTP engines.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"biotrack/internal/core/cache"
	"biotrack/internal/core/config"
	"biotrack/internal/core/database"
	"biotrack/internal/domain"
	"biotrack/internal/repo"
	"biotrack/internal/repo/memory"
	"biotrack/internal/service"
	"biotrack/internal/transport/http/handler"
	mdw "biotrack/internal/transport/http/middleware"
	"biotrack/internal/transport/http/router"
	"biotrack/pkg/utils"
)

type App struct {
	Config   *config.Config
	Log      *zap.Logger
	Users    *service.UserService
	Measures *service.MeasureService
	Registry *prometheus.Registry

	checks  map[string]router.Check
	modules *router.Registry
	closers []func() error
}

// New opens storage and the optional redis cache. Call Close when done.
func New(ctx context.Context, cfg *config.Config, l *zap.Logger) (*App, error) {
	a := &App{
		Config:   cfg,
		Log:      l,
		Registry: prometheus.NewRegistry(),
		checks:   map[string]router.Check{},
	}
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	users, measures, err := a.openStorage()
	if err != nil {
		a.Close()
		return nil, err
	}

	var latest service.LatestCache
	if cfg.Redis.Enabled() {
		c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		a.closers = append(a.closers, c.Close)
		if err := c.Ping(ctx); err != nil {
			l.Warn("redis unreachable, latest measures load from storage until it recovers",
				zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		a.checks["redis"] = c.Ping
		latest = service.NewRedisLatestCache(c, cfg.Redis.LatestTTL(), l.Named("cache"))
	}

	policy, err := service.ParseDeletePolicy(cfg.Users.DeletePolicy)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Users = service.NewUserService(users, measures, utils.BcryptHasher{Cost: cfg.Password.BcryptCost}, service.UserConfig{
		DeletePolicy: policy,
		Cache:        latest,
		Logger:       l.Named("users"),
	})
	a.Measures = service.NewMeasureService(users, measures, latest, l.Named("measures"))

	a.modules = router.NewRegistry(
		handler.NewUserHandler(a.Users, l),
		handler.NewMeasureHandler(a.Measures, l),
		handler.NewAdminHandler(a.Users, a.Measures, l),
	)
	return a, nil
}

func (a *App) openStorage() (domain.UserRepository, domain.MeasureRepository, error) {
	dc := a.Config.DB
	if dc.Driver == "memory" {
		a.Log.Warn("using in-memory storage, data is lost on exit")
		st := memory.NewStore()
		return st.Users(), st.Measures(), nil
	}

	db, err := database.NewGorm(database.Opts{
		Driver:             dc.Driver,
		DSN:                dc.DSN,
		Username:           dc.Username,
		Password:           dc.Password,
		MaxOpenConns:       dc.MaxOpenConns,
		MaxIdleConns:       dc.MaxIdleConns,
		ConnMaxLifetimeMin: dc.ConnMaxLifetimeMin,
		LogLevel:           dc.LogLevel,
	}, a.Log)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	a.closers = append(a.closers, sqlDB.Close)
	a.checks["db"] = sqlDB.PingContext
	a.Log.Info("database connected", zap.String("driver", dc.Driver))

	if dc.AutoMigrate {
		if err := repo.Migrate(db); err != nil {
			return nil, nil, fmt.Errorf("automigrate: %w", err)
		}
		a.Log.Info("automigrate done")
	}
	return repo.NewUserRepo(db), repo.NewMeasureRepo(db), nil
}

func (a *App) routerOptions() router.Options {
	lim := a.Config.Limits
	mode := gin.ReleaseMode
	if a.Config.App.Env == "local" || a.Config.App.Env == "dev" {
		mode = gin.DebugMode
	}
	return router.Options{
		Mode:          mode,
		CORSOrigins:   a.Config.App.HTTP.CORSOrigins,
		RPS:           lim.RPS,
		Burst:         lim.Burst,
		PerIP:         lim.PerIP,
		MaxConcurrent: lim.MaxConcurrent,
		MaxBodyBytes:  lim.MaxBodyMB << 20,
		Timeout:       lim.RequestTimeout(),
		Tracing:       a.Config.Tracing.Enabled,
		ServiceName:   a.Config.App.Name,
		Checks:        a.checks,
	}
}

func (a *App) APIEngine() *gin.Engine {
	m := mdw.NewMetrics(a.Registry, "api")
	return router.NewAPIEngine(a.Log.Named("api"), a.modules, m, a.routerOptions())
}

func (a *App) AdminEngine() *gin.Engine {
	return router.NewAdminEngine(a.Log.Named("admin"), a.modules, a.Registry, a.routerOptions())
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
