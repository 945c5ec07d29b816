package providers

import (
	"context"

	"go.uber.org/zap"

	"github.com/km-arc/go-beans/framework/config"
	"github.com/km-arc/go-beans/framework/container"
	gohttp "github.com/km-arc/go-beans/framework/http"
	"github.com/km-arc/go-beans/framework/logging"
	"github.com/km-arc/go-beans/framework/routing"
)

// Bean names registered by the framework providers.
const (
	ConfigBean = "config"
	LoggerBean = "logger"
	RouterBean = "router"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider binds the application configuration.
//
// Beans:
//   - "config"  → *config.Config (singleton)
//
// Config wins over EnvFiles when both are set.
type ConfigServiceProvider struct {
	container.BaseProvider
	Config   *config.Config
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(c *container.Container) error {
	cfg, envFiles := p.Config, p.EnvFiles
	return container.Bind(c, ConfigBean, container.Singleton,
		func(context.Context, container.Args) (*config.Config, error) {
			if cfg != nil {
				return cfg, nil
			}
			return config.Load(envFiles...), nil
		})
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider binds the application logger.
//
// Beans:
//   - "logger"  → *zap.Logger (singleton, depends on "config")
//
// A preset Logger is used as is; otherwise one is built from config.
type LoggingServiceProvider struct {
	container.BaseProvider
	Logger *zap.Logger
}

func (p *LoggingServiceProvider) Register(c *container.Container) error {
	preset := p.Logger
	return container.Bind(c, LoggerBean, container.Singleton,
		func(_ context.Context, args container.Args) (*zap.Logger, error) {
			if preset != nil {
				return preset, nil
			}
			cfg, err := container.Arg[*config.Config](args, 0)
			if err != nil {
				return nil, err
			}
			return logging.New(cfg)
		}, container.Key[*config.Config](ConfigBean))
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router. Every route served by
// it runs inside its own container request scope.
//
// Beans:
//   - "router"  → *routing.Router (singleton, depends on "config", "logger")
//
// Application providers add their routes in Boot.
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(c *container.Container) error {
	return container.Bind(c, RouterBean, container.Singleton,
		func(_ context.Context, args container.Args) (*routing.Router, error) {
			cfg, err := container.Arg[*config.Config](args, 0)
			if err != nil {
				return nil, err
			}
			log, err := container.Arg[*zap.Logger](args, 1)
			if err != nil {
				return nil, err
			}

			router := routing.New(log.Named("http"))
			router.Middleware(gohttp.RequestScope(c, cfg.Scope.Header, log.Named("scope")))
			return router, nil
		},
		container.Key[*config.Config](ConfigBean),
		container.Key[*zap.Logger](LoggerBean),
	)
}
