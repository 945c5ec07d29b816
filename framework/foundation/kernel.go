package foundation

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/km-arc/go-beans/framework/config"
	"github.com/km-arc/go-beans/framework/container"
	gohttp "github.com/km-arc/go-beans/framework/http"
	"github.com/km-arc/go-beans/framework/logging"
	"github.com/km-arc/go-beans/framework/providers"
	"github.com/km-arc/go-beans/framework/routing"
)

// Version is reported by the console.
const Version = "0.1.0"

// Application is the top-level application container.
// It embeds the Container and ProviderRegistry so user code can call
// app.Register(), container.Bind(app.Container, ...) and friends directly.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry

	config *config.Config
	log    *zap.Logger
}

// New loads configuration, builds the logger and registers the framework
// providers.
func New(envFiles ...string) (*Application, error) {
	cfg := config.Load(envFiles...)
	log, err := logging.New(cfg)
	if err != nil {
		return nil, err
	}
	return NewWith(cfg, log)
}

// NewWith is New with a ready-made config and logger.
func NewWith(cfg *config.Config, log *zap.Logger) (*Application, error) {
	if log == nil {
		log = zap.NewNop()
	}
	c := container.New(container.WithLogger(log))
	registry := container.NewProviderRegistry(c)

	app := &Application{
		Container: c,
		Providers: registry,
		config:    cfg,
		log:       log,
	}

	// Register framework core providers
	for _, p := range []container.ServiceProvider{
		&providers.ConfigServiceProvider{Config: cfg},
		&providers.LoggingServiceProvider{Logger: log},
		&providers.RoutingServiceProvider{},
	} {
		if err := registry.Register(p); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot starts the container and runs the Boot phase on all providers.
func (a *Application) Boot(ctx context.Context) error {
	if err := a.Providers.Boot(ctx); err != nil {
		return err
	}
	a.log.Info("application booted",
		zap.String("env", a.config.App.Env),
		zap.Bool("debug", a.IsDebug()),
		zap.Int("providers", len(a.Providers.Providers())),
	)
	return nil
}

// Config returns the application configuration.
func (a *Application) Config() *config.Config { return a.config }

// Logger returns the application logger.
func (a *Application) Logger() *zap.Logger { return a.log }

// Router resolves the HTTP router. The application must be booted.
func (a *Application) Router(ctx context.Context) (*routing.Router, error) {
	return container.Resolve[*routing.Router](ctx, a.Container, providers.RouterBean)
}

// Run boots the application (if needed) and serves HTTP on APP_PORT until
// ctx is cancelled, then shuts the server and the container down within
// SHUTDOWN_TIMEOUT.
func (a *Application) Run(ctx context.Context) error {
	if !a.Providers.Booted() {
		if err := a.Boot(ctx); err != nil {
			return err
		}
	}

	router, err := a.Router(ctx)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              a.config.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.log.Info("http server listening",
			zap.String("addr", srv.Addr),
			zap.String("url", a.config.App.URL+a.config.Addr()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		runErr = errors.Wrap(err, "http server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.App.ShutdownTimeout)
	defer cancel()

	a.log.Info("shutting down")
	runErr = multierr.Append(runErr, srv.Shutdown(shutdownCtx))
	runErr = multierr.Append(runErr, a.Shutdown(shutdownCtx))
	return runErr
}

// Environment returns the APP_ENV value.
func (a *Application) Environment() string { return a.config.App.Env }

func (a *Application) IsProduction() bool { return a.config.IsProduction() }

// IsDebug reports APP_DEBUG. The logger runs in development mode when set.
func (a *Application) IsDebug() bool { return a.config.App.Debug }

// Controller is an embeddable base for HTTP controllers.
type Controller struct{}

func (c *Controller) Request(r *http.Request) *gohttp.Request {
	return gohttp.NewRequest(r)
}
func (c *Controller) Response(w http.ResponseWriter) *gohttp.Response {
	return gohttp.NewResponse(w)
}
