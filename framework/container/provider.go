package container

import (
	"context"

	"github.com/pkg/errors"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups related bean definitions.
//
// Register runs as soon as the provider is added and must only declare
// beans. Boot runs after the container has started, so every bean can be
// resolved there.
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(c *container.Container) error {
//	    return container.Bind(c, "rateDiscountPolicy", container.Singleton,
//	        func(ctx context.Context, _ container.Args) (discount.Policy, error) {
//	            return discount.NewRatePolicy(10), nil
//	        })
//	}
//
//	func (p *AppServiceProvider) Boot(ctx context.Context, c *container.Container) error {
//	    log := container.MustResolve[*zap.Logger](ctx, c)
//	    log.Info("discount policies ready")
//	    return nil
//	}
type ServiceProvider interface {
	// Register declares beans. Do NOT resolve anything here; use Boot.
	Register(c *Container) error

	// Boot is called after Start. Safe to resolve any bean.
	Boot(ctx context.Context, c *Container) error
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable no-op Boot.
//
//	type MyProvider struct{ container.BaseProvider }
//	func (p *MyProvider) Register(c *container.Container) error { ... }
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ context.Context, _ *Container) error { return nil }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry registers ServiceProviders against a container and boots
// them once it has started.
type ProviderRegistry struct {
	app        *Container
	providers  []ServiceProvider
	registered map[ServiceProvider]bool
	booted     bool
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register method. Adding the same
// provider twice is a no-op. Providers cannot be added after Boot because
// the container is sealed by then.
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	if r.registered[provider] {
		return nil
	}
	if r.booted {
		return errors.Wrapf(ErrAlreadyStarted, "registering provider %T", provider)
	}

	if err := provider.Register(r.app); err != nil {
		return errors.Wrapf(err, "registering provider %T", provider)
	}
	r.registered[provider] = true
	r.providers = append(r.providers, provider)
	return nil
}

// Boot starts the container, then calls Boot on every provider in
// registration order. A second call is a no-op.
func (r *ProviderRegistry) Boot(ctx context.Context) error {
	if r.booted {
		return nil
	}

	if err := r.app.Start(ctx); err != nil {
		return err
	}
	r.booted = true

	for _, provider := range r.providers {
		if err := provider.Boot(ctx, r.app); err != nil {
			return errors.Wrapf(err, "booting provider %T", provider)
		}
	}
	return nil
}

// Booted returns true once Boot has started the container.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns all registered providers in registration order.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.providers }
