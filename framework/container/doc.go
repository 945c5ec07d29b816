// Package container provides a small dependency-injection container with
// singleton and request scopes.
//
// # Overview
//
// Beans are identified by a BeanKey: a Go type plus an optional name. Each
// bean has a BeanDefinition holding its scope, its declared dependencies and
// a factory that builds it from those dependencies. Go has no constructor
// reflection, so dependencies are declared explicitly and handed to the
// factory as Args in declaration order.
//
// # Container Lifecycle
//
//  1. Create: c := container.New(container.WithLogger(log))
//  2. Register beans, directly or through ServiceProviders
//  3. Start: c.Start(ctx) validates the graph and builds every singleton
//  4. Serve: one request scope per inbound request
//  5. Shutdown: c.Shutdown(ctx) closes io.Closer beans in reverse order
//
// # Registering
//
//	// Singleton, built once at Start
//	container.Bind(c, "rateDiscountPolicy", container.Singleton,
//	    func(ctx context.Context, _ container.Args) (discount.Policy, error) {
//	        return discount.NewRatePolicy(10), nil
//	    })
//
//	// Request-scoped, built once per request scope
//	container.Bind(c, "", container.Request,
//	    func(ctx context.Context, _ container.Args) (*weblog.RequestLogger, error) {
//	        return weblog.NewRequestLogger(), nil
//	    })
//
//	// Dependencies are declared by key; a name narrows the match
//	container.Bind(c, "", container.Singleton,
//	    func(ctx context.Context, args container.Args) (*OrderService, error) {
//	        p, err := container.Arg[discount.Policy](args, 0)
//	        if err != nil {
//	            return nil, err
//	        }
//	        return &OrderService{policy: p}, nil
//	    }, container.Key[discount.Policy]("fixDiscountPolicy"))
//
// # Resolving
//
// A name narrows the lookup to one bean. Without a name the type must match
// exactly one bean, otherwise an *AmbiguousBeanError lists the candidates.
// GetAll returns every match keyed by name.
//
//	rate, err := container.Resolve[discount.Policy](ctx, c, "rateDiscountPolicy")
//	all := container.ResolveAll[discount.Policy](ctx, c)
//
// # Request Scopes
//
// The active request scope travels on the context.Context. A request bean
// resolved outside a request scope fails with *NoActiveScopeError.
//
//	err := c.WithRequestScope(ctx, "", func(ctx context.Context) error {
//	    l, err := container.Resolve[*weblog.RequestLogger](ctx, c)
//	    ...
//	})
//
// # Providers
//
// A singleton that depends on a request bean receives a Provider instead of
// an instance, and resolves the current request's bean on every Get.
//
//	container.Bind(c, "", container.Singleton,
//	    func(ctx context.Context, args container.Args) (*LogDemoService, error) {
//	        loggers, err := container.LazyArg[*weblog.RequestLogger](args, 0)
//	        if err != nil {
//	            return nil, err
//	        }
//	        return &LogDemoService{loggers: loggers}, nil
//	    }, container.Key[*weblog.RequestLogger]())
//
// # Service Providers
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&AppServiceProvider{})
//	registry.Boot(ctx) // starts the container, then calls every Boot
package container
