package container

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the facade over the Registry, ScopeStore and Resolver.
//
// Lifecycle:
//
//  1. Register definitions (directly, through Bind, or via ServiceProviders).
//  2. Start: validate the graph and build every singleton.
//  3. Serve: resolve beans, opening one request scope per inbound request.
//  4. Shutdown: end open request scopes and close singletons.
type Container struct {
	registry *Registry
	store    *ScopeStore
	resolver *Resolver
	log      *zap.Logger

	mu       sync.RWMutex
	started  bool
	shutdown bool
}

// New creates an empty container.
func New(opts ...Option) *Container {
	c := &Container{log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	c.registry = NewRegistry()
	c.store = NewScopeStore(c.log)
	c.resolver = NewResolver(c.registry, c.store, c.log)
	return c
}

// ── Registration ──────────────────────────────────────────────────────────────

// Register declares a bean: its key, scope, factory and dependencies.
//
//	c.Register(container.Key[discount.Policy]("rateDiscountPolicy"), container.Singleton,
//	    func(ctx context.Context, _ container.Args) (any, error) {
//	        return discount.NewRatePolicy(10), nil
//	    })
func (c *Container) Register(key BeanKey, scope Scope, factory Factory, deps ...BeanKey) error {
	return c.RegisterDefinition(BeanDefinition{
		Key:          key,
		Scope:        scope,
		Factory:      factory,
		Dependencies: deps,
	})
}

// RegisterDefinition declares a bean from a complete definition.
func (c *Container) RegisterDefinition(def BeanDefinition) error {
	if err := c.registry.Register(def); err != nil {
		return err
	}
	c.log.Debug("bean registered",
		zap.Stringer("bean", def.Key),
		zap.Stringer("scope", def.Scope),
		zap.Int("dependencies", len(def.Dependencies)),
	)
	return nil
}

// Bind registers a bean of type T with a typed factory.
//
//	container.Bind(c, "fixDiscountPolicy", container.Singleton,
//	    func(ctx context.Context, _ container.Args) (discount.Policy, error) {
//	        return discount.NewFixPolicy(1000), nil
//	    })
func Bind[T any](c *Container, name string, scope Scope, fn func(ctx context.Context, args Args) (T, error), deps ...BeanKey) error {
	return c.Register(Key[T](name), scope, func(ctx context.Context, args Args) (any, error) {
		instance, err := fn(ctx, args)
		if err != nil {
			return nil, err
		}
		return instance, nil
	}, deps...)
}

// When starts a qualifier chain for one consumer.
//
//	c.When(container.Key[*OrderService]()).
//	    Needs(container.TypeOf[discount.Policy]()).
//	    Give("rateDiscountPolicy")
func (c *Container) When(owner BeanKey) *ContextualBuilder {
	return &ContextualBuilder{container: c, owner: owner}
}

// ── Start ─────────────────────────────────────────────────────────────────────

type visitState int

const (
	unvisited visitState = iota
	visiting
	visited
)

// Start seals the registry, validates every dependency chain and eagerly
// builds all singletons. Request beans are built on first use inside a
// request scope.
//
// Start fails with *UnresolvedDependencyError or *CyclicDependencyError
// before building anything. If a factory fails, the singletons already built
// are closed and the container cannot be started again.
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.shutdown {
		return ErrAlreadyShutdown
	}
	if c.started {
		return ErrAlreadyStarted
	}

	c.registry.seal()

	order, err := c.plan()
	if err != nil {
		return err
	}

	singletons := 0
	for _, def := range order {
		if def.Scope != Singleton {
			continue
		}
		if _, err := c.resolver.instance(ctx, def); err != nil {
			c.shutdown = true
			closeErr := c.store.Close(context.Background())
			return multierr.Append(errors.Wrap(err, "starting container"), closeErr)
		}
		singletons++
	}

	c.started = true
	c.log.Info("container started",
		zap.Int("beans", len(order)),
		zap.Int("singletons", singletons),
	)
	return nil
}

// plan checks that every dependency resolves and that no construction cycle
// exists, returning definitions with dependencies ahead of dependents.
//
// A singleton's dependency on a request bean is satisfied lazily, so that
// edge is not followed.
func (c *Container) plan() ([]*BeanDefinition, error) {
	states := make(map[BeanKey]visitState)
	var order []*BeanDefinition

	var visit func(def *BeanDefinition, stack []BeanKey) error
	visit = func(def *BeanDefinition, stack []BeanKey) error {
		switch states[def.Key] {
		case visiting:
			return cycleError(def.Key, stack)
		case visited:
			return nil
		}

		states[def.Key] = visiting
		stack = append(stack, def.Key)

		for _, dep := range def.Dependencies {
			target, err := c.resolver.dependency(def, dep)
			if err != nil {
				return &UnresolvedDependencyError{Bean: def.Key, Dependency: dep, Cause: err}
			}
			if def.Scope == Singleton && target.Scope == Request {
				continue
			}
			if err := visit(target, stack); err != nil {
				return err
			}
		}

		states[def.Key] = visited
		order = append(order, def)
		return nil
	}

	for _, def := range c.registry.Definitions() {
		if err := visit(def, nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func cycleError(key BeanKey, stack []BeanKey) error {
	start := 0
	for i, k := range stack {
		if k == key {
			start = i
			break
		}
	}
	chain := make([]BeanKey, 0, len(stack)-start+1)
	chain = append(chain, stack[start:]...)
	chain = append(chain, key)
	return &CyclicDependencyError{Chain: chain}
}

// Started reports whether Start has succeeded.
func (c *Container) Started() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.started && !c.shutdown
}

func (c *Container) ready() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.shutdown {
		return ErrAlreadyShutdown
	}
	if !c.started {
		return ErrNotStarted
	}
	return nil
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Get returns the only bean satisfying t.
func (c *Container) Get(ctx context.Context, t reflect.Type) (any, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	return c.resolver.ResolveByType(ctx, t)
}

// GetNamed returns the bean satisfying t registered under name. An empty
// name behaves like Get.
func (c *Container) GetNamed(ctx context.Context, t reflect.Type, name string) (any, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	return c.resolver.Resolve(ctx, t, name)
}

// GetAll returns every obtainable bean satisfying t, keyed by bean name.
// TypeOf[any]() matches every bean.
func (c *Container) GetAll(ctx context.Context, t reflect.Type) map[string]any {
	if err := c.ready(); err != nil {
		return map[string]any{}
	}
	return c.resolver.ResolveAllByType(ctx, t)
}

// Definitions returns a copy of every registered definition, in registration
// order.
func (c *Container) Definitions() []BeanDefinition {
	defs := c.registry.Definitions()
	out := make([]BeanDefinition, len(defs))
	for i, def := range defs {
		out[i] = *def.clone()
	}
	return out
}

// ── Request scopes ────────────────────────────────────────────────────────────

// BeginRequestScope opens a request scope and returns ctx with it attached.
// An empty id is replaced by a random UUID.
func (c *Container) BeginRequestScope(ctx context.Context, id string) (context.Context, error) {
	if err := c.ready(); err != nil {
		return ctx, err
	}
	return c.store.BeginRequestScope(ctx, id)
}

// EndRequestScope tears down the request scope with the given id, closing
// its io.Closer beans.
func (c *Container) EndRequestScope(id string) error {
	return c.store.EndRequestScope(id)
}

// WithRequestScope runs fn inside a fresh request scope. The scope is ended
// however fn exits, including by panic.
//
//	err := c.WithRequestScope(ctx, "req-1", func(ctx context.Context) error {
//	    id, err := container.Resolve[*CorrelationID](ctx, c)
//	    ...
//	})
func (c *Container) WithRequestScope(ctx context.Context, id string, fn func(ctx context.Context) error) (err error) {
	scoped, err := c.BeginRequestScope(ctx, id)
	if err != nil {
		return err
	}
	scopeID := ScopeFrom(scoped).ID

	defer func() {
		err = multierr.Append(err, c.EndRequestScope(scopeID))
	}()

	return fn(scoped)
}

// CurrentScope returns the active request scope attached to ctx, or nil.
func (c *Container) CurrentScope(ctx context.Context) *ScopeContext {
	return c.store.Current(ctx)
}

// ActiveScopes returns the ids of all open request scopes.
func (c *Container) ActiveScopes() []string {
	return c.store.ActiveScopes()
}

// ── Shutdown ──────────────────────────────────────────────────────────────────

// Shutdown ends every open request scope and closes singletons that
// implement io.Closer, dependents before their dependencies. ctx bounds the
// whole teardown; closers left when it expires are skipped.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.shutdown {
		return ErrAlreadyShutdown
	}
	c.shutdown = true

	err := c.store.Close(ctx)
	c.log.Info("container shut down", zap.Error(err))
	return err
}

// ── Generic helpers ───────────────────────────────────────────────────────────

// Resolve returns the bean of type T, narrowed by name when one is given.
//
//	cfg, err := container.Resolve[*config.Config](ctx, c)
//	rate, err := container.Resolve[discount.Policy](ctx, c, "rateDiscountPolicy")
func Resolve[T any](ctx context.Context, c *Container, name ...string) (T, error) {
	var zero T
	t := TypeOf[T]()

	var (
		instance any
		err      error
	)
	if len(name) > 0 {
		instance, err = c.GetNamed(ctx, t, name[0])
	} else {
		instance, err = c.Get(ctx, t)
	}
	if err != nil {
		return zero, err
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, errors.Errorf("cannot convert %T to %s", instance, t)
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on failure. Meant for bootstrap
// code where a missing bean is a programming error.
func MustResolve[T any](ctx context.Context, c *Container, name ...string) T {
	typed, err := Resolve[T](ctx, c, name...)
	if err != nil {
		panic(fmt.Sprintf("container: MustResolve[%s]: %v", TypeOf[T](), err))
	}
	return typed
}

// ResolveAll returns every obtainable bean of type T, keyed by bean name.
func ResolveAll[T any](ctx context.Context, c *Container) map[string]T {
	all := c.GetAll(ctx, TypeOf[T]())
	out := make(map[string]T, len(all))
	for name, instance := range all {
		if typed, ok := instance.(T); ok {
			out[name] = typed
		}
	}
	return out
}

// ProviderFor returns a lazy provider for the bean of type T, for callers
// outside the container that must not hold a request bean directly. The
// lookup policy is applied now; instances are resolved on each Get. Like
// Get, it fails before Start and after Shutdown.
func ProviderFor[T any](c *Container, name ...string) (ObjectProvider[T], error) {
	if err := c.ready(); err != nil {
		return ObjectProvider[T]{}, err
	}
	n := ""
	if len(name) > 0 {
		n = name[0]
	}
	def, err := c.resolver.Definition(TypeOf[T](), n)
	if err != nil {
		return ObjectProvider[T]{}, err
	}
	return ProviderOf[T](newLazyProvider(def.Key, c.resolver)), nil
}
