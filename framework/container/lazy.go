package container

import (
	"context"

	"github.com/pkg/errors"
)

// Provider defers the lookup of a bean until Get is called.
//
// A singleton that depends on a request-scoped bean receives a Provider in
// place of the bean. The singleton is built once, but every Get resolves
// against the request scope attached to the ctx passed in, so each request
// sees its own instance.
type Provider interface {
	// Key identifies the bean the provider resolves.
	Key() BeanKey

	// Get resolves the bean in the scope attached to ctx. Nothing is cached
	// between calls.
	Get(ctx context.Context) (any, error)
}

// lazyProvider holds a key and the resolver, never an instance.
type lazyProvider struct {
	key      BeanKey
	resolver *Resolver
}

func newLazyProvider(key BeanKey, resolver *Resolver) *lazyProvider {
	return &lazyProvider{key: key, resolver: resolver}
}

func (p *lazyProvider) Key() BeanKey { return p.key }

func (p *lazyProvider) Get(ctx context.Context) (any, error) {
	return p.resolver.ResolveKey(ctx, p.key)
}

func (p *lazyProvider) String() string { return "Provider[" + p.key.String() + "]" }

// ── ObjectProvider ────────────────────────────────────────────────────────────

// ObjectProvider is a typed view of a Provider.
//
//	type LogDemoService struct {
//	    loggers container.ObjectProvider[*RequestLogger]
//	}
//
//	func (s *LogDemoService) Log(ctx context.Context, msg string) error {
//	    l, err := s.loggers.Get(ctx)
//	    if err != nil {
//	        return err
//	    }
//	    l.Log(msg)
//	    return nil
//	}
type ObjectProvider[T any] struct {
	p Provider
}

// ProviderOf wraps p with a typed Get.
func ProviderOf[T any](p Provider) ObjectProvider[T] {
	return ObjectProvider[T]{p: p}
}

// Key identifies the bean the provider resolves.
func (o ObjectProvider[T]) Key() BeanKey {
	if o.p == nil {
		return BeanKey{}
	}
	return o.p.Key()
}

// Get resolves the bean in the scope attached to ctx.
func (o ObjectProvider[T]) Get(ctx context.Context) (T, error) {
	var zero T
	if o.p == nil {
		return zero, errors.New("object provider is not bound")
	}
	instance, err := o.p.Get(ctx)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, errors.Errorf("provider %s resolved to %T, not %s", o.p.Key(), instance, TypeOf[T]())
	}
	return typed, nil
}

// Provider returns the underlying untyped provider.
func (o ObjectProvider[T]) Provider() Provider { return o.p }
