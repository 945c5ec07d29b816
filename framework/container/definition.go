package container

import (
	"context"

	"github.com/pkg/errors"
)

// Factory builds a bean from its resolved dependencies. args holds one entry
// per declared dependency, in declaration order.
//
//	func(ctx context.Context, args container.Args) (any, error) {
//	    cfg, err := container.Arg[*config.Config](args, 0)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return mail.NewSMTP(cfg.Mail), nil
//	}
type Factory func(ctx context.Context, args Args) (any, error)

// BeanDefinition declares how to build one bean.
type BeanDefinition struct {
	Key          BeanKey
	Scope        Scope
	Factory      Factory
	Dependencies []BeanKey
}

// Name is the bean's registered name, or its type when it was registered
// without one.
func (d *BeanDefinition) Name() string {
	if d.Key.Name != "" {
		return d.Key.Name
	}
	return d.Key.Type.String()
}

// ── Args ──────────────────────────────────────────────────────────────────────

// Args carries a factory's resolved dependencies. An entry is either the
// dependency instance or, when a singleton depends on a request-scoped bean,
// a Provider for it.
type Args []any

// Provider returns the i-th argument if it was injected lazily.
func (a Args) Provider(i int) (Provider, bool) {
	if i < 0 || i >= len(a) {
		return nil, false
	}
	p, ok := a[i].(Provider)
	return p, ok
}

// Arg returns the i-th argument as T.
//
//	log, err := container.Arg[*zap.Logger](args, 1)
func Arg[T any](args Args, i int) (T, error) {
	var zero T
	if i < 0 || i >= len(args) {
		return zero, errors.Errorf("argument %d out of range (%d dependencies)", i, len(args))
	}
	typed, ok := args[i].(T)
	if !ok {
		return zero, errors.Errorf("argument %d is %T, not %s", i, args[i], TypeOf[T]())
	}
	return typed, nil
}

// LazyArg returns the i-th argument as a typed provider. It fails when the
// argument was injected directly rather than through a Provider.
//
//	loggers, err := container.LazyArg[*weblog.RequestLogger](args, 0)
func LazyArg[T any](args Args, i int) (ObjectProvider[T], error) {
	p, ok := args.Provider(i)
	if !ok {
		if i < 0 || i >= len(args) {
			return ObjectProvider[T]{}, errors.Errorf("argument %d out of range (%d dependencies)", i, len(args))
		}
		return ObjectProvider[T]{}, errors.Errorf("argument %d is %T, not a lazy provider", i, args[i])
	}
	return ProviderOf[T](p), nil
}

func (d *BeanDefinition) validate() error {
	if d.Key.Type == nil {
		return errors.New("bean definition has no type")
	}
	if d.Factory == nil {
		return errors.Errorf("bean %s has no factory", d.Key)
	}
	if d.Scope != Singleton && d.Scope != Request {
		return errors.Errorf("bean %s has unknown scope %d", d.Key, int(d.Scope))
	}
	for i, dep := range d.Dependencies {
		if dep.Type == nil {
			return errors.Errorf("bean %s: dependency %d has no type", d.Key, i)
		}
	}
	return nil
}

// clone copies d so later edits to the caller's slice cannot reach the registry.
func (d BeanDefinition) clone() *BeanDefinition {
	deps := make([]BeanKey, len(d.Dependencies))
	copy(deps, d.Dependencies)
	d.Dependencies = deps
	return &d
}
