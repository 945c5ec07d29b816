package container

import (
	"context"
	"reflect"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Resolver finds definitions by type and name and obtains their instances
// from the ScopeStore.
//
// Lookup policy, in order:
//
//  1. a name narrows the lookup to that exact bean;
//  2. a type with a single matching definition resolves to it;
//  3. a type with several matching definitions is an *AmbiguousBeanError;
//  4. ResolveAllByType returns every match, keyed by bean name.
//
// A tie is never broken silently.
type Resolver struct {
	registry *Registry
	store    *ScopeStore
	log      *zap.Logger
}

// NewResolver creates a resolver over registry and store.
func NewResolver(registry *Registry, store *ScopeStore, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{registry: registry, store: store, log: log}
}

// ── Definition lookup ─────────────────────────────────────────────────────────

// Definition applies the lookup policy and returns the single matching
// definition. A non-empty name selects by name.
func (r *Resolver) Definition(t reflect.Type, name string) (*BeanDefinition, error) {
	candidates := r.registry.LookupByType(t)

	if name != "" {
		named := candidates[:0:0]
		for _, def := range candidates {
			if def.Key.Name == name {
				named = append(named, def)
			}
		}
		candidates = named
	}

	switch len(candidates) {
	case 0:
		return nil, &NoSuchBeanError{Type: t, Name: name}
	case 1:
		return candidates[0], nil
	default:
		names := make([]string, len(candidates))
		for i, def := range candidates {
			names[i] = def.Name()
		}
		return nil, &AmbiguousBeanError{Type: t, Candidates: names}
	}
}

// dependency resolves one declared dependency of owner, applying any
// qualifier registered with When/Needs/Give.
func (r *Resolver) dependency(owner *BeanDefinition, dep BeanKey) (*BeanDefinition, error) {
	name := dep.Name
	if name == "" {
		if q, ok := r.registry.qualifier(owner.Key, dep.Type); ok {
			name = q
		}
	}
	return r.Definition(dep.Type, name)
}

// ── Instance resolution ───────────────────────────────────────────────────────

// ResolveByName returns the bean of type t registered under name.
func (r *Resolver) ResolveByName(ctx context.Context, t reflect.Type, name string) (any, error) {
	if name == "" {
		return nil, &NoSuchBeanError{Type: t}
	}
	return r.Resolve(ctx, t, name)
}

// ResolveByType returns the only bean satisfying t.
func (r *Resolver) ResolveByType(ctx context.Context, t reflect.Type) (any, error) {
	return r.Resolve(ctx, t, "")
}

// Resolve returns the bean satisfying t, narrowed by name when one is given.
func (r *Resolver) Resolve(ctx context.Context, t reflect.Type, name string) (any, error) {
	def, err := r.Definition(t, name)
	if err != nil {
		return nil, err
	}
	return r.instance(ctx, def)
}

// ResolveKey returns the bean registered under exactly key.
func (r *Resolver) ResolveKey(ctx context.Context, key BeanKey) (any, error) {
	def, ok := r.registry.Lookup(key)
	if !ok {
		return nil, &NoSuchBeanError{Type: key.Type, Name: key.Name}
	}
	return r.instance(ctx, def)
}

// ResolveAllByType returns every bean satisfying t, keyed by bean name. It
// never fails: beans that cannot be obtained right now, such as request
// beans outside a request scope, are left out.
func (r *Resolver) ResolveAllByType(ctx context.Context, t reflect.Type) map[string]any {
	defs := r.registry.LookupByType(t)
	out := make(map[string]any, len(defs))
	for _, def := range defs {
		instance, err := r.instance(ctx, def)
		if err != nil {
			r.log.Debug("skipping bean",
				zap.Stringer("bean", def.Key),
				zap.Stringer("type", t),
				zap.Error(err),
			)
			continue
		}
		out[def.Name()] = instance
	}
	return out
}

// instance fetches def's instance from its scope, building it on first use.
func (r *Resolver) instance(ctx context.Context, def *BeanDefinition) (any, error) {
	return r.store.GetOrCreate(ctx, def.Key, def.Scope, func(ctx context.Context) (any, error) {
		return r.create(ctx, def)
	})
}

// create resolves def's dependencies and runs its factory. A singleton's
// request-scoped dependencies are injected as Providers; everything else is
// injected directly.
func (r *Resolver) create(ctx context.Context, def *BeanDefinition) (any, error) {
	args := make(Args, len(def.Dependencies))
	for i, dep := range def.Dependencies {
		target, err := r.dependency(def, dep)
		if err != nil {
			return nil, &UnresolvedDependencyError{Bean: def.Key, Dependency: dep, Cause: err}
		}

		if def.Scope == Singleton && target.Scope == Request {
			args[i] = newLazyProvider(target.Key, r)
			continue
		}

		instance, err := r.instance(ctx, target)
		if err != nil {
			return nil, errors.Wrapf(err, "bean %s: resolving %s", def.Key, target.Key)
		}
		args[i] = instance
	}

	instance, err := def.Factory(ctx, args)
	if err != nil {
		return nil, errors.Wrapf(err, "creating bean %s", def.Key)
	}
	if isNil(instance) {
		return nil, errors.Errorf("creating bean %s: factory returned nil", def.Key)
	}

	fields := []zap.Field{
		zap.Stringer("bean", def.Key),
		zap.Stringer("scope", def.Scope),
	}
	if sc := ScopeFrom(ctx); sc != nil && def.Scope == Request {
		fields = append(fields, zap.String("scope_id", sc.ID))
	}
	r.log.Debug("bean created", fields...)
	return instance, nil
}

// isNil also catches typed nils, such as a nil *T boxed by Bind.
func isNil(instance any) bool {
	if instance == nil {
		return true
	}
	v := reflect.ValueOf(instance)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
