package container

import (
	"reflect"
	"sync"
)

// Registry holds every bean definition, keyed by (type, name).
//
// Definitions are copied on registration and never change afterwards. The
// registry is sealed by Container.Start; later registrations fail.
type Registry struct {
	mu sync.RWMutex

	definitions map[BeanKey]*BeanDefinition

	// bean name → definition; names are unique across all types
	names map[string]*BeanDefinition

	// registration order, for deterministic lookups and error messages
	order []*BeanDefinition

	// owner → dependency type → bean name
	qualifiers map[BeanKey]map[reflect.Type]string

	sealed bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		definitions: make(map[BeanKey]*BeanDefinition),
		names:       make(map[string]*BeanDefinition),
		qualifiers:  make(map[BeanKey]map[reflect.Type]string),
	}
}

// Register adds a definition. A bean name, explicit or derived from the
// type, can be registered once whatever the type behind it.
func (r *Registry) Register(def BeanDefinition) error {
	if err := def.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return ErrAlreadyStarted
	}
	if existing, ok := r.definitions[def.Key]; ok {
		return &DuplicateDefinitionError{Key: def.Key, ExistingKey: existing.Key, Existing: existing.Scope}
	}
	if existing, ok := r.names[def.Name()]; ok {
		return &DuplicateDefinitionError{Key: def.Key, ExistingKey: existing.Key, Existing: existing.Scope}
	}

	stored := def.clone()
	r.definitions[def.Key] = stored
	r.names[stored.Name()] = stored
	r.order = append(r.order, stored)
	return nil
}

// Lookup returns the definition registered under exactly key.
func (r *Registry) Lookup(key BeanKey) (*BeanDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[key]
	return def, ok
}

// LookupByType returns every definition that satisfies t, in registration
// order.
func (r *Registry) LookupByType(t reflect.Type) []*BeanDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*BeanDefinition
	for _, def := range r.order {
		if def.Key.satisfies(t) {
			out = append(out, def)
		}
	}
	return out
}

// Definitions returns all definitions in registration order.
func (r *Registry) Definitions() []*BeanDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*BeanDefinition, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// qualify records that owner's unnamed dependency on t means the bean named
// name.
func (r *Registry) qualify(owner BeanKey, t reflect.Type, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return ErrAlreadyStarted
	}
	if _, ok := r.qualifiers[owner]; !ok {
		r.qualifiers[owner] = make(map[reflect.Type]string)
	}
	r.qualifiers[owner][t] = name
	return nil
}

func (r *Registry) qualifier(owner BeanKey, t reflect.Type) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.qualifiers[owner][t]
	return name, ok
}

func (r *Registry) seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}
