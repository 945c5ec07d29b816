package container

import (
	"reflect"

	"github.com/pkg/errors"
)

// ContextualBuilder implements the fluent qualifier API. It picks the named
// bean a consumer receives when its dependency is declared by type only and
// several beans satisfy that type.
//
//	c.When(container.Key[*OrderService]()).
//	    Needs(container.TypeOf[discount.Policy]()).
//	    Give("rateDiscountPolicy")
type ContextualBuilder struct {
	container *Container
	owner     BeanKey
	needs     reflect.Type
}

// Needs specifies the dependency type being qualified.
func (b *ContextualBuilder) Needs(t reflect.Type) *ContextualBuilder {
	b.needs = t
	return b
}

// Give names the bean the consumer should receive. It must be called before
// Start.
func (b *ContextualBuilder) Give(name string) error {
	if b.needs == nil {
		return errors.Errorf("qualifier for %s: Needs was not called", b.owner)
	}
	if name == "" {
		return errors.Errorf("qualifier for %s needs %s: empty bean name", b.owner, b.needs)
	}
	return b.container.registry.qualify(b.owner, b.needs, name)
}
