package container

import "reflect"

// BeanKey identifies a bean by capability type and an optional name.
//
//	container.Key[discount.Policy]("rateDiscountPolicy")
//	container.Key[*config.Config]()
type BeanKey struct {
	Type reflect.Type
	Name string
}

// Key builds a BeanKey for T. At most one name is used.
func Key[T any](name ...string) BeanKey {
	k := BeanKey{Type: TypeOf[T]()}
	if len(name) > 0 {
		k.Name = name[0]
	}
	return k
}

// TypeOf returns the reflect.Type of T, including interface types.
//
//	container.TypeOf[discount.Policy]()  // discount.Policy, not a pointer to it
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// String renders the key as "type" or "type#name".
func (k BeanKey) String() string {
	if k.Type == nil {
		return "<nil>#" + k.Name
	}
	if k.Name == "" {
		return k.Type.String()
	}
	return k.Type.String() + "#" + k.Name
}

// satisfies reports whether a bean declared under k can be handed out for a
// request of type t: the same type, or any interface k.Type implements.
func (k BeanKey) satisfies(t reflect.Type) bool {
	if k.Type == t {
		return true
	}
	return t.Kind() == reflect.Interface && k.Type.Implements(t)
}
