package container

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrAlreadyStarted is returned when registering after Start, or when
	// Start is called twice.
	ErrAlreadyStarted = errors.New("container already started")

	// ErrNotStarted is returned when resolving before Start.
	ErrNotStarted = errors.New("container not started")

	// ErrAlreadyShutdown is returned by every Shutdown call after the first.
	ErrAlreadyShutdown = errors.New("container already shut down")

	// ErrScopeExists is returned when a request scope id is already active.
	ErrScopeExists = errors.New("request scope already active")
)

// ── Startup errors ────────────────────────────────────────────────────────────

// DuplicateDefinitionError reports a definition whose key or bean name is
// already taken. ExistingKey differs from Key when only the name clashes.
type DuplicateDefinitionError struct {
	Key         BeanKey
	ExistingKey BeanKey
	Existing    Scope
}

func (e *DuplicateDefinitionError) Error() string {
	if e.ExistingKey != e.Key {
		return fmt.Sprintf("duplicate bean definition: %s (name already used by %s, %s)", e.Key, e.ExistingKey, e.Existing)
	}
	return fmt.Sprintf("duplicate bean definition: %s (already registered as %s)", e.Key, e.Existing)
}

// UnresolvedDependencyError reports a declared dependency that does not
// resolve to exactly one registered definition. Cause is the lookup failure,
// a *NoSuchBeanError or an *AmbiguousBeanError.
type UnresolvedDependencyError struct {
	Bean       BeanKey
	Dependency BeanKey
	Cause      error
}

func (e *UnresolvedDependencyError) Error() string {
	return fmt.Sprintf("bean %s: unresolved dependency %s: %v", e.Bean, e.Dependency, e.Cause)
}

func (e *UnresolvedDependencyError) Unwrap() error { return e.Cause }

// CyclicDependencyError reports a construction cycle. Chain starts and ends
// with the same key.
type CyclicDependencyError struct {
	Chain []BeanKey
}

func (e *CyclicDependencyError) Error() string {
	parts := make([]string, len(e.Chain))
	for i, k := range e.Chain {
		parts[i] = k.String()
	}
	return "circular dependency detected: " + strings.Join(parts, " -> ")
}

// ── Resolution errors ─────────────────────────────────────────────────────────

// NoSuchBeanError reports a lookup that matched no definition.
type NoSuchBeanError struct {
	Type reflect.Type
	Name string
}

func (e *NoSuchBeanError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("no bean named %q of type %s", e.Name, e.Type)
	}
	return fmt.Sprintf("no bean of type %s", e.Type)
}

// AmbiguousBeanError reports a type-only lookup that matched several
// definitions. Retry with one of Candidates as the name, or use GetAll.
type AmbiguousBeanError struct {
	Type       reflect.Type
	Candidates []string
}

func (e *AmbiguousBeanError) Error() string {
	return fmt.Sprintf("expected single bean of type %s but found %d: %s",
		e.Type, len(e.Candidates), strings.Join(e.Candidates, ", "))
}

// NoActiveScopeError reports a request-scoped lookup made without an active
// request scope, or an attempt to end a scope that is not active.
type NoActiveScopeError struct {
	Key     BeanKey
	ScopeID string
}

func (e *NoActiveScopeError) Error() string {
	if e.ScopeID != "" {
		return fmt.Sprintf("request scope %q is not active", e.ScopeID)
	}
	return fmt.Sprintf("bean %s is request scoped but no request scope is active", e.Key)
}
