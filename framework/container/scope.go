package container

// Scope controls how many instances of a bean exist and for how long.
type Scope int

const (
	// Singleton beans are built once, during Start, and shared for the
	// lifetime of the container.
	Singleton Scope = iota

	// Request beans are built at most once per request scope, on first use,
	// and discarded when that scope ends.
	Request
)

// String returns the human-readable name of the scope.
func (s Scope) String() string {
	switch s {
	case Singleton:
		return "singleton"
	case Request:
		return "request"
	default:
		return "unknown"
	}
}
