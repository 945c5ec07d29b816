package container

import (
	"context"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var errScopeEnded = errors.New("scope ended")

// scopeKey is the context key carrying the active request ScopeContext.
type scopeKey struct{}

// ── ScopeContext ──────────────────────────────────────────────────────────────

// ScopeContext is one instance cache: the container-wide singleton cache, or
// the cache of a single request.
type ScopeContext struct {
	ID        string
	Kind      Scope
	CreatedAt time.Time

	mu      sync.Mutex
	entries map[BeanKey]*scopeEntry
	created []any // creation order, closed in reverse
	ended   bool
}

// scopeEntry serializes construction of one bean inside one scope.
type scopeEntry struct {
	mu       sync.Mutex
	ready    atomic.Bool
	instance any
}

func newScopeContext(id string, kind Scope) *ScopeContext {
	return &ScopeContext{
		ID:        id,
		Kind:      kind,
		CreatedAt: time.Now(),
		entries:   make(map[BeanKey]*scopeEntry),
	}
}

// getOrCreate returns the cached instance for key, calling create at most
// once per key no matter how many goroutines race on the first call.
func (s *ScopeContext) getOrCreate(key BeanKey, create func() (any, error)) (any, error) {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return nil, errScopeEnded
	}
	e, ok := s.entries[key]
	if !ok {
		e = &scopeEntry{}
		s.entries[key] = e
	}
	s.mu.Unlock()

	if e.ready.Load() {
		return e.instance, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ready.Load() {
		return e.instance, nil
	}

	instance, err := create()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		_ = closeInstance(instance)
		return nil, errScopeEnded
	}
	s.created = append(s.created, instance)
	s.mu.Unlock()

	e.instance = instance
	e.ready.Store(true)
	return instance, nil
}

// Len returns the number of instances built in this scope so far.
func (s *ScopeContext) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.created)
}

// Ended reports whether the scope has been torn down.
func (s *ScopeContext) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// end releases every instance, closing io.Closer beans in reverse creation
// order. Closers left when ctx expires are skipped.
func (s *ScopeContext) end(ctx context.Context) error {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return nil
	}
	s.ended = true
	created := s.created
	s.created = nil
	s.entries = nil
	s.mu.Unlock()

	var err error
	for i := len(created) - 1; i >= 0; i-- {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = multierr.Append(err, ctxErr)
			break
		}
		err = multierr.Append(err, closeInstance(created[i]))
	}
	return err
}

func closeInstance(instance any) error {
	if closer, ok := instance.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// ── ScopeStore ────────────────────────────────────────────────────────────────

// ScopeStore owns the singleton ScopeContext and every active request
// ScopeContext.
//
// The request scope in effect for a call is the one attached to its
// context.Context by BeginRequestScope. There is no process-wide "current"
// scope, so concurrent requests never see each other's beans.
type ScopeStore struct {
	singletons *ScopeContext

	mu       sync.RWMutex
	requests map[string]*ScopeContext

	log *zap.Logger
}

// NewScopeStore creates a store with an empty singleton scope.
func NewScopeStore(log *zap.Logger) *ScopeStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &ScopeStore{
		singletons: newScopeContext("singleton", Singleton),
		requests:   make(map[string]*ScopeContext),
		log:        log,
	}
}

// GetOrCreate returns the instance for key in the scope of the given kind,
// building it with create on first use.
func (s *ScopeStore) GetOrCreate(ctx context.Context, key BeanKey, kind Scope, create func(context.Context) (any, error)) (any, error) {
	build := func() (any, error) { return create(ctx) }

	switch kind {
	case Singleton:
		instance, err := s.singletons.getOrCreate(key, build)
		if errors.Is(err, errScopeEnded) {
			return nil, ErrAlreadyShutdown
		}
		return instance, err

	case Request:
		sc := s.Current(ctx)
		if sc == nil {
			return nil, &NoActiveScopeError{Key: key}
		}
		instance, err := sc.getOrCreate(key, build)
		if errors.Is(err, errScopeEnded) {
			return nil, &NoActiveScopeError{Key: key}
		}
		return instance, err

	default:
		return nil, errors.Errorf("bean %s has unknown scope %d", key, int(kind))
	}
}

// BeginRequestScope opens an empty request scope and returns ctx with the
// scope attached. An empty id is replaced by a random UUID.
//
//	ctx, err := store.BeginRequestScope(r.Context(), "")
//	defer store.EndRequestScope(container.ScopeFrom(ctx).ID)
func (s *ScopeStore) BeginRequestScope(ctx context.Context, id string) (context.Context, error) {
	if id == "" {
		id = uuid.NewString()
	}

	s.mu.Lock()
	if _, exists := s.requests[id]; exists {
		s.mu.Unlock()
		return ctx, errors.Wrapf(ErrScopeExists, "scope %q", id)
	}
	sc := newScopeContext(id, Request)
	s.requests[id] = sc
	s.mu.Unlock()

	s.log.Debug("request scope begun", zap.String("scope_id", id))
	return context.WithValue(ctx, scopeKey{}, sc), nil
}

// EndRequestScope tears down the request scope with the given id. Contexts
// that still carry it no longer see an active scope.
func (s *ScopeStore) EndRequestScope(id string) error {
	s.mu.Lock()
	sc, ok := s.requests[id]
	delete(s.requests, id)
	s.mu.Unlock()

	if !ok {
		return &NoActiveScopeError{ScopeID: id}
	}

	beans := sc.Len()
	err := sc.end(context.Background())
	s.log.Debug("request scope ended",
		zap.String("scope_id", id),
		zap.Int("beans", beans),
		zap.Duration("age", time.Since(sc.CreatedAt)),
		zap.Error(err),
	)
	return errors.Wrapf(err, "ending request scope %q", id)
}

// Current returns the active request scope attached to ctx, or nil.
func (s *ScopeStore) Current(ctx context.Context) *ScopeContext {
	sc := ScopeFrom(ctx)
	if sc == nil || sc.Ended() {
		return nil
	}
	return sc
}

// Singletons returns the singleton scope.
func (s *ScopeStore) Singletons() *ScopeContext { return s.singletons }

// ActiveScopes returns the ids of all open request scopes, sorted.
func (s *ScopeStore) ActiveScopes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.requests))
	for id := range s.requests {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close ends every open request scope, then the singleton scope.
func (s *ScopeStore) Close(ctx context.Context) error {
	s.mu.Lock()
	requests := s.requests
	s.requests = make(map[string]*ScopeContext)
	s.mu.Unlock()

	var err error
	for id, sc := range requests {
		if endErr := sc.end(ctx); endErr != nil {
			err = multierr.Append(err, errors.Wrapf(endErr, "ending request scope %q", id))
		}
	}
	return multierr.Append(err, s.singletons.end(ctx))
}

// ScopeFrom returns the request ScopeContext attached to ctx, or nil. The
// returned scope may already have ended.
func ScopeFrom(ctx context.Context) *ScopeContext {
	sc, _ := ctx.Value(scopeKey{}).(*ScopeContext)
	return sc
}
