package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-beans/framework/container"
	gohttp "github.com/km-arc/go-beans/framework/http"
)

// visit is a request bean recording the path that created it.
type visit struct {
	path   string
	closed atomic.Bool
}

func (v *visit) Close() error {
	v.closed.Store(true)
	return nil
}

func newScopedContainer(t *testing.T) *container.Container {
	t.Helper()
	c := container.New()
	require.NoError(t, container.Bind(c, "", container.Request,
		func(ctx context.Context, _ container.Args) (*visit, error) {
			r, ok := gohttp.RequestFrom(ctx)
			if !ok {
				return &visit{}, nil
			}
			return &visit{path: r.URL.Path}, nil
		}))
	require.NoError(t, c.Start(context.Background()))
	t.Cleanup(func() { _ = c.Shutdown(context.Background()) })
	return c
}

func TestRequestScope_OneScopePerRequest(t *testing.T) {
	c := newScopedContainer(t)

	var seen []*visit
	handler := gohttp.RequestScope(c, "X-Request-ID", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a := container.MustResolve[*visit](r.Context(), c)
		b := container.MustResolve[*visit](r.Context(), c)
		assert.Same(t, a, b)
		seen = append(seen, a)
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/one", "/two"} {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))

		require.Equal(t, http.StatusOK, rr.Code)
		_, err := uuid.Parse(rr.Header().Get("X-Request-ID"))
		assert.NoError(t, err, "scope id header should be a UUID")
	}

	require.Len(t, seen, 2)
	assert.NotSame(t, seen[0], seen[1])
	assert.Equal(t, "/one", seen[0].path)
	assert.Equal(t, "/two", seen[1].path)
	assert.True(t, seen[0].closed.Load())
	assert.True(t, seen[1].closed.Load())
	assert.Empty(t, c.ActiveScopes())
}

func TestRequestScope_EndsScopeOnPanic(t *testing.T) {
	c := newScopedContainer(t)

	var v *visit
	handler := gohttp.RequestScope(c, "", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v = container.MustResolve[*visit](r.Context(), c)
		panic("handler failed")
	}))

	assert.Panics(t, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
	require.NotNil(t, v)
	assert.True(t, v.closed.Load())
	assert.Empty(t, c.ActiveScopes())
}

func TestRequestScope_ContainerNotStarted(t *testing.T) {
	c := container.New()
	called := false
	handler := gohttp.RequestScope(c, "", nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.False(t, called)
}

func TestRequestFrom_Missing(t *testing.T) {
	_, ok := gohttp.RequestFrom(context.Background())
	assert.False(t, ok)
}
