package container_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-beans/framework/container"
)

// tracer is a singleton that needs the current request's CorrelationID.
type tracer struct {
	ids container.ObjectProvider[*CorrelationID]
}

func (tr *tracer) Current(ctx context.Context) (string, error) {
	id, err := tr.ids.Get(ctx)
	if err != nil {
		return "", err
	}
	return id.Value, nil
}

func newTracerContainer(t *testing.T) *container.Container {
	t.Helper()
	c := container.New()
	registerCorrelationID(t, c, nil)
	require.NoError(t, container.Bind(c, "", container.Singleton,
		func(_ context.Context, args container.Args) (*tracer, error) {
			ids, err := container.LazyArg[*CorrelationID](args, 0)
			if err != nil {
				return nil, err
			}
			return &tracer{ids: ids}, nil
		}, container.Key[*CorrelationID]()))
	start(t, c)
	return c
}

// ── Provider ──────────────────────────────────────────────────────────────────

func TestProvider_SingletonSeesEachRequest(t *testing.T) {
	c := newTracerContainer(t)
	tr := container.MustResolve[*tracer](context.Background(), c)

	for _, id := range []string{"req-1", "req-2"} {
		err := c.WithRequestScope(context.Background(), id, func(ctx context.Context) error {
			got, err := tr.Current(ctx)
			require.NoError(t, err)
			assert.Equal(t, id, got)

			// same scope, same instance
			direct := container.MustResolve[*CorrelationID](ctx, c)
			viaProvider, err := tr.ids.Get(ctx)
			require.NoError(t, err)
			assert.Same(t, direct, viaProvider)
			return nil
		})
		require.NoError(t, err)
	}

	// the singleton itself is never rebuilt
	assert.Same(t, tr, container.MustResolve[*tracer](context.Background(), c))
}

func TestProvider_OutsideScope(t *testing.T) {
	c := newTracerContainer(t)
	tr := container.MustResolve[*tracer](context.Background(), c)

	_, err := tr.Current(context.Background())

	var noScope *container.NoActiveScopeError
	assert.ErrorAs(t, err, &noScope)
}

func TestProvider_AfterScopeEnded(t *testing.T) {
	c := newTracerContainer(t)
	tr := container.MustResolve[*tracer](context.Background(), c)

	ctx, err := c.BeginRequestScope(context.Background(), "req-1")
	require.NoError(t, err)
	require.NoError(t, c.EndRequestScope("req-1"))

	_, err = tr.Current(ctx)

	var noScope *container.NoActiveScopeError
	assert.ErrorAs(t, err, &noScope)
}

func TestProvider_Key(t *testing.T) {
	c := newTracerContainer(t)
	tr := container.MustResolve[*tracer](context.Background(), c)

	assert.Equal(t, container.Key[*CorrelationID](), tr.ids.Key())
	assert.NotNil(t, tr.ids.Provider())
}

func TestProviderFor(t *testing.T) {
	c := newTracerContainer(t)

	ids, err := container.ProviderFor[*CorrelationID](c)
	require.NoError(t, err)

	err = c.WithRequestScope(context.Background(), "req-9", func(ctx context.Context) error {
		id, err := ids.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "req-9", id.Value)
		return nil
	})
	assert.NoError(t, err)

	_, err = container.ProviderFor[DiscountPolicy](c)
	var missing *container.NoSuchBeanError
	assert.ErrorAs(t, err, &missing)
}

func TestProviderFor_BeforeStart(t *testing.T) {
	c := container.New()
	var built atomic.Int32
	require.NoError(t, container.Bind(c, "", container.Singleton,
		func(context.Context, container.Args) (*ratePolicy, error) {
			built.Add(1)
			return &ratePolicy{percent: 10}, nil
		}))

	_, err := container.ProviderFor[*ratePolicy](c)
	assert.ErrorIs(t, err, container.ErrNotStarted)
	assert.Zero(t, built.Load())

	start(t, c)
	policies, err := container.ProviderFor[*ratePolicy](c)
	require.NoError(t, err)
	_, err = policies.Get(context.Background())
	assert.NoError(t, err)
	assert.EqualValues(t, 1, built.Load())

	require.NoError(t, c.Shutdown(context.Background()))
	_, err = container.ProviderFor[*ratePolicy](c)
	assert.ErrorIs(t, err, container.ErrAlreadyShutdown)
}

func TestObjectProvider_Unbound(t *testing.T) {
	var ids container.ObjectProvider[*CorrelationID]

	_, err := ids.Get(context.Background())
	assert.Error(t, err)
	assert.Equal(t, container.BeanKey{}, ids.Key())
}

func TestLazyArg_DirectArgument(t *testing.T) {
	args := container.Args{&CorrelationID{}}

	_, err := container.LazyArg[*CorrelationID](args, 0)
	assert.Error(t, err)

	_, err = container.LazyArg[*CorrelationID](args, 3)
	assert.Error(t, err)
}

func TestArg_WrongType(t *testing.T) {
	args := container.Args{&ratePolicy{}}

	_, err := container.Arg[*fixPolicy](args, 0)
	assert.Error(t, err)

	p, err := container.Arg[DiscountPolicy](args, 0)
	require.NoError(t, err)
	assert.NotNil(t, p)
}
