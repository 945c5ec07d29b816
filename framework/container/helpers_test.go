package container_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-beans/framework/container"
)

// ── fixtures ──────────────────────────────────────────────────────────────────

type DiscountPolicy interface {
	Discount(price int) int
}

type ratePolicy struct{ percent int }

func (p *ratePolicy) Discount(price int) int { return price * p.percent / 100 }

type fixPolicy struct{ amount int }

func (p *fixPolicy) Discount(int) int { return p.amount }

// CorrelationID is a request bean that records when it is closed.
type CorrelationID struct {
	Value  string
	closed atomic.Bool
}

func (c *CorrelationID) Close() error {
	c.closed.Store(true)
	return nil
}

func (c *CorrelationID) Closed() bool { return c.closed.Load() }

// closeLog collects Close calls in order.
type closeLog struct {
	mu    sync.Mutex
	names []string
}

func (l *closeLog) add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.names = append(l.names, name)
}

func (l *closeLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.names...)
}

type closer struct {
	name string
	log  *closeLog
}

func (c *closer) Close() error {
	c.log.add(c.name)
	return nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

func registerPolicies(t *testing.T, c *container.Container) {
	t.Helper()
	require.NoError(t, container.Bind(c, "rateDiscountPolicy", container.Singleton,
		func(context.Context, container.Args) (DiscountPolicy, error) {
			return &ratePolicy{percent: 10}, nil
		}))
	require.NoError(t, container.Bind(c, "fixDiscountPolicy", container.Singleton,
		func(context.Context, container.Args) (DiscountPolicy, error) {
			return &fixPolicy{amount: 1000}, nil
		}))
}

// registerCorrelationID registers a request bean whose value is the scope id.
func registerCorrelationID(t *testing.T, c *container.Container, built *atomic.Int32) {
	t.Helper()
	require.NoError(t, container.Bind(c, "", container.Request,
		func(ctx context.Context, _ container.Args) (*CorrelationID, error) {
			if built != nil {
				built.Add(1)
			}
			return &CorrelationID{Value: container.ScopeFrom(ctx).ID}, nil
		}))
}

func start(t *testing.T, c *container.Container) {
	t.Helper()
	require.NoError(t, c.Start(context.Background()))
	t.Cleanup(func() { _ = c.Shutdown(context.Background()) })
}
