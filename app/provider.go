// Package app wires the demo application into the container.
package app

import (
	"context"
	"net/http"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/km-arc/go-beans/app/discount"
	"github.com/km-arc/go-beans/app/member"
	"github.com/km-arc/go-beans/app/weblog"
	"github.com/km-arc/go-beans/framework/container"
	gohttp "github.com/km-arc/go-beans/framework/http"
	"github.com/km-arc/go-beans/framework/providers"
	"github.com/km-arc/go-beans/framework/routing"
)

// AppServiceProvider registers the demo beans and mounts their routes.
type AppServiceProvider struct {
	// Members are saved to the repository during Boot.
	Members []member.Member
}

// DefaultMembers seeds the demo repository.
var DefaultMembers = []member.Member{
	{ID: 1, Name: "memberA", Grade: member.VIP},
	{ID: 2, Name: "memberB", Grade: member.Basic},
}

func (p *AppServiceProvider) Register(c *container.Container) error {
	loggerKey := container.Key[*zap.Logger](providers.LoggerBean)
	requestLoggerKey := container.Key[*weblog.RequestLogger]()

	return multierr.Combine(
		// members and discounts
		container.Bind(c, "", container.Singleton,
			func(context.Context, container.Args) (*member.MemoryRepository, error) {
				return member.NewMemoryRepository(), nil
			}),
		container.Bind(c, discount.RateBean, container.Singleton,
			func(context.Context, container.Args) (discount.Policy, error) {
				return discount.NewRatePolicy(10), nil
			}),
		container.Bind(c, discount.FixBean, container.Singleton,
			func(context.Context, container.Args) (discount.Policy, error) {
				return discount.NewFixPolicy(1000), nil
			}),
		container.Bind(c, "", container.Singleton,
			func(_ context.Context, args container.Args) (*discount.Quoter, error) {
				members, err := container.Arg[member.Repository](args, 0)
				if err != nil {
					return nil, err
				}
				policy, err := container.Arg[discount.Policy](args, 1)
				if err != nil {
					return nil, err
				}
				return discount.NewQuoter(members, policy), nil
			},
			container.Key[member.Repository](),
			container.Key[discount.Policy](),
		),
		c.When(container.Key[*discount.Quoter]()).
			Needs(container.TypeOf[discount.Policy]()).
			Give(discount.RateBean),

		// request-scoped logging demo
		container.Bind(c, "", container.Request,
			func(ctx context.Context, args container.Args) (*weblog.RequestLogger, error) {
				log, err := container.Arg[*zap.Logger](args, 0)
				if err != nil {
					return nil, err
				}
				return weblog.NewRequestLogger(ctx, log.Named("weblog")), nil
			}, loggerKey),
		container.Bind(c, "", container.Singleton,
			func(_ context.Context, args container.Args) (*weblog.LogDemoService, error) {
				loggers, err := container.LazyArg[*weblog.RequestLogger](args, 0)
				if err != nil {
					return nil, err
				}
				return weblog.NewLogDemoService(loggers), nil
			}, requestLoggerKey),
		container.Bind(c, "", container.Singleton,
			func(_ context.Context, args container.Args) (*weblog.LogDemoController, error) {
				service, err := container.Arg[*weblog.LogDemoService](args, 0)
				if err != nil {
					return nil, err
				}
				loggers, err := container.LazyArg[*weblog.RequestLogger](args, 1)
				if err != nil {
					return nil, err
				}
				log, err := container.Arg[*zap.Logger](args, 2)
				if err != nil {
					return nil, err
				}
				return weblog.NewLogDemoController(service, loggers, log), nil
			},
			container.Key[*weblog.LogDemoService](),
			requestLoggerKey,
			loggerKey,
		),
	)
}

func (p *AppServiceProvider) Boot(ctx context.Context, c *container.Container) error {
	members, err := container.Resolve[member.Repository](ctx, c)
	if err != nil {
		return err
	}
	seed := p.Members
	if seed == nil {
		seed = DefaultMembers
	}
	for _, m := range seed {
		if err := members.Save(m); err != nil {
			return err
		}
	}

	router, err := container.Resolve[*routing.Router](ctx, c, providers.RouterBean)
	if err != nil {
		return err
	}
	quoter, err := container.Resolve[*discount.Quoter](ctx, c)
	if err != nil {
		return err
	}
	logDemo, err := container.Resolve[*weblog.LogDemoController](ctx, c)
	if err != nil {
		return err
	}

	router.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		gohttp.NewResponse(w).Success(map[string]any{"message": "Welcome to go-beans!"})
	})
	router.Get("/log-demo", logDemo.LogDemo)
	discount.NewController(container.ResolveAll[discount.Policy](ctx, c), quoter).Routes(router)
	return nil
}
