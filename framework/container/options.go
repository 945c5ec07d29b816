package container

import "go.uber.org/zap"

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger for registration, bean creation and scope
// events. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(c *Container) {
		if log != nil {
			c.log = log.Named("container")
		}
	}
}
