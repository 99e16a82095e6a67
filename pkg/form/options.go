package form

import (
	"time"

	"go.uber.org/zap"
)

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides the time source used for defaults and validation.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger attaches a logger. Nil keeps the no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// OnSuccess registers the callback invoked with the saved record id.
func OnSuccess(fn func(id string)) Option {
	return func(c *Controller) {
		c.onSuccess = fn
	}
}

// OnCancel registers the callback invoked once a cancel is confirmed.
func OnCancel(fn func()) Option {
	return func(c *Controller) {
		c.onCancel = fn
	}
}
