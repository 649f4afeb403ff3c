package kafka

import "github.com/okian/coursecorrect/pkg/logger"

// Option applies a configuration option to the Consumer.
type Option func(*Consumer)

// WithLogger sets a custom logger for the consumer.
func WithLogger(l logger.Logger) Option {
	return func(c *Consumer) {
		if l != nil {
			c.logger = l
		}
	}
}
