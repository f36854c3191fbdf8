package facilitydex

import "go.uber.org/zap"

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "redis" or "memory"
	addrs    []string
	password string

	namespace string
	locales   []string
	pageSize  int
	maxRows   int

	logger *zap.Logger
}

// WithRedis configures the client to connect to a Redis 8 instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithMemory keeps the index in process memory. Useful in tests and for
// one-shot exports.
func WithMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "memory"
		c.addrs = nil
	})
}

// WithNamespace prefixes every index and key. Default: "fdx".
func WithNamespace(ns string) Option {
	return optionFunc(func(c *clientConfig) {
		c.namespace = ns
	})
}

// WithLocales sets the locales every translatable name must carry.
// Default: en.
func WithLocales(locales ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.locales = locales
	})
}

// WithDumpLimits sets the dump page size and row cap.
func WithDumpLimits(pageSize, maxRows int) Option {
	return optionFunc(func(c *clientConfig) {
		c.pageSize = pageSize
		c.maxRows = maxRows
	})
}

// WithLogger enables structured logging for indexing runs and dumps.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}
