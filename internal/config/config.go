package config

import (
	"github.com/russellromney/argon2bind/internal/resolver"
)

// Defaults applied to any option left at its zero value
const (
	// DefaultAlgorithm is the Argon2 variant name
	DefaultAlgorithm = "Argon2id"
	// DefaultVersion is Argon2 version 1.3
	DefaultVersion = 19
	// DefaultMemoryCost is the memory cost in KiB (4 MiB)
	DefaultMemoryCost = 4096
	// DefaultIterationCost is the number of passes over memory
	DefaultIterationCost = 3
	// DefaultParallelism is the number of lanes
	DefaultParallelism = 1
	// DefaultOutputLen is the digest length in bytes
	DefaultOutputLen = 32
	// DefaultKeychainService is the OS keychain service peppers are stored under
	DefaultKeychainService = "argon2bind"
)

// Options are the host supplied settings for a configured hasher. Zero
// values mean "use the default"; an empty Pepper means no pepper.
type Options struct {
	Algorithm     string
	Version       uint32
	Pepper        string
	MemoryCost    uint32
	IterationCost uint32
	Parallelism   uint32
	OutputLen     uint32
}

// Config holds the defaults of a host
type Config struct {
	// Defaults fills zero valued options; its Pepper is ignored
	Defaults resolver.Inputs
	// KeychainService is the OS keychain service name for stored peppers
	KeychainService string
}

// New creates a Config with the built-in defaults
func New() *Config {
	return NewWithDefaults(resolver.Inputs{
		Algorithm:     DefaultAlgorithm,
		Version:       DefaultVersion,
		MemoryCost:    DefaultMemoryCost,
		IterationCost: DefaultIterationCost,
		Parallelism:   DefaultParallelism,
		OutputLen:     DefaultOutputLen,
	})
}

// NewWithDefaults creates a Config with custom defaults
func NewWithDefaults(defaults resolver.Inputs) *Config {
	defaults.Pepper = ""
	return &Config{
		Defaults:        defaults,
		KeychainService: DefaultKeychainService,
	}
}

// Inputs merges opts over the defaults
func (c *Config) Inputs(opts Options) resolver.Inputs {
	in := c.Defaults
	if opts.Algorithm != "" {
		in.Algorithm = opts.Algorithm
	}
	if opts.Version != 0 {
		in.Version = opts.Version
	}
	in.Pepper = opts.Pepper
	if opts.MemoryCost != 0 {
		in.MemoryCost = opts.MemoryCost
	}
	if opts.IterationCost != 0 {
		in.IterationCost = opts.IterationCost
	}
	if opts.Parallelism != 0 {
		in.Parallelism = opts.Parallelism
	}
	if opts.OutputLen != 0 {
		in.OutputLen = opts.OutputLen
	}
	return in
}
