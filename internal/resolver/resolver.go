package resolver

import (
	"errors"
	"fmt"
	"math"

	"github.com/russellromney/argon2bind/internal/argon2"
)

var (
	// ErrUnknownVersion is returned when a version code maps to no Argon2 version
	ErrUnknownVersion = errors.New("unknown argon2 version")
	// ErrInvalidParams is returned when cost parameters fall outside the Argon2 domain
	ErrInvalidParams = errors.New("invalid argon2 parameters")
	// ErrInvalidSecret is returned when the pepper is too long to be used as a secret
	ErrInvalidSecret = errors.New("invalid argon2 secret")
)

// ContractError marks a caller contract violation. These are fatal: host
// facing entry points panic with them instead of substituting a default.
type ContractError struct {
	Op  string
	Err error
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ContractError) Unwrap() error {
	return e.Err
}

// IsContractError reports whether err is or wraps a *ContractError
func IsContractError(err error) bool {
	var ce *ContractError
	return errors.As(err, &ce)
}

// Inputs are the raw values a host supplies for one hash or verify call
type Inputs struct {
	Algorithm     string `json:"algorithm"`
	Version       uint32 `json:"version"`
	Pepper        string `json:"pepper"`
	MemoryCost    uint32 `json:"memory_cost"`
	IterationCost uint32 `json:"iteration_cost"`
	Parallelism   uint32 `json:"parallelism"`
	OutputLen     uint32 `json:"output_len"`
}

// Params are the Argon2 cost parameters
type Params struct {
	Memory    uint32
	Time      uint32
	Lanes     uint32
	OutputLen uint32
}

// Config fully determines a runnable Argon2 instance. It is built per call
// and never mutated.
type Config struct {
	Algorithm argon2.Algorithm
	Version   argon2.Version
	Params    Params
	secret    []byte
}

// Keyed reports whether a pepper is mixed in as the Argon2 secret
func (c Config) Keyed() bool {
	return len(c.secret) > 0
}

// Secret returns a copy of the pepper bytes, or nil for an unkeyed config
func (c Config) Secret() []byte {
	if len(c.secret) == 0 {
		return nil
	}
	return append([]byte(nil), c.secret...)
}

// Resolve maps raw host inputs to a Config.
//
// The algorithm name is parsed leniently; version and costs are not. Any
// error returned is a *ContractError.
func Resolve(in Inputs) (Config, error) {
	version, err := ParseVersion(in.Version)
	if err != nil {
		return Config{}, &ContractError{Op: "resolve", Err: err}
	}

	params, err := NewParams(in.MemoryCost, in.IterationCost, in.Parallelism, in.OutputLen)
	if err != nil {
		return Config{}, &ContractError{Op: "resolve", Err: err}
	}

	cfg := Config{
		Algorithm: ParseAlgorithm(in.Algorithm),
		Version:   version,
		Params:    params,
	}

	// An empty pepper selects the unkeyed construction
	if len(in.Pepper) > 0 {
		if uint64(len(in.Pepper)) > math.MaxUint32 {
			return Config{}, &ContractError{Op: "resolve", Err: ErrInvalidSecret}
		}
		cfg.secret = []byte(in.Pepper)
	}

	return cfg, nil
}

// ParseAlgorithm matches name exactly against "Argon2i", "Argon2d" and
// "Argon2id". Anything else, including "", yields Argon2id.
//
// This leniency is intentional and differs from ParseVersion: callers always
// get a usable variant. Do not turn it into an error.
func ParseAlgorithm(name string) argon2.Algorithm {
	switch name {
	case "Argon2i":
		return argon2.Argon2i
	case "Argon2d":
		return argon2.Argon2d
	case "Argon2id":
		return argon2.Argon2id
	default:
		return argon2.Argon2id
	}
}

// ParseVersion maps an integer version code (16 or 19) to an argon2.Version
func ParseVersion(code uint32) (argon2.Version, error) {
	switch argon2.Version(code) {
	case argon2.V10:
		return argon2.V10, nil
	case argon2.V13:
		return argon2.V13, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownVersion, code)
	}
}

// NewParams packs the four cost values, rejecting those the Argon2 primitive
// cannot run with.
func NewParams(memory, time, lanes, outputLen uint32) (Params, error) {
	if time < argon2.MinTime {
		return Params{}, fmt.Errorf("%w: iteration cost must be >= %d, got %d", ErrInvalidParams, argon2.MinTime, time)
	}
	if lanes < argon2.MinLanes || lanes > argon2.MaxLanes {
		return Params{}, fmt.Errorf("%w: parallelism must be in [%d, %d], got %d",
			ErrInvalidParams, argon2.MinLanes, argon2.MaxLanes, lanes)
	}
	if memory < argon2.MinMemory || uint64(memory) < 8*uint64(lanes) {
		return Params{}, fmt.Errorf("%w: memory cost (%d KiB) must be >= 8*parallelism (%d KiB)",
			ErrInvalidParams, memory, 8*uint64(lanes))
	}
	if outputLen < argon2.MinKeyLength {
		return Params{}, fmt.Errorf("%w: output length must be >= %d, got %d", ErrInvalidParams, argon2.MinKeyLength, outputLen)
	}

	return Params{
		Memory:    memory,
		Time:      time,
		Lanes:     lanes,
		OutputLen: outputLen,
	}, nil
}
