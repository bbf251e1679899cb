// Package hasher hashes and verifies passwords with Argon2 from raw host
// inputs.
//
// Host facing methods (Hash, Verify) never return errors. Caller contract
// violations panic with a *resolver.ContractError, a derivation failure in
// Hash yields "", and a mismatch in Verify yields false. The Strict variants
// return the underlying errors instead.
package hasher

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/russellromney/argon2bind/internal/argon2"
	"github.com/russellromney/argon2bind/internal/resolver"
)

// SaltLength is the number of random bytes drawn per hash
const SaltLength = 16

// ErrEntropy is returned when the randomness source cannot supply a salt
var ErrEntropy = errors.New("failed to generate salt")

// Hasher is immutable after construction and safe for concurrent use as
// long as its randomness source is.
type Hasher struct {
	rand   io.Reader
	logger *log.Logger
	kdf    func(argon2.Input) ([]byte, error)
}

// New creates a Hasher. A nil random uses crypto/rand; a nil logger discards.
func New(random io.Reader, logger *log.Logger) *Hasher {
	if random == nil {
		random = rand.Reader
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Hasher{rand: random, logger: logger, kdf: argon2.Derive}
}

var defaultHasher = New(nil, nil)

// Hash hashes password with the default Hasher
func Hash(password string, in resolver.Inputs) string {
	return defaultHasher.Hash(password, in)
}

// Verify checks password against hash with the default Hasher
func Verify(password, hash string, in resolver.Inputs) bool {
	return defaultHasher.Verify(password, hash, in)
}

// fatal reports whether err must halt the call instead of degrading
func fatal(err error) bool {
	return resolver.IsContractError(err) || errors.Is(err, ErrEntropy)
}

// contract tags err as a caller contract violation of op
func contract(op string, err error) error {
	var ce *resolver.ContractError
	if errors.As(err, &ce) {
		return &resolver.ContractError{Op: op, Err: ce.Err}
	}
	return &resolver.ContractError{Op: op, Err: err}
}

func (h *Hasher) salt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := io.ReadFull(h.rand, salt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEntropy, err)
	}
	return salt, nil
}

func (h *Hasher) derive(cfg resolver.Config, alg argon2.Algorithm, version argon2.Version, p resolver.Params, password, salt, data []byte) ([]byte, error) {
	return h.kdf(argon2.Input{
		Algorithm: alg,
		Version:   version,
		Password:  password,
		Salt:      salt,
		Secret:    cfg.Secret(),
		Data:      data,
		Time:      p.Time,
		Memory:    p.Memory,
		Lanes:     p.Lanes,
		KeyLength: p.OutputLen,
	})
}
