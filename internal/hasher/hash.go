package hasher

import (
	"fmt"

	"github.com/russellromney/argon2bind/internal/phc"
	"github.com/russellromney/argon2bind/internal/resolver"
)

// Hash returns the PHC encoded Argon2 hash of password under the
// configuration resolved from in.
//
// A caller contract violation or a failing randomness source panics. If
// derivation fails, including an output length the PHC digest cannot hold,
// Hash logs the cause and returns "".
func (h *Hasher) Hash(password string, in resolver.Inputs) string {
	encoded, err := h.HashStrict(password, in)
	if err != nil {
		if fatal(err) {
			panic(err)
		}
		h.logger.Printf("hash: derivation failed, returning empty hash: %v", err)
		return ""
	}
	return encoded
}

// HashStrict is Hash with every failure returned as an error. Contract
// violations are *resolver.ContractError values; a failing randomness
// source wraps ErrEntropy. Both are fatal for Hash. An output length outside
// [phc.MinDigestLength, phc.MaxDigestLength] wraps phc.ErrOutputSize.
func (h *Hasher) HashStrict(password string, in resolver.Inputs) (string, error) {
	cfg, err := resolver.Resolve(in)
	if err != nil {
		return "", contract("hash", err)
	}

	salt, err := h.salt()
	if err != nil {
		return "", fmt.Errorf("hash: %w", err)
	}

	if n := cfg.Params.OutputLen; n < phc.MinDigestLength || n > phc.MaxDigestLength {
		return "", fmt.Errorf("hash: %w: output length %d, want %d to %d bytes",
			phc.ErrOutputSize, n, phc.MinDigestLength, phc.MaxDigestLength)
	}

	digest, err := h.derive(cfg, cfg.Algorithm, cfg.Version, cfg.Params, []byte(password), salt, nil)
	if err != nil {
		return "", fmt.Errorf("hash: %w", err)
	}

	encoded := &phc.Hash{
		Ident:   cfg.Algorithm.Ident(),
		Version: uint32(cfg.Version),
		Memory:  cfg.Params.Memory,
		Time:    cfg.Params.Time,
		Lanes:   cfg.Params.Lanes,
		Salt:    salt,
		Digest:  digest,
	}
	return encoded.String(), nil
}
