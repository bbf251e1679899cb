package hasher

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/russellromney/argon2bind/internal/argon2"
	"github.com/russellromney/argon2bind/internal/phc"
	"github.com/russellromney/argon2bind/internal/resolver"
)

// ErrUnusableHash is returned by VerifyStrict for a well-formed hash that
// cannot be checked: a foreign identifier, an unknown version, costs
// outside the Argon2 domain or a missing salt or hash.
var ErrUnusableHash = errors.New("hash cannot be verified")

// Verify reports whether password matches hash.
//
// Only the pepper is taken from in; algorithm, version, costs and output
// length come from hash itself. A malformed hash or a contract violation in
// in panics. Any other failure is reported as false.
func (h *Hasher) Verify(password, hash string, in resolver.Inputs) bool {
	ok, err := h.VerifyStrict(password, hash, in)
	if err != nil && fatal(err) {
		panic(err)
	}
	return ok
}

// VerifyStrict is Verify with the reason for a non-match returned. A plain
// password mismatch is (false, nil).
func (h *Hasher) VerifyStrict(password, hash string, in resolver.Inputs) (bool, error) {
	cfg, err := resolver.Resolve(in)
	if err != nil {
		return false, contract("verify", err)
	}

	parsed, err := phc.Parse(hash)
	if err != nil {
		return false, contract("verify", err)
	}

	if len(parsed.Salt) == 0 || len(parsed.Digest) == 0 {
		return false, fmt.Errorf("%w: no salt or hash", ErrUnusableHash)
	}

	alg, ok := algorithmFromIdent(parsed.Ident)
	if !ok {
		return false, fmt.Errorf("%w: identifier %q", ErrUnusableHash, parsed.Ident)
	}
	version, err := resolver.ParseVersion(parsed.Version)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnusableHash, err)
	}
	params, err := resolver.NewParams(parsed.Memory, parsed.Time, parsed.Lanes, uint32(len(parsed.Digest)))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnusableHash, err)
	}

	computed, err := h.derive(cfg, alg, version, params, []byte(password), parsed.Salt, parsed.Data)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnusableHash, err)
	}

	return subtle.ConstantTimeCompare(computed, parsed.Digest) == 1, nil
}

func algorithmFromIdent(ident string) (argon2.Algorithm, bool) {
	for _, alg := range []argon2.Algorithm{argon2.Argon2d, argon2.Argon2i, argon2.Argon2id} {
		if alg.Ident() == ident {
			return alg, true
		}
	}
	return 0, false
}
