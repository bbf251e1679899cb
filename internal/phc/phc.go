// Package phc reads and writes Argon2 hashes in the PHC string format:
//
//	$argon2id$v=19$m=19456,t=2,p=1$<salt>$<hash>
//
// Salt and hash use the standard base64 alphabet without padding. The
// parameter segment may also carry keyid=<b64> and data=<b64>. The v=
// segment is optional, and so are the trailing salt and hash segments; a
// hash is never present without a salt.
package phc

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultVersion is assumed when the v= segment is absent
const DefaultVersion = 0x13

// Bounds on the length of an encoded digest
const (
	MinDigestLength = 10
	MaxDigestLength = 64
)

var (
	// ErrMalformed is returned when a string is not a syntactically valid PHC hash
	ErrMalformed = errors.New("malformed PHC hash string")
	// ErrOutputSize is returned for a digest outside [MinDigestLength, MaxDigestLength]
	ErrOutputSize = errors.New("digest length out of range")
)

var b64 = base64.RawStdEncoding

// Hash is a decoded PHC string. Ident is kept as written; mapping it to an
// algorithm is left to the caller.
type Hash struct {
	Ident   string
	Version uint32
	Memory  uint32
	Time    uint32
	Lanes   uint32
	KeyID   []byte
	Data    []byte
	Salt    []byte
	Digest  []byte
}

// String encodes h in PHC format
func (h *Hash) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "$%s$v=%d$m=%d,t=%d,p=%d", h.Ident, h.Version, h.Memory, h.Time, h.Lanes)
	if len(h.KeyID) > 0 {
		sb.WriteString(",keyid=")
		sb.WriteString(b64.EncodeToString(h.KeyID))
	}
	if len(h.Data) > 0 {
		sb.WriteString(",data=")
		sb.WriteString(b64.EncodeToString(h.Data))
	}
	if len(h.Salt) > 0 {
		sb.WriteString("$")
		sb.WriteString(b64.EncodeToString(h.Salt))
		if len(h.Digest) > 0 {
			sb.WriteString("$")
			sb.WriteString(b64.EncodeToString(h.Digest))
		}
	}
	return sb.String()
}

// Parse decodes a PHC string. Any syntax problem yields an error wrapping
// ErrMalformed; semantic checks (known ident, legal costs) are not done here.
// A missing salt or hash leaves Salt or Digest nil.
func Parse(s string) (*Hash, error) {
	parts := strings.Split(s, "$")
	// leading "$" gives an empty first element
	if parts[0] != "" || len(parts) < 3 {
		return nil, fmt.Errorf("%w: expected at least 2 segments, got %d", ErrMalformed, len(parts)-1)
	}

	h := &Hash{Ident: parts[1], Version: DefaultVersion}
	if !validIdent(h.Ident) {
		return nil, fmt.Errorf("%w: invalid identifier %q", ErrMalformed, h.Ident)
	}
	rest := parts[2:]

	if strings.HasPrefix(rest[0], "v=") {
		v, err := parseVersion(rest[0])
		if err != nil {
			return nil, err
		}
		h.Version = v
		rest = rest[1:]
	}
	if len(rest) == 0 || len(rest) > 3 {
		return nil, fmt.Errorf("%w: expected parameters, salt and hash, got %d segments", ErrMalformed, len(rest))
	}

	if err := h.parseParams(rest[0]); err != nil {
		return nil, err
	}

	if len(rest) > 1 {
		salt, err := b64.DecodeString(rest[1])
		if err != nil || len(salt) == 0 {
			return nil, fmt.Errorf("%w: invalid salt encoding", ErrMalformed)
		}
		h.Salt = salt
	}
	if len(rest) > 2 {
		digest, err := b64.DecodeString(rest[2])
		if err != nil || len(digest) == 0 {
			return nil, fmt.Errorf("%w: invalid hash encoding", ErrMalformed)
		}
		if len(digest) < MinDigestLength || len(digest) > MaxDigestLength {
			return nil, fmt.Errorf("%w: %w: %d bytes", ErrMalformed, ErrOutputSize, len(digest))
		}
		h.Digest = digest
	}
	return h, nil
}

func parseVersion(s string) (uint32, error) {
	value, _ := strings.CutPrefix(s, "v=")
	v, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid version %q", ErrMalformed, value)
	}
	return uint32(v), nil
}

func (h *Hash) parseParams(s string) error {
	seen := map[string]bool{}
	for _, kv := range strings.Split(s, ",") {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return fmt.Errorf("%w: malformed param %q", ErrMalformed, kv)
		}
		if seen[key] {
			return fmt.Errorf("%w: duplicate param %q", ErrMalformed, key)
		}
		seen[key] = true

		switch key {
		case "m", "t", "p":
			n, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return fmt.Errorf("%w: non-numeric value in %q", ErrMalformed, kv)
			}
			switch key {
			case "m":
				h.Memory = uint32(n)
			case "t":
				h.Time = uint32(n)
			case "p":
				h.Lanes = uint32(n)
			}
		case "keyid", "data":
			b, err := b64.DecodeString(value)
			if err != nil {
				return fmt.Errorf("%w: invalid %s encoding", ErrMalformed, key)
			}
			if key == "keyid" {
				h.KeyID = b
			} else {
				h.Data = b
			}
		default:
			return fmt.Errorf("%w: unsupported param %q", ErrMalformed, key)
		}
	}
	if !seen["m"] || !seen["t"] || !seen["p"] {
		return fmt.Errorf("%w: missing m/t/p in parameter segment %q", ErrMalformed, s)
	}
	return nil
}

// validIdent accepts identifiers made of [a-z0-9-], at most 32 characters
func validIdent(s string) bool {
	if s == "" || len(s) > 32 {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return false
		}
	}
	return true
}
