package hasher

import (
	"errors"

	"github.com/russellromney/argon2bind/internal/config"
	"github.com/russellromney/argon2bind/internal/diag"
	"github.com/russellromney/argon2bind/internal/resolver"
)

// ErrNotInitialized is returned when a Configured is built before the
// process diagnostic hook is installed.
var ErrNotInitialized = errors.New("argon2 has not yet been initialized: call diag.Install first")

// Configured binds a Hasher to one parameter set
type Configured struct {
	h  *Hasher
	in resolver.Inputs
}

// NewConfigured applies opts over the defaults in cfg. A nil h uses the
// default Hasher and a nil cfg uses config.New().
func NewConfigured(h *Hasher, cfg *config.Config, opts config.Options) (*Configured, error) {
	if !diag.Installed() {
		return nil, ErrNotInitialized
	}
	if h == nil {
		h = defaultHasher
	}
	if cfg == nil {
		cfg = config.New()
	}
	return &Configured{h: h, in: cfg.Inputs(opts)}, nil
}

// Inputs returns the parameter set the Configured was built with
func (c *Configured) Inputs() resolver.Inputs {
	return c.in
}

// Hash hashes password, see Hasher.Hash
func (c *Configured) Hash(password string) string {
	return c.h.Hash(password, c.in)
}

// Verify checks password against hash, see Hasher.Verify
func (c *Configured) Verify(password, hash string) bool {
	return c.h.Verify(password, hash, c.in)
}
