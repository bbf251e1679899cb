package models

import "github.com/russellromney/argon2bind/internal/resolver"

// Operations understood by the JSON-lines host
const (
	OpHash   = "hash"
	OpVerify = "verify"
)

// Request is one line of input to the JSON-lines host. The Argon2 inputs
// are flattened into the same object.
type Request struct {
	ID       string `json:"id,omitempty"`
	Op       string `json:"op"`
	Password string `json:"password"`
	Hash     string `json:"hash,omitempty"` // verify only
	resolver.Inputs
}

// Response is one line of output. Hash is set for hash requests (possibly
// to ""), Match for verify requests, Error when the call failed.
type Response struct {
	ID    string  `json:"id"`
	Hash  *string `json:"hash,omitempty"`
	Match *bool   `json:"match,omitempty"`
	Error string  `json:"error,omitempty"`
}
