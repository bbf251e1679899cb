package hasher

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"sync"
	"testing"

	xargon2 "golang.org/x/crypto/argon2"

	"github.com/russellromney/argon2bind/internal/argon2"
	"github.com/russellromney/argon2bind/internal/phc"
	"github.com/russellromney/argon2bind/internal/resolver"
)

// fastInputs keeps the memory and time costs small so tests stay quick
func fastInputs(algorithm string) resolver.Inputs {
	return resolver.Inputs{
		Algorithm:     algorithm,
		Version:       19,
		MemoryCost:    64,
		IterationCost: 1,
		Parallelism:   1,
		OutputLen:     32,
	}
}

func expectPanic(t *testing.T, fn func()) (recovered any) {
	t.Helper()
	defer func() {
		recovered = recover()
		if recovered == nil {
			t.Error("expected panic")
		}
	}()
	fn()
	return nil
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy exhausted")
}

func TestHashVerifyRoundTrip(t *testing.T) {
	for _, alg := range []string{"Argon2i", "Argon2d", "Argon2id"} {
		for _, version := range []uint32{16, 19} {
			for _, pepper := range []string{"", "pepper"} {
				in := fastInputs(alg)
				in.Version = version
				in.Pepper = pepper

				hash := Hash("password123", in)
				if hash == "" {
					t.Fatalf("Hash(%s, v=%d, pepper=%q) returned empty string", alg, version, pepper)
				}
				if !Verify("password123", hash, in) {
					t.Errorf("Verify(%s, v=%d, pepper=%q) = false, want true", alg, version, pepper)
				}
				if Verify("password124", hash, in) {
					t.Errorf("Verify(wrong password, %s, v=%d, pepper=%q) = true, want false", alg, version, pepper)
				}
			}
		}
	}
}

func TestHashFormat(t *testing.T) {
	in := fastInputs("Argon2d")
	in.Version = 16
	in.Parallelism = 2
	in.OutputLen = 48

	hash := Hash("password", in)
	if !strings.HasPrefix(hash, "$argon2d$v=16$m=64,t=1,p=2$") {
		t.Errorf("Hash() = %s, want $argon2d$v=16$m=64,t=1,p=2$ prefix", hash)
	}

	parsed, err := phc.Parse(hash)
	if err != nil {
		t.Fatalf("phc.Parse() error = %v", err)
	}
	if len(parsed.Salt) != SaltLength {
		t.Errorf("salt length = %d, want %d", len(parsed.Salt), SaltLength)
	}
	if len(parsed.Digest) != 48 {
		t.Errorf("digest length = %d, want 48", len(parsed.Digest))
	}
}

func TestHashUniqueSalt(t *testing.T) {
	in := fastInputs("Argon2id")

	hash1 := Hash("same password", in)
	hash2 := Hash("same password", in)
	if hash1 == hash2 {
		t.Error("Hash() produced identical strings for identical inputs")
	}
	if !Verify("same password", hash1, in) || !Verify("same password", hash2, in) {
		t.Error("Verify() failed for one of two hashes of the same password")
	}
}

func TestUnknownAlgorithmBehavesAsArgon2id(t *testing.T) {
	unknown := fastInputs("Argon2x")
	known := fastInputs("Argon2id")

	hash := Hash("password", unknown)
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("Hash(Argon2x) = %s, want argon2id", hash)
	}
	if !Verify("password", hash, known) {
		t.Error("hash made with Argon2x does not verify with Argon2id")
	}
	if !Verify("password", Hash("password", known), unknown) {
		t.Error("hash made with Argon2id does not verify with Argon2x")
	}
}

func TestPepperSeparation(t *testing.T) {
	unkeyed := fastInputs("Argon2id")
	keyed := fastInputs("Argon2id")
	keyed.Pepper = "pepper"
	other := fastInputs("Argon2id")
	other.Pepper = "other pepper"

	plain := Hash("password", unkeyed)
	if Verify("password", plain, keyed) {
		t.Error("unkeyed hash verified with a pepper")
	}

	peppered := Hash("password", keyed)
	if Verify("password", peppered, unkeyed) {
		t.Error("keyed hash verified without a pepper")
	}
	if Verify("password", peppered, other) {
		t.Error("keyed hash verified with a different pepper")
	}
	if !Verify("password", peppered, keyed) {
		t.Error("keyed hash did not verify with its pepper")
	}
}

func TestHashUnknownVersionPanics(t *testing.T) {
	in := fastInputs("Argon2id")
	in.Version = 18

	r := expectPanic(t, func() { Hash("password", in) })
	err, ok := r.(error)
	if !ok || !resolver.IsContractError(err) || !errors.Is(err, resolver.ErrUnknownVersion) {
		t.Errorf("panic value = %v, want ContractError wrapping ErrUnknownVersion", r)
	}

	// the algorithm name is lenient, the version is not
	in.Algorithm = "Argon2x"
	expectPanic(t, func() { Verify("password", "$argon2id$v=19$m=64,t=1,p=1$c29tZXNhbHQ$aGFzaGhhc2hoYXNoaGFzaA", in) })
}

func TestHashInvalidParamsPanics(t *testing.T) {
	in := fastInputs("Argon2id")
	in.OutputLen = 2

	r := expectPanic(t, func() { Hash("password", in) })
	if err, ok := r.(error); !ok || !errors.Is(err, resolver.ErrInvalidParams) {
		t.Errorf("panic value = %v, want ErrInvalidParams", r)
	}

	_, err := New(nil, nil).HashStrict("password", in)
	var ce *resolver.ContractError
	if !errors.As(err, &ce) || ce.Op != "hash" {
		t.Errorf("HashStrict() error = %v, want ContractError with op hash", err)
	}
}

func TestVerifyMalformedHashPanics(t *testing.T) {
	in := fastInputs("Argon2id")
	malformed := []string{
		"",
		"not-a-hash",
		"$argon2id$v=19$m=64,t=1,p=1$c29tZXNhbHRzb21lc2FsdA$",
		"$argon2id$v=19$m=64,t=1,p=1$c29tZXNhbHRzb21lc2FsdA$aGFzaGhhc2g",
	}
	for _, hash := range malformed {
		r := expectPanic(t, func() { Verify("password", hash, in) })
		if err, ok := r.(error); !ok || !errors.Is(err, phc.ErrMalformed) {
			t.Errorf("Verify(%q) panic value = %v, want ErrMalformed", hash, r)
		}
	}

	_, err := New(nil, nil).VerifyStrict("password", "garbage", in)
	if !resolver.IsContractError(err) {
		t.Errorf("VerifyStrict(garbage) error = %v, want ContractError", err)
	}
}

func TestVerifyUnusableHashIsFalse(t *testing.T) {
	in := fastInputs("Argon2id")
	h := New(nil, nil)

	unusable := []string{
		"$scrypt$v=1$m=64,t=1,p=1$c29tZXNhbHRzb21lc2FsdA$aGFzaGhhc2hoYXNoaGFzaA",
		"$argon2id$v=18$m=64,t=1,p=1$c29tZXNhbHRzb21lc2FsdA$aGFzaGhhc2hoYXNoaGFzaA",
		"$argon2id$v=19$m=64,t=1,p=0$c29tZXNhbHRzb21lc2FsdA$aGFzaGhhc2hoYXNoaGFzaA",
		"$argon2id$v=19$m=64,t=0,p=1$c29tZXNhbHRzb21lc2FsdA$aGFzaGhhc2hoYXNoaGFzaA",
		"$argon2id$v=19$m=64,t=1,p=1$c2FsdA$aGFzaGhhc2hoYXNoaGFzaA",
		"$argon2id$v=19$m=64,t=1,p=1$c29tZXNhbHRzb21lc2FsdA",
		"$argon2id$v=19$m=64,t=1,p=1",
	}
	for _, hash := range unusable {
		if h.Verify("password", hash, in) {
			t.Errorf("Verify(%q) = true, want false", hash)
		}
		if _, err := h.VerifyStrict("password", hash, in); !errors.Is(err, ErrUnusableHash) {
			t.Errorf("VerifyStrict(%q) error = %v, want ErrUnusableHash", hash, err)
		}
	}
}

func TestVerifyMismatchIsNotAnError(t *testing.T) {
	in := fastInputs("Argon2id")
	h := New(nil, nil)

	ok, err := h.VerifyStrict("wrong", h.Hash("right", in), in)
	if ok || err != nil {
		t.Errorf("VerifyStrict() = %v, %v; want false, nil", ok, err)
	}
}

func TestVerifyTakesCostsFromHash(t *testing.T) {
	hashed := fastInputs("Argon2i")
	hash := Hash("password", hashed)

	different := fastInputs("Argon2d")
	different.MemoryCost = 128
	different.IterationCost = 2
	different.OutputLen = 16
	if !Verify("password", hash, different) {
		t.Error("Verify() with different costs = false, want true")
	}
}

func TestVerifyXCryptoHash(t *testing.T) {
	salt := []byte("somesaltsomesalt")
	digest := xargon2.IDKey([]byte("password"), salt, 2, 64, 1, 32)
	encoded := (&phc.Hash{
		Ident: "argon2id", Version: 19, Memory: 64, Time: 2, Lanes: 1,
		Salt: salt, Digest: digest,
	}).String()

	in := fastInputs("Argon2id")
	if !Verify("password", encoded, in) {
		t.Error("Verify() rejected a hash made with x/crypto/argon2")
	}
	in.Pepper = "pepper"
	if Verify("password", encoded, in) {
		t.Error("Verify() accepted an unkeyed hash with a pepper")
	}
}

func TestVerifyAssociatedData(t *testing.T) {
	salt := []byte("somesaltsomesalt")
	digest, err := argon2.Derive(argon2.Input{
		Algorithm: argon2.Argon2id, Version: argon2.V13,
		Password: []byte("password"), Salt: salt, Data: []byte("context"),
		Time: 1, Memory: 64, Lanes: 1, KeyLength: 32,
	})
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}

	withData := &phc.Hash{
		Ident: "argon2id", Version: 19, Memory: 64, Time: 1, Lanes: 1,
		Data: []byte("context"), Salt: salt, Digest: digest,
	}
	in := fastInputs("Argon2id")
	if !Verify("password", withData.String(), in) {
		t.Error("Verify() with data = false, want true")
	}

	withData.Data = nil
	if Verify("password", withData.String(), in) {
		t.Error("Verify() without data = true, want false")
	}
}

func TestHashDerivationFailureReturnsEmpty(t *testing.T) {
	var logs bytes.Buffer
	h := New(nil, log.New(&logs, "", 0))
	h.kdf = func(argon2.Input) ([]byte, error) {
		return nil, argon2.ErrInvalidInput
	}

	in := fastInputs("Argon2id")
	if got := h.Hash("password", in); got != "" {
		t.Errorf("Hash() = %q, want empty string", got)
	}
	if !strings.Contains(logs.String(), "derivation failed") {
		t.Errorf("log = %q, want derivation failure", logs.String())
	}

	_, err := h.HashStrict("password", in)
	if !errors.Is(err, argon2.ErrInvalidInput) {
		t.Errorf("HashStrict() error = %v, want ErrInvalidInput", err)
	}
	if fatal(err) {
		t.Error("derivation failure classified as fatal")
	}
}

func TestHashOutputLength(t *testing.T) {
	tests := []struct {
		length uint32
		ok     bool
	}{
		{4, false},
		{9, false},
		{10, true},
		{64, true},
		{65, false},
		{100, false},
	}

	for _, tt := range tests {
		var logs bytes.Buffer
		h := New(nil, log.New(&logs, "", 0))
		in := fastInputs("Argon2id")
		in.OutputLen = tt.length

		got := h.Hash("password", in)
		if !tt.ok {
			if got != "" {
				t.Errorf("Hash(len %d) = %q, want empty string", tt.length, got)
			}
			if !strings.Contains(logs.String(), "derivation failed") {
				t.Errorf("Hash(len %d) log = %q, want derivation failure", tt.length, logs.String())
			}
			_, err := h.HashStrict("password", in)
			if !errors.Is(err, phc.ErrOutputSize) || fatal(err) {
				t.Errorf("HashStrict(len %d) error = %v, want non-fatal ErrOutputSize", tt.length, err)
			}
			continue
		}

		parsed, err := phc.Parse(got)
		if err != nil {
			t.Fatalf("Hash(len %d) = %q, parse error = %v", tt.length, got, err)
		}
		if len(parsed.Digest) != int(tt.length) {
			t.Errorf("Hash(len %d) digest length = %d", tt.length, len(parsed.Digest))
		}
		if !h.Verify("password", got, in) {
			t.Errorf("Verify(len %d) = false, want true", tt.length)
		}
	}
}

func TestHashEntropyFailurePanics(t *testing.T) {
	h := New(errReader{}, nil)

	r := expectPanic(t, func() { h.Hash("password", fastInputs("Argon2id")) })
	if err, ok := r.(error); !ok || !errors.Is(err, ErrEntropy) {
		t.Errorf("panic value = %v, want ErrEntropy", r)
	}
}

func TestHashUsesRandomSource(t *testing.T) {
	salt := []byte("0123456789abcdef")
	h := New(bytes.NewReader(salt), nil)

	hash := h.Hash("password", fastInputs("Argon2id"))
	parsed, err := phc.Parse(hash)
	if err != nil {
		t.Fatalf("phc.Parse() error = %v", err)
	}
	if !bytes.Equal(parsed.Salt, salt) {
		t.Errorf("salt = %q, want %q", parsed.Salt, salt)
	}
}

func TestConcurrentHashVerify(t *testing.T) {
	in := fastInputs("Argon2id")
	in.Parallelism = 2

	var wg sync.WaitGroup
	hashes := make([]string, 8)
	for i := range hashes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			hashes[i] = Hash("password", in)
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, hash := range hashes {
		if seen[hash] {
			t.Error("concurrent Hash() calls produced a duplicate")
		}
		seen[hash] = true
		if !Verify("password", hash, in) {
			t.Error("Verify() failed for a concurrently produced hash")
		}
	}
}

func TestCorrectHorseScenario(t *testing.T) {
	in := resolver.Inputs{
		Algorithm:     "Argon2id",
		Version:       19,
		Pepper:        "",
		MemoryCost:    19456,
		IterationCost: 2,
		Parallelism:   1,
		OutputLen:     32,
	}

	hash := Hash("correct horse", in)
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("Hash() = %q, want $argon2id$ prefix", hash)
	}
	if !Verify("correct horse", hash, in) {
		t.Error("Verify(correct horse) = false, want true")
	}
	if Verify("wrong horse", hash, in) {
		t.Error("Verify(wrong horse) = true, want false")
	}
}
