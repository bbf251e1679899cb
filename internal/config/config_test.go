package config

import (
	"testing"

	"github.com/russellromney/argon2bind/internal/resolver"
)

func TestNew(t *testing.T) {
	cfg := New()

	want := resolver.Inputs{
		Algorithm:     "Argon2id",
		Version:       19,
		MemoryCost:    4096,
		IterationCost: 3,
		Parallelism:   1,
		OutputLen:     32,
	}
	if cfg.Defaults != want {
		t.Errorf("New() Defaults = %+v, want %+v", cfg.Defaults, want)
	}
	if cfg.KeychainService != DefaultKeychainService {
		t.Errorf("New() KeychainService = %v, want %v", cfg.KeychainService, DefaultKeychainService)
	}
}

func TestNewDefaultsResolve(t *testing.T) {
	if _, err := resolver.Resolve(New().Defaults); err != nil {
		t.Errorf("Resolve(New().Defaults) error = %v", err)
	}
}

func TestNewWithDefaultsDropsPepper(t *testing.T) {
	cfg := NewWithDefaults(resolver.Inputs{Algorithm: "Argon2i", Pepper: "secret"})
	if cfg.Defaults.Pepper != "" {
		t.Errorf("NewWithDefaults() kept pepper %q", cfg.Defaults.Pepper)
	}
	if cfg.Defaults.Algorithm != "Argon2i" {
		t.Errorf("NewWithDefaults() Algorithm = %v, want Argon2i", cfg.Defaults.Algorithm)
	}
}

func TestInputsZeroOptions(t *testing.T) {
	cfg := New()
	if got := cfg.Inputs(Options{}); got != cfg.Defaults {
		t.Errorf("Inputs(Options{}) = %+v, want %+v", got, cfg.Defaults)
	}
}

func TestInputsOverrides(t *testing.T) {
	cfg := New()
	got := cfg.Inputs(Options{
		Algorithm:     "Argon2d",
		Version:       16,
		Pepper:        "pepper",
		MemoryCost:    19456,
		IterationCost: 2,
		Parallelism:   4,
		OutputLen:     64,
	})

	want := resolver.Inputs{
		Algorithm:     "Argon2d",
		Version:       16,
		Pepper:        "pepper",
		MemoryCost:    19456,
		IterationCost: 2,
		Parallelism:   4,
		OutputLen:     64,
	}
	if got != want {
		t.Errorf("Inputs() = %+v, want %+v", got, want)
	}
}

func TestInputsPartialOverride(t *testing.T) {
	cfg := New()
	got := cfg.Inputs(Options{MemoryCost: 8192})

	if got.MemoryCost != 8192 {
		t.Errorf("Inputs() MemoryCost = %v, want 8192", got.MemoryCost)
	}
	if got.IterationCost != DefaultIterationCost || got.Algorithm != DefaultAlgorithm {
		t.Errorf("Inputs() = %+v, other fields not defaulted", got)
	}
}
