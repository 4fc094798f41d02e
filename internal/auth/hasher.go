package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"golang.org/x/crypto/scrypt"
	"golang.org/x/sync/semaphore"
)

// credentialDelimiter separates the hex salt from the hex derived key.
const credentialDelimiter = "."

// HashParams are the scrypt cost parameters. They are not encoded in the
// credential string, so they must stay stable for stored credentials to verify.
type HashParams struct {
	N       int
	R       int
	P       int
	KeyLen  int
	SaltLen int
}

// DefaultHashParams returns N=2^14, r=8, p=1 with a 32 byte key and 16 byte salt.
func DefaultHashParams() HashParams {
	return HashParams{N: 1 << 14, R: 8, P: 1, KeyLen: 32, SaltLen: 16}
}

// Validate checks the parameters are usable by scrypt.
func (p HashParams) Validate() error {
	switch {
	case p.N <= 1 || p.N&(p.N-1) != 0:
		return fmt.Errorf("auth: scrypt N must be a power of two greater than 1, got %d", p.N)
	case p.R <= 0 || p.P <= 0:
		return fmt.Errorf("auth: scrypt r and p must be positive, got r=%d p=%d", p.R, p.P)
	case p.R*p.P >= 1<<30:
		return errors.New("auth: scrypt r*p too large")
	case p.KeyLen <= 0:
		return fmt.Errorf("auth: key length must be positive, got %d", p.KeyLen)
	case p.SaltLen < 8:
		return fmt.Errorf("auth: salt length must be at least 8 bytes, got %d", p.SaltLen)
	}
	return nil
}

// HasherOptions configures a ScryptHasher.
type HasherOptions struct {
	Params HashParams
	// Concurrency caps simultaneous derivations. Defaults to GOMAXPROCS.
	Concurrency int64
	// Timeout bounds a single derivation including the wait for a slot.
	Timeout time.Duration
	// Observe receives the duration of every derivation.
	Observe func(time.Duration)
}

// ScryptHasher derives "hexsalt.hexkey" credentials with scrypt.
type ScryptHasher struct {
	params    HashParams
	sem       *semaphore.Weighted
	timeout   time.Duration
	observe   func(time.Duration)
	dummySalt string
}

// NewScryptHasher constructs a hasher after validating its parameters.
func NewScryptHasher(opts HasherOptions) (*ScryptHasher, error) {
	if err := opts.Params.Validate(); err != nil {
		return nil, err
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = int64(runtime.GOMAXPROCS(0))
	}
	return &ScryptHasher{
		params:    opts.Params,
		sem:       semaphore.NewWeighted(concurrency),
		timeout:   opts.Timeout,
		observe:   opts.Observe,
		dummySalt: strings.Repeat("0", opts.Params.SaltLen*2),
	}, nil
}

// Hash returns a fresh credential for plaintext. An empty plaintext is
// accepted; password policy belongs to the request validator.
func (h *ScryptHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("auth: generate salt: %w", err)
	}
	saltHex := hex.EncodeToString(salt)
	key, err := h.derive(ctx, plaintext, saltHex)
	if err != nil {
		return "", err
	}
	return saltHex + credentialDelimiter + hex.EncodeToString(key), nil
}

// Validate reports whether plaintext matches credential. A malformed
// credential yields (false, nil) after a full derivation against a dummy
// salt. The error is non-nil only when the derivation was cancelled or
// timed out.
func (h *ScryptHasher) Validate(ctx context.Context, plaintext, credential string) (bool, error) {
	salt, expected, wellFormed := h.parse(credential)
	if !wellFormed {
		salt = h.dummySalt
		expected = make([]byte, h.params.KeyLen)
	}
	derived, err := h.derive(ctx, plaintext, salt)
	if err != nil {
		return false, err
	}
	match := subtle.ConstantTimeCompare(derived, expected) == 1
	return match && wellFormed, nil
}

func (h *ScryptHasher) parse(credential string) (string, []byte, bool) {
	salt, keyHex, ok := strings.Cut(credential, credentialDelimiter)
	if !ok || salt == "" {
		return "", nil, false
	}
	if _, err := hex.DecodeString(salt); err != nil {
		return "", nil, false
	}
	key, err := hex.DecodeString(keyHex)
	if err != nil || len(key) != h.params.KeyLen {
		return "", nil, false
	}
	return salt, key, true
}

// derive runs scrypt on its own goroutine, gated by the semaphore. The slot
// is released when scrypt returns even if the caller gave up waiting.
func (h *ScryptHasher) derive(ctx context.Context, plaintext, salt string) ([]byte, error) {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("auth: acquire kdf slot: %w", err)
	}

	type result struct {
		key []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer h.sem.Release(1)
		start := time.Now()
		key, err := scrypt.Key([]byte(plaintext), []byte(salt), h.params.N, h.params.R, h.params.P, h.params.KeyLen)
		if h.observe != nil {
			h.observe(time.Since(start))
		}
		done <- result{key: key, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("auth: derive key: %w", res.err)
		}
		return res.key, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("auth: derive key: %w", ctx.Err())
	}
}
