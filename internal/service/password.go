package service

import (
	"context"
	"errors"
	"fmt"

	"second-chance/internal/model"
	"second-chance/internal/worker"

	"golang.org/x/crypto/bcrypt"
)

var (
	bcryptGenerateFromPassword   = bcrypt.GenerateFromPassword
	bcryptCompareHashAndPassword = bcrypt.CompareHashAndPassword
)

// Hasher is the credential store: bcrypt with a fresh salt per hash.
// Hashing runs on the worker pool so a burst of logins cannot take every
// CPU away from the rest of the server.
type Hasher struct {
	pool worker.Pool
	cost int
}

// NewHasher uses bcrypt.DefaultCost (10). A nil pool runs inline.
func NewHasher(pool worker.Pool) *Hasher {
	return &Hasher{pool: pool, cost: bcrypt.DefaultCost}
}

func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	var (
		out []byte
		err error
	)
	if runErr := h.run(ctx, func() {
		out, err = bcryptGenerateFromPassword([]byte(password), h.cost)
	}); runErr != nil {
		return "", runErr
	}
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		// bcrypt counts bytes, so multi-byte passwords can pass a character limit
		return "", fmt.Errorf("hash password: %w: password longer than 72 bytes", model.ErrValidation)
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(out), nil
}

// Verify reports whether password matches hash. A mismatch is (false, nil);
// an error means the stored hash itself is unusable.
func (h *Hasher) Verify(ctx context.Context, password, hash string) (bool, error) {
	var err error
	if runErr := h.run(ctx, func() {
		err = bcryptCompareHashAndPassword([]byte(hash), []byte(password))
	}); runErr != nil {
		return false, runErr
	}
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("verify password: %w", err)
	}
}

func (h *Hasher) run(ctx context.Context, fn func()) error {
	if h.pool == nil {
		fn()
		return nil
	}
	done := make(chan struct{})
	if err := h.pool.Submit(ctx, func() {
		defer close(done)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
