// Package credential keeps the image analysis API key. The key is stored in
// an encrypted file; when that fails the application state record is used
// instead.
package credential

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrNotFound is returned when no credential is stored.
var ErrNotFound = errors.New("credential not found")

// Backend is one storage mechanism for the credential.
type Backend interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, value string) error
	Delete(ctx context.Context) error
}

// Store reads and writes the credential through a primary backend, falling
// back to a secondary one.
type Store struct {
	Primary   Backend
	Secondary Backend
	Logger    *slog.Logger
}

// NewStore creates a store over the two mechanisms.
func NewStore(primary, secondary Backend) *Store {
	return &Store{Primary: primary, Secondary: secondary, Logger: slog.Default()}
}

// Get returns the stored credential or ErrNotFound.
func (s *Store) Get(ctx context.Context) (string, error) {
	value, err := s.Primary.Get(ctx)
	if err == nil && value != "" {
		return value, nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.Logger.Warn("primary credential store failed, trying fallback", "error", err)
	}

	value, err = s.Secondary.Get(ctx)
	if err != nil {
		return "", err
	}
	if value == "" {
		return "", ErrNotFound
	}
	return value, nil
}

// Configured reports whether a credential is stored.
func (s *Store) Configured(ctx context.Context) bool {
	_, err := s.Get(ctx)
	return err == nil
}

// Save stores value. The primary is read back after writing; if the write
// or the read-back fails the value goes to the secondary.
func (s *Store) Save(ctx context.Context, value string) error {
	if value == "" {
		return errors.New("credential is empty")
	}

	err := s.Primary.Set(ctx, value)
	if err == nil {
		var got string
		got, err = s.Primary.Get(ctx)
		if err == nil && got != value {
			err = errors.New("read-back mismatch")
		}
	}
	if err == nil {
		// The secondary is not encrypted; drop any older copy.
		if derr := s.Secondary.Delete(ctx); derr != nil {
			s.Logger.Warn("failed to clear fallback credential", "error", derr)
		}
		return nil
	}

	s.Logger.Warn("primary credential store failed, using fallback", "error", err)
	if err := s.Secondary.Set(ctx, value); err != nil {
		return fmt.Errorf("saving credential: %w", err)
	}
	return nil
}

// Delete removes the credential from both backends.
func (s *Store) Delete(ctx context.Context) error {
	perr := s.Primary.Delete(ctx)
	if perr != nil {
		s.Logger.Warn("failed to delete credential from primary store", "error", perr)
	}
	if err := s.Secondary.Delete(ctx); err != nil {
		return fmt.Errorf("deleting credential: %w", err)
	}
	if perr != nil {
		return fmt.Errorf("deleting credential: %w", perr)
	}
	return nil
}
