package credential

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// FileName is the encrypted credential file under the data directory.
const FileName = "gemini-api-key.cred"

// FileBackend stores the credential in a file sealed with a key derived from
// the machine identifier.
type FileBackend struct {
	path string
	key  []byte
}

// NewFileBackend creates a backend writing to dir/secure/FileName.
func NewFileBackend(dir, machineID string) (*FileBackend, error) {
	if dir == "" {
		return nil, errors.New("data directory not set")
	}
	if machineID == "" {
		machineID = "bestbefore-default-key"
	}

	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, []byte(machineID), []byte("bestbefore"), []byte("gemini api key"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}

	return &FileBackend{
		path: filepath.Join(dir, "secure", FileName),
		key:  key,
	}, nil
}

// Get decrypts and returns the stored value.
func (f *FileBackend) Get(_ context.Context) (string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading credential file: %w", err)
	}

	sealed, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return "", fmt.Errorf("decoding credential file: %w", err)
	}

	aead, err := chacha20poly1305.NewX(f.key)
	if err != nil {
		return "", err
	}
	if len(sealed) < aead.NonceSize() {
		return "", errors.New("credential file truncated")
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]

	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("decrypting credential: %w", err)
	}
	return string(plain), nil
}

// Set encrypts value and writes it with owner-only permissions.
func (f *FileBackend) Set(_ context.Context, value string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("creating secure directory: %w", err)
	}

	aead, err := chacha20poly1305.NewX(f.key)
	if err != nil {
		return err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(value)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generating nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(value), nil)

	encoded := base64.StdEncoding.EncodeToString(sealed)
	if err := os.WriteFile(f.path, []byte(encoded), 0o600); err != nil {
		return fmt.Errorf("writing credential file: %w", err)
	}
	return nil
}

// Delete removes the file. A missing file is not an error.
func (f *FileBackend) Delete(_ context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting credential file: %w", err)
	}
	return nil
}
