package credential

import (
	"context"

	"github.com/erazemk/bestbefore/internal/model"
)

// ConfigStore is the part of the item store holding geminiConfig.
type ConfigStore interface {
	GeminiConfig() *model.GeminiConfig
	SetGeminiConfig(ctx context.Context, cfg *model.GeminiConfig) error
}

// StateBackend keeps the credential in the persisted application state.
type StateBackend struct {
	Store ConfigStore
}

// Get returns the stored key.
func (b StateBackend) Get(_ context.Context) (string, error) {
	cfg := b.Store.GeminiConfig()
	if cfg == nil || cfg.APIKey == "" {
		return "", ErrNotFound
	}
	return cfg.APIKey, nil
}

// Set stores the key.
func (b StateBackend) Set(ctx context.Context, value string) error {
	return b.Store.SetGeminiConfig(ctx, &model.GeminiConfig{APIKey: value})
}

// Delete clears the key.
func (b StateBackend) Delete(ctx context.Context) error {
	if b.Store.GeminiConfig() == nil {
		return nil
	}
	return b.Store.SetGeminiConfig(ctx, nil)
}
