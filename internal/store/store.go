// Package store owns the item collection and the rest of the persisted
// application state. Every mutation is written through to SQLite before it
// becomes visible in memory.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/bestbefore/internal/model"
)

// ErrNotFound is returned when an item id does not exist.
var ErrNotFound = errors.New("item not found")

// Observer is told about committed mutations. Calls happen after the store
// lock is released and must not block.
type Observer interface {
	ItemsChanged()
	SettingsChanged()
}

// ImportMode selects how imported items are combined with the collection.
type ImportMode string

// Import modes.
const (
	ImportReplace ImportMode = "replace"
	ImportMerge   ImportMode = "merge"
)

// Store is the in-memory cache of the persisted state.
type Store struct {
	db *sql.DB

	mu       sync.RWMutex
	state    *model.State
	observer Observer

	// Now, NewID and Logger may be replaced before first use.
	Now    func() time.Time
	NewID  func() string
	Logger *slog.Logger
}

// Open loads the persisted state from db.
func Open(ctx context.Context, db *sql.DB) (*Store, error) {
	st, err := LoadState(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("loading state: %w", err)
	}

	s := &Store{
		db:     db,
		state:  st,
		Now:    time.Now,
		NewID:  func() string { return uuid.New().String() },
		Logger: slog.Default(),
	}
	s.Logger.Info("state loaded", "items", len(st.Items), "notifications_enabled", st.NotificationSettings.Enabled)
	return s, nil
}

// SetObserver registers the observer invoked after each mutation.
func (s *Store) SetObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = o
}

// commit applies fn to a copy of the state, persists the copy and swaps it in.
// The in-memory state is untouched if fn or the write fails.
func (s *Store) commit(ctx context.Context, fn func(st *model.State) error) (*model.State, Observer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneState(s.state)
	if err := fn(next); err != nil {
		return nil, nil, err
	}
	if err := SaveState(ctx, s.db, next); err != nil {
		return nil, nil, err
	}
	s.state = next
	return next, s.observer, nil
}

// Items returns a copy of the collection in insertion order.
func (s *Store) Items() []model.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Item(nil), s.state.Items...)
}

// Item returns the item with the given id.
func (s *Store) Item(id string) (model.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.state.Items, id); i >= 0 {
		return s.state.Items[i], true
	}
	return model.Item{}, false
}

// AddItem appends a new item with a fresh id and timestamps.
func (s *Store) AddItem(ctx context.Context, data model.ItemFormData) (model.Item, error) {
	item := model.NewItem(s.NewID(), data, s.Now())

	st, obs, err := s.commit(ctx, func(st *model.State) error {
		st.Items = append(st.Items, item)
		return nil
	})
	if err != nil {
		return model.Item{}, fmt.Errorf("adding item: %w", err)
	}

	itemsChanged(st, obs)
	return item, nil
}

// UpdateItem merges patch onto the item and refreshes UpdatedAt.
func (s *Store) UpdateItem(ctx context.Context, id string, patch model.ItemPatch) (model.Item, error) {
	var updated model.Item
	st, obs, err := s.commit(ctx, func(st *model.State) error {
		i := indexOf(st.Items, id)
		if i < 0 {
			return ErrNotFound
		}
		patch.Apply(&st.Items[i])
		if now := s.Now(); now.After(st.Items[i].CreatedAt) {
			st.Items[i].UpdatedAt = now
		} else {
			st.Items[i].UpdatedAt = st.Items[i].CreatedAt
		}
		updated = st.Items[i]
		return nil
	})
	if err != nil {
		return model.Item{}, fmt.Errorf("updating item: %w", err)
	}

	itemsChanged(st, obs)
	return updated, nil
}

// DeleteItem removes the item.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	st, obs, err := s.commit(ctx, func(st *model.State) error {
		i := indexOf(st.Items, id)
		if i < 0 {
			return ErrNotFound
		}
		st.Items = append(st.Items[:i], st.Items[i+1:]...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}

	itemsChanged(st, obs)
	return nil
}

// ImportItems adds previously exported items, keeping their ids. Replace
// makes the collection exactly items; merge upserts by id.
func (s *Store) ImportItems(ctx context.Context, items []model.Item, mode ImportMode) error {
	st, obs, err := s.commit(ctx, func(st *model.State) error {
		switch mode {
		case ImportReplace:
			st.Items = append([]model.Item{}, items...)
		case ImportMerge:
			for _, it := range items {
				if i := indexOf(st.Items, it.ID); i >= 0 {
					st.Items[i] = it
				} else {
					st.Items = append(st.Items, it)
				}
			}
		default:
			return fmt.Errorf("unknown import mode %q", mode)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("importing items: %w", err)
	}

	s.Logger.Info("items imported", "mode", mode, "count", len(items))
	itemsChanged(st, obs)
	return nil
}

// Settings returns the notification policy.
func (s *Store) Settings() model.NotificationSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.NotificationSettings
}

// UpdateSettings merges patch into the notification policy.
func (s *Store) UpdateSettings(ctx context.Context, patch model.SettingsPatch) (model.NotificationSettings, error) {
	var next model.NotificationSettings
	_, obs, err := s.commit(ctx, func(st *model.State) error {
		next = patch.Apply(st.NotificationSettings)
		if err := next.Validate(); err != nil {
			return err
		}
		st.NotificationSettings = next
		return nil
	})
	if err != nil {
		return model.NotificationSettings{}, fmt.Errorf("updating notification settings: %w", err)
	}

	if obs != nil {
		obs.SettingsChanged()
	}
	return next, nil
}

// DisableNotifications turns the policy off without notifying the observer
// and clears the registered handles.
func (s *Store) DisableNotifications(ctx context.Context) error {
	_, _, err := s.commit(ctx, func(st *model.State) error {
		st.NotificationSettings.Enabled = false
		st.NotificationIDs = model.NotificationIDs{}
		return nil
	})
	if err != nil {
		return fmt.Errorf("disabling notifications: %w", err)
	}
	return nil
}

// NotificationIDs returns a copy of the registered handle map.
func (s *Store) NotificationIDs() model.NotificationIDs {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneIDs(s.state.NotificationIDs)
}

// SetNotificationIDs replaces the registered handle map.
func (s *Store) SetNotificationIDs(ctx context.Context, ids model.NotificationIDs) error {
	_, _, err := s.commit(ctx, func(st *model.State) error {
		st.NotificationIDs = cloneIDs(ids)
		return nil
	})
	if err != nil {
		return fmt.Errorf("storing notification ids: %w", err)
	}
	return nil
}

// GeminiConfig returns the stored analysis credential, or nil.
func (s *Store) GeminiConfig() *model.GeminiConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.GeminiConfig == nil {
		return nil
	}
	cfg := *s.state.GeminiConfig
	return &cfg
}

// SetGeminiConfig stores the analysis credential; nil clears it.
func (s *Store) SetGeminiConfig(ctx context.Context, cfg *model.GeminiConfig) error {
	_, _, err := s.commit(ctx, func(st *model.State) error {
		if cfg == nil {
			st.GeminiConfig = nil
			return nil
		}
		c := *cfg
		st.GeminiConfig = &c
		return nil
	})
	if err != nil {
		return fmt.Errorf("storing gemini config: %w", err)
	}
	return nil
}

func itemsChanged(st *model.State, obs Observer) {
	if obs != nil && st.NotificationSettings.Enabled {
		obs.ItemsChanged()
	}
}

func indexOf(items []model.Item, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneState(st *model.State) *model.State {
	next := *st
	next.Items = append([]model.Item{}, st.Items...)
	next.NotificationIDs = cloneIDs(st.NotificationIDs)
	if st.GeminiConfig != nil {
		c := *st.GeminiConfig
		next.GeminiConfig = &c
	}
	return &next
}

func cloneIDs(ids model.NotificationIDs) model.NotificationIDs {
	out := make(model.NotificationIDs, len(ids))
	for k, v := range ids {
		out[k] = append([]string(nil), v...)
	}
	return out
}
