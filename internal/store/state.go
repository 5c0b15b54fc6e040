package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/erazemk/bestbefore/internal/model"
)

// StateKey names the single persisted record in the settings table.
const StateKey = "best-before-storage"

// LoadState reads the persisted state record. A missing record yields a fresh
// state with default settings.
func LoadState(ctx context.Context, db *sql.DB) (*model.State, error) {
	var raw string
	err := db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, StateKey,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return model.NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying state: %w", err)
	}

	st := model.NewState()
	if err := json.Unmarshal([]byte(raw), st); err != nil {
		return nil, fmt.Errorf("decoding state: %w", err)
	}
	if st.Items == nil {
		st.Items = []model.Item{}
	}
	if st.NotificationIDs == nil {
		st.NotificationIDs = model.NotificationIDs{}
	}
	return st, nil
}

// SaveState replaces the persisted state record.
func SaveState(ctx context.Context, db *sql.DB, st *model.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		StateKey, string(data),
	)
	if err != nil {
		return fmt.Errorf("storing state: %w", err)
	}
	return nil
}
