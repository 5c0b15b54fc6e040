package notify

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// timeLayout matches SQLite's datetime() output so stored values compare
// correctly as text.
const timeLayout = "2006-01-02 15:04:05"

// Registration is a stored occurrence.
type Registration struct {
	Handle  string
	Content Content
	FireAt  time.Time
}

// Local keeps registrations in the notifications table and hands due ones to
// a Sender.
type Local struct {
	db     *sql.DB
	sender Sender
	logger *slog.Logger

	Now func() time.Time
}

// NewLocal creates a Local platform delivering through sender.
func NewLocal(db *sql.DB, sender Sender) *Local {
	return &Local{
		db:     db,
		sender: sender,
		logger: slog.Default(),
		Now:    time.Now,
	}
}

// Probe reports ErrUnsupported when no sender is configured or the sender
// itself reports it cannot deliver.
func (l *Local) Probe(ctx context.Context) error {
	if l.sender == nil {
		return ErrUnsupported
	}
	if err := l.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	if p, ok := l.sender.(Prober); ok {
		return p.Probe(ctx)
	}
	return nil
}

// CancelAll removes every registration that has not been delivered yet.
func (l *Local) CancelAll(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, `DELETE FROM notifications WHERE delivered_at IS NULL`)
	if err != nil {
		return fmt.Errorf("canceling notifications: %w", err)
	}
	return nil
}

// Cancel removes one pending registration. Unknown handles are ignored.
func (l *Local) Cancel(ctx context.Context, handle string) error {
	_, err := l.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE id = ? AND delivered_at IS NULL`, handle,
	)
	if err != nil {
		return fmt.Errorf("canceling notification: %w", err)
	}
	return nil
}

// Schedule stores a registration and returns its handle.
func (l *Local) Schedule(ctx context.Context, content Content, fireAt time.Time) (string, error) {
	if l.sender == nil {
		return "", ErrUnsupported
	}
	if fireAt.IsZero() {
		fireAt = l.Now()
	}

	data, err := json.Marshal(content.Data)
	if err != nil {
		return "", fmt.Errorf("encoding notification data: %w", err)
	}

	handle := uuid.New().String()
	_, err = l.db.ExecContext(ctx,
		`INSERT INTO notifications (id, title, body, data, fire_at) VALUES (?, ?, ?, ?, ?)`,
		handle, content.Title, content.Body, string(data), fireAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("scheduling notification: %w", err)
	}
	return handle, nil
}

// Pending returns undelivered registrations ordered by fire time.
func (l *Local) Pending(ctx context.Context) ([]Registration, error) {
	return l.query(ctx,
		`SELECT id, title, body, data, fire_at FROM notifications
		 WHERE delivered_at IS NULL ORDER BY fire_at, id`,
	)
}

// DeliverDue sends every pending registration whose fire time has passed and
// marks it delivered. A failed send stays pending and is retried on the next
// call. It returns the number delivered.
func (l *Local) DeliverDue(ctx context.Context) (int, error) {
	if l.sender == nil {
		return 0, ErrUnsupported
	}
	due, err := l.query(ctx,
		`SELECT id, title, body, data, fire_at FROM notifications
		 WHERE delivered_at IS NULL AND fire_at <= ? ORDER BY fire_at, id`,
		l.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, r := range due {
		if err := l.sender.Send(ctx, r.Content); err != nil {
			l.logger.Warn("failed to deliver notification", "handle", r.Handle, "error", err)
			continue
		}
		_, err := l.db.ExecContext(ctx,
			`UPDATE notifications SET delivered_at = ? WHERE id = ?`,
			l.Now().UTC().Format(timeLayout), r.Handle,
		)
		if err != nil {
			return delivered, fmt.Errorf("marking notification delivered: %w", err)
		}
		delivered++
	}
	return delivered, nil
}

// Run delivers due registrations every interval until ctx is done.
func (l *Local) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	l.logger.Info("notification delivery started", "interval", interval)
	for {
		if n, err := l.DeliverDue(ctx); err != nil {
			l.logger.Error("notification delivery failed", "error", err)
		} else if n > 0 {
			l.logger.Info("notifications delivered", "count", n)
		}

		select {
		case <-ctx.Done():
			l.logger.Info("notification delivery stopped")
			return
		case <-ticker.C:
		}
	}
}

func (l *Local) query(ctx context.Context, q string, args ...any) ([]Registration, error) {
	rows, err := l.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	var regs []Registration
	for rows.Next() {
		var r Registration
		var data, fireAt string
		if err := rows.Scan(&r.Handle, &r.Content.Title, &r.Content.Body, &data, &fireAt); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &r.Content.Data); err != nil {
			return nil, fmt.Errorf("decoding notification data: %w", err)
		}
		if r.FireAt, err = time.Parse(timeLayout, fireAt); err != nil {
			return nil, fmt.Errorf("parsing fire time: %w", err)
		}
		regs = append(regs, r)
	}
	return regs, rows.Err()
}
