// Package notify defines the platform notification contract the reminder
// scheduler depends on, and a local implementation that keeps registrations
// in SQLite and delivers them when they fall due.
package notify

import (
	"context"
	"errors"
	"time"
)

// ErrUnsupported reports that the environment cannot deliver notifications
// at all, as opposed to a transient failure.
var ErrUnsupported = errors.New("notifications not supported")

// Content is what a delivered notification shows.
type Content struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Platform is the notification subsystem. Schedule returns an opaque handle
// that can later be passed to Cancel. A zero fireAt means "now".
type Platform interface {
	CancelAll(ctx context.Context) error
	Cancel(ctx context.Context, handle string) error
	Schedule(ctx context.Context, content Content, fireAt time.Time) (string, error)
}

// Prober is implemented by platforms that can check their capability up
// front. A nil error means notifications can be delivered.
type Prober interface {
	Probe(ctx context.Context) error
}

// Sender delivers a single notification.
type Sender interface {
	Send(ctx context.Context, content Content) error
}
