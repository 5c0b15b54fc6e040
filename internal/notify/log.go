package notify

import (
	"context"
	"log/slog"
)

// LogSender writes notifications to the structured log. It is used when no
// push backend is configured.
type LogSender struct {
	Logger *slog.Logger
}

// Send logs the notification at INFO.
func (s LogSender) Send(_ context.Context, content Content) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("reminder", "title", content.Title, "body", content.Body, "item", content.Data["itemId"])
	return nil
}
