package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/bestbefore/internal/model"
	"github.com/erazemk/bestbefore/internal/notify"
	"github.com/erazemk/bestbefore/internal/store"
)

// NotificationsHandler exposes reminder state and lifecycle triggers.
type NotificationsHandler struct {
	Store     *store.Store
	Reminders Reminders
}

type notificationsResponse struct {
	Supported bool                  `json:"supported"`
	IDs       model.NotificationIDs `json:"ids"`
}

// Get handles GET /api/notifications.
func (h *NotificationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, notificationsResponse{
		Supported: h.Reminders.Supported(),
		IDs:       h.Store.NotificationIDs(),
	})
}

// Test handles POST /api/notifications/test.
func (h *NotificationsHandler) Test(w http.ResponseWriter, r *http.Request) {
	err := h.Reminders.SendTest(r.Context())
	if errors.Is(err, notify.ErrUnsupported) {
		jsonError(w, http.StatusServiceUnavailable, "notifications are not supported in this environment")
		return
	}
	if err != nil {
		slog.Warn("failed to send test notification", "error", err)
		jsonError(w, http.StatusBadGateway, "failed to send test notification")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "test notification sent"})
}

// Foreground handles POST /api/lifecycle/foreground, sent by the UI shell
// when the app returns to the foreground.
func (h *NotificationsHandler) Foreground(w http.ResponseWriter, r *http.Request) {
	if err := h.Reminders.Foreground(r.Context()); err != nil {
		slog.Error("foreground reconciliation failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to reschedule notifications")
		return
	}
	jsonResponse(w, http.StatusOK, notificationsResponse{
		Supported: h.Reminders.Supported(),
		IDs:       h.Store.NotificationIDs(),
	})
}
