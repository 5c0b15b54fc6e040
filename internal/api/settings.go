package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/bestbefore/internal/model"
	"github.com/erazemk/bestbefore/internal/store"
)

// SettingsHandler handles the notification settings endpoints.
type SettingsHandler struct {
	Store *store.Store
}

// Get handles GET /api/settings/notifications.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, h.Store.Settings())
}

// Update handles PUT /api/settings/notifications. Omitted fields keep their
// current value.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch model.SettingsPatch
	if err := decodeJSON(r, &patch); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := patch.Apply(h.Store.Settings()).Validate(); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	settings, err := h.Store.UpdateSettings(r.Context(), patch)
	if err != nil {
		slog.Error("failed to update notification settings", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update settings")
		return
	}

	jsonResponse(w, http.StatusOK, settings)
}
