package api

import (
	"log/slog"
	"net/http"
	"strings"
)

// CredentialsHandler manages the image analysis API key. The key itself is
// never returned.
type CredentialsHandler struct {
	Credentials Credentials
}

type saveCredentialRequest struct {
	APIKey string `json:"apiKey"`
}

// Get handles GET /api/credentials/gemini.
func (h *CredentialsHandler) Get(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]bool{"configured": h.Credentials.Configured(r.Context())})
}

// Save handles PUT /api/credentials/gemini.
func (h *CredentialsHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req saveCredentialRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	key := strings.TrimSpace(req.APIKey)
	if key == "" {
		jsonError(w, http.StatusBadRequest, "apiKey required")
		return
	}

	if err := h.Credentials.Save(r.Context(), key); err != nil {
		slog.Error("failed to save api key", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to save api key")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]bool{"configured": true})
}

// Delete handles DELETE /api/credentials/gemini.
func (h *CredentialsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Credentials.Delete(r.Context()); err != nil {
		slog.Error("failed to delete api key", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete api key")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]bool{"configured": false})
}
