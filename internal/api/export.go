package api

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/bestbefore/internal/export"
	"github.com/erazemk/bestbefore/internal/store"
)

// ExportHandler handles the import/export endpoints.
type ExportHandler struct {
	Store *store.Store
	Now   func() time.Time
}

// Export handles GET /api/export.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := export.Write(&buf, h.Store.Items()); err != nil {
		slog.Error("failed to export items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to export items")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(h.Now())))
	w.Write(buf.Bytes())
}

// Import handles POST /api/import?mode=replace|merge. The default mode is
// merge.
func (h *ExportHandler) Import(w http.ResponseWriter, r *http.Request) {
	mode := store.ImportMode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = store.ImportMerge
	}
	if mode != store.ImportMerge && mode != store.ImportReplace {
		jsonError(w, http.StatusBadRequest, "mode must be replace or merge")
		return
	}

	defer r.Body.Close()
	items, err := export.Read(r.Body, h.Now())
	if errors.Is(err, export.ErrInvalidDocument) {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		jsonError(w, http.StatusBadRequest, "failed to read import document")
		return
	}

	if err := h.Store.ImportItems(r.Context(), items, mode); err != nil {
		slog.Error("failed to import items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to import items")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{"imported": len(items), "mode": mode})
}
