package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/erazemk/bestbefore/internal/expiry"
	"github.com/erazemk/bestbefore/internal/model"
	"github.com/erazemk/bestbefore/internal/store"
)

// ItemsHandler handles item CRUD endpoints.
type ItemsHandler struct {
	Store *store.Store
	Now   func() time.Time
}

// itemView is an item with its expiry state relative to now.
type itemView struct {
	model.Item
	DaysUntilExpiry *int            `json:"daysUntilExpiry"`
	Status          string          `json:"status"`
	Severity        expiry.Severity `json:"severity,omitempty"`
}

func newItemView(it model.Item, now time.Time) itemView {
	v := itemView{Item: it}
	days, err := expiry.DaysUntil(it.ExpiryDate, now)
	if err != nil {
		v.Status = "Invalid expiry date"
		return v
	}
	v.DaysUntilExpiry = &days
	v.Status = expiry.Status(days)
	v.Severity = expiry.SeverityOf(days)
	return v
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	now := h.Now()
	q := r.URL.Query()
	items := store.Search(h.Store.Items(), q.Get("q"), q.Get("category"), now)

	views := make([]itemView, 0, len(items))
	for _, it := range items {
		views = append(views, newItemView(it, now))
	}
	jsonResponse(w, http.StatusOK, views)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.ItemFormData
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	item, err := h.Store.AddItem(r.Context(), req)
	if err != nil {
		slog.Error("failed to create item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	jsonResponse(w, http.StatusCreated, newItemView(item, h.Now()))
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, ok := h.Store.Item(r.PathValue("id"))
	if !ok {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, newItemView(item, h.Now()))
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch model.ItemPatch
	if err := decodeJSON(r, &patch); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	item, err := h.Store.UpdateItem(r.Context(), r.PathValue("id"), patch)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		slog.Error("failed to update item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	jsonResponse(w, http.StatusOK, newItemView(item, h.Now()))
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.Store.DeleteItem(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		slog.Error("failed to delete item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// Categories handles GET /api/categories.
func (h *ItemsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories := store.Categories(h.Store.Items())
	if categories == nil {
		categories = []string{}
	}
	jsonResponse(w, http.StatusOK, categories)
}
