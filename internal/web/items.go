package web

import (
	"net/http"
)

// ItemDetailPage handles GET /items/{id}.
func (s *Server) ItemDetailPage(w http.ResponseWriter, r *http.Request) {
	item, ok := s.Store.Item(r.PathValue("id"))
	if !ok {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}

	reminders := len(s.Store.NotificationIDs()[item.ID])

	s.Templates.Render(w, http.StatusOK, "item_detail.html", &struct {
		PageData
		Item      itemRow
		Reminders int
	}{
		PageData:  s.pageData(item.Name),
		Item:      newItemRow(item, s.Now()),
		Reminders: reminders,
	})
}
