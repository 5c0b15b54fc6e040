package web

import (
	"net/http"
	"time"

	"github.com/erazemk/bestbefore/internal/expiry"
	"github.com/erazemk/bestbefore/internal/model"
	"github.com/erazemk/bestbefore/internal/store"
)

// itemRow is an item with its expiry label for rendering.
type itemRow struct {
	model.Item
	Status   string
	Severity expiry.Severity
}

func newItemRow(it model.Item, now time.Time) itemRow {
	days, err := expiry.DaysUntil(it.ExpiryDate, now)
	if err != nil {
		return itemRow{Item: it, Status: "Invalid expiry date"}
	}
	return itemRow{Item: it, Status: expiry.Status(days), Severity: expiry.SeverityOf(days)}
}

// Dashboard handles GET /.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	now := s.Now()
	q := r.URL.Query()
	all := s.Store.Items()
	items := store.Search(all, q.Get("q"), q.Get("category"), now)

	rows := make([]itemRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, newItemRow(it, now))
	}

	s.Templates.Render(w, http.StatusOK, "dashboard.html", &struct {
		PageData
		Items      []itemRow
		Categories []string
		Query      string
		Category   string
	}{
		PageData:   s.pageData("Items"),
		Items:      rows,
		Categories: store.Categories(all),
		Query:      q.Get("q"),
		Category:   q.Get("category"),
	})
}
