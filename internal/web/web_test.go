package web

import (
	"context"
	"html/template"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/erazemk/bestbefore/internal/db"
	"github.com/erazemk/bestbefore/internal/model"
	"github.com/erazemk/bestbefore/internal/store"
)

var testNow = time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)

func setupTestServer(t *testing.T, supported bool) (*httptest.Server, *store.Store) {
	t.Helper()

	st, err := store.Open(context.Background(), db.NewTestDB(t))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	st.Now = func() time.Time { return testNow }

	handler, err := NewRouter(st, func() bool { return supported })
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, st
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, string(body)
}

func addItem(t *testing.T, st *store.Store, name, category, expiryDate string) model.Item {
	t.Helper()
	it, err := st.AddItem(context.Background(), model.ItemFormData{
		Name:       name,
		Category:   category,
		ExpiryDate: expiryDate,
	})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	return it
}

func TestTemplatesLoad(t *testing.T) {
	ts, err := LoadTemplates()
	if err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}
	for _, page := range []string{"dashboard.html", "item_detail.html"} {
		if _, ok := ts.templates[page]; !ok {
			t.Errorf("template %s not loaded", page)
		}
	}
}

func TestDashboard(t *testing.T) {
	server, st := setupTestServer(t, true)
	addItem(t, st, "Carrots", "Vegetables", "2026-05-20")
	addItem(t, st, "Milk", "Dairy", "2026-05-11")
	addItem(t, st, "Ham", "Meat", "2026-05-01")

	status, body := get(t, server.URL+"/")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	ham := strings.Index(body, "Ham")
	milk := strings.Index(body, "Milk")
	carrots := strings.Index(body, "Carrots")
	if ham < 0 || milk < 0 || carrots < 0 {
		t.Fatalf("dashboard is missing items:\n%s", body)
	}
	if !(ham < milk && milk < carrots) {
		t.Errorf("expected items ordered by urgency, got positions ham=%d milk=%d carrots=%d", ham, milk, carrots)
	}
	for _, want := range []string{"Expired", "Expires tomorrow", "Expires in 10 days", "Reminders: off"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in dashboard", want)
		}
	}
}

func TestDashboardFilter(t *testing.T) {
	server, st := setupTestServer(t, true)
	addItem(t, st, "Carrots", "Vegetables", "2026-05-20")
	addItem(t, st, "Milk", "Dairy", "2026-05-11")

	_, body := get(t, server.URL+"/?category=Dairy")
	if !strings.Contains(body, "Milk") {
		t.Error("expected Milk in filtered dashboard")
	}
	if strings.Contains(body, "Carrots</a>") {
		t.Error("expected Carrots to be filtered out")
	}

	_, body = get(t, server.URL+"/?q=nothing")
	if !strings.Contains(body, "No items.") {
		t.Error("expected empty state for unmatched query")
	}
}

func TestDashboardReminderStatus(t *testing.T) {
	server, st := setupTestServer(t, true)
	enabled := true
	if _, err := st.UpdateSettings(context.Background(), model.SettingsPatch{Enabled: &enabled}); err != nil {
		t.Fatal(err)
	}

	_, body := get(t, server.URL+"/")
	if !strings.Contains(body, "Reminders: every day, 7 days ahead") {
		t.Errorf("expected enabled reminder summary, got:\n%s", body)
	}

	unsupported, _ := setupTestServer(t, false)
	_, body = get(t, unsupported.URL+"/")
	if !strings.Contains(body, "Reminders: unsupported") {
		t.Error("expected unsupported reminder summary")
	}
}

func TestItemDetailPage(t *testing.T) {
	server, st := setupTestServer(t, true)
	it := addItem(t, st, "Yogurt", "Dairy", "2026-05-13T00:00:00.000Z")

	status, body := get(t, server.URL+"/items/"+it.ID)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	for _, want := range []string{"Yogurt", "Expires in 3 days", "2026-05-13<"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in item page", want)
		}
	}

	status, _ = get(t, server.URL+"/items/missing")
	if status != http.StatusNotFound {
		t.Errorf("expected 404 for missing item, got %d", status)
	}
}

func TestImageURL(t *testing.T) {
	fn := FuncMap()["imageURL"].(func(string) template.URL)
	if got := fn("data:image/jpeg;base64,AAAA"); got != "data:image/jpeg;base64,AAAA" {
		t.Errorf("expected data URI to pass, got %q", got)
	}
	if got := fn("javascript:alert(1)"); got != "" {
		t.Errorf("expected unsafe URI to be dropped, got %q", got)
	}
}

func TestStaticAssets(t *testing.T) {
	server, _ := setupTestServer(t, true)
	status, body := get(t, server.URL+"/static/style.css")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if !strings.Contains(body, "font-family") {
		t.Error("unexpected stylesheet body")
	}
}
