// Package api is the loopback HTTP interface the UI shell talks to.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/erazemk/bestbefore/internal/analysis"
	"github.com/erazemk/bestbefore/internal/store"
)

// Reminders is the lifecycle orchestrator as seen by the API.
type Reminders interface {
	Supported() bool
	Foreground(ctx context.Context) error
	SendTest(ctx context.Context) error
}

// Credentials is the analysis credential store.
type Credentials interface {
	Get(ctx context.Context) (string, error)
	Save(ctx context.Context, value string) error
	Delete(ctx context.Context) error
	Configured(ctx context.Context) bool
}

// Analyzer runs image analysis.
type Analyzer interface {
	Analyze(ctx context.Context, apiKey, imageBase64 string, task analysis.Task) analysis.Result
}

// Deps are the components the router serves.
type Deps struct {
	Store       *store.Store
	Reminders   Reminders
	Credentials Credentials
	Analyzer    Analyzer

	// Now defaults to time.Now.
	Now func() time.Time
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(d Deps) http.Handler {
	if d.Now == nil {
		d.Now = time.Now
	}
	mux := http.NewServeMux()

	itemsHandler := &ItemsHandler{Store: d.Store, Now: d.Now}
	settingsHandler := &SettingsHandler{Store: d.Store}
	notificationsHandler := &NotificationsHandler{Store: d.Store, Reminders: d.Reminders}
	credentialsHandler := &CredentialsHandler{Credentials: d.Credentials}
	analyzeHandler := &AnalyzeHandler{Credentials: d.Credentials, Analyzer: d.Analyzer}
	exportHandler := &ExportHandler{Store: d.Store, Now: d.Now}

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Items.
	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("POST /api/items", itemsHandler.Create)
	mux.HandleFunc("GET /api/items/{id}", itemsHandler.Get)
	mux.HandleFunc("PUT /api/items/{id}", itemsHandler.Update)
	mux.HandleFunc("DELETE /api/items/{id}", itemsHandler.Delete)
	mux.HandleFunc("GET /api/categories", itemsHandler.Categories)

	// Notification settings and state.
	mux.HandleFunc("GET /api/settings/notifications", settingsHandler.Get)
	mux.HandleFunc("PUT /api/settings/notifications", settingsHandler.Update)
	mux.HandleFunc("GET /api/notifications", notificationsHandler.Get)
	mux.HandleFunc("POST /api/notifications/test", notificationsHandler.Test)
	mux.HandleFunc("POST /api/lifecycle/foreground", notificationsHandler.Foreground)

	// Analysis credential and image analysis.
	mux.HandleFunc("GET /api/credentials/gemini", credentialsHandler.Get)
	mux.HandleFunc("PUT /api/credentials/gemini", credentialsHandler.Save)
	mux.HandleFunc("DELETE /api/credentials/gemini", credentialsHandler.Delete)
	mux.HandleFunc("POST /api/analyze", analyzeHandler.Analyze)

	// Import/export.
	mux.HandleFunc("GET /api/export", exportHandler.Export)
	mux.HandleFunc("POST /api/import", exportHandler.Import)

	return mux
}
