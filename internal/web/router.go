// Package web serves a read-only HTML overview of the inventory.
package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/erazemk/bestbefore/internal/store"
	webembed "github.com/erazemk/bestbefore/web"
)

// Server holds all dependencies for page handlers.
type Server struct {
	Store     *store.Store
	Templates *Templates
	Supported func() bool
	Now       func() time.Time
}

// NewRouter creates the web page router with all page routes registered.
func NewRouter(st *store.Store, supported func() bool) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}
	static, err := webembed.StaticFS()
	if err != nil {
		return nil, fmt.Errorf("opening static assets: %w", err)
	}

	s := &Server{
		Store:     st,
		Templates: templates,
		Supported: supported,
		Now:       time.Now,
	}

	mux := http.NewServeMux()

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	mux.HandleFunc("GET /{$}", s.Dashboard)
	mux.HandleFunc("GET /items/{id}", s.ItemDetailPage)

	return mux, nil
}

func (s *Server) pageData(title string) PageData {
	supported := true
	if s.Supported != nil {
		supported = s.Supported()
	}
	return PageData{
		Title:     title,
		Reminders: s.Store.Settings(),
		Supported: supported,
	}
}
