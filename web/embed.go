// Package web embeds the HTML templates and static assets of the overview
// pages.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static templates
var content embed.FS

// StaticFS returns the stylesheet and other static assets.
func StaticFS() (fs.FS, error) {
	return fs.Sub(content, "static")
}

// TemplatesFS returns the page templates.
func TemplatesFS() (fs.FS, error) {
	return fs.Sub(content, "templates")
}
