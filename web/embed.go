// Package web embeds the site's templates and static assets.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates returns the template tree rooted at web/templates.
func Templates() (fs.FS, error) {
	return fs.Sub(templatesFS, "templates")
}

// Static returns the asset tree rooted at web/static.
func Static() (fs.FS, error) {
	return fs.Sub(staticFS, "static")
}

// Images returns the original pictures served by /img/{name}.
func Images() (fs.FS, error) {
	return fs.Sub(staticFS, "static/img")
}
