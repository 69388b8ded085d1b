// Package static embeds the page shell's static assets.
package static

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed background.png background.svg app.js app.css
var files embed.FS

// FS returns the embedded assets.
func FS() fs.FS {
	return files
}

// Handler serves the embedded assets at their file names.
func Handler() http.Handler {
	return http.FileServer(http.FS(files))
}

// Names lists the embedded asset names, each served at "/<name>".
func Names() []string {
	return []string{"background.png", "background.svg", "app.js", "app.css"}
}
