// Package web serves the embedded browser front end.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var staticFS embed.FS

func Handler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// embed guarantees the directory exists
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
