package site

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static/*
var staticFS embed.FS

// FS returns an http.FileSystem for the embedded converter front-end.
func FS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// Unreachable with a correct embed directive; expose the raw FS
		// rather than panic in a handler path.
		return http.FS(staticFS)
	}
	return http.FS(sub)
}
