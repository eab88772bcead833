package server

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

//go:embed static/*
var staticFiles embed.FS

// staticFS roots the embedded assets at the static directory.
func staticFS() (fs.FS, error) {
	return fs.Sub(staticFiles, "static")
}

// serveFileHandler serves single embedded assets. Anything that is not a
// regular file is a 404, so there are no directory listings.
func (s *Server) serveFileHandler() http.HandlerFunc {
	files := http.FileServerFS(s.static)
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		info, err := fs.Stat(s.static, name)
		if err != nil || !info.Mode().IsRegular() {
			log.Ctx(r.Context()).Debug().Err(err).Str("path", name).Msg("Static file not found")
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		files.ServeHTTP(w, r)
	}
}
