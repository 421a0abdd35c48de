package handler

import (
	"net/http"
	"path"

	"vx-landing/pkg/errors"
	"vx-landing/pkg/logger"
)

// Static serves the landing page and admin panel assets from dir.
// Development responses are never cached; production ones are cached for a
// day. Missing files and directories without an index.html fall through to
// the JSON 404.
func Static(dir string, development bool, logger *logger.Logger) http.Handler {
	root := http.Dir(dir)
	files := http.FileServer(root)
	notFound := NotFound(logger)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !servable(root, r.URL.Path) {
			notFound(w, r)
			return
		}

		h := w.Header()
		if development {
			h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
		} else {
			h.Set("Cache-Control", "public, max-age=86400")
		}
		files.ServeHTTP(w, r)
	})
}

// servable reports whether name is a file, or a directory holding an
// index.html, under root.
func servable(root http.FileSystem, name string) bool {
	name = path.Clean("/" + name)
	f, err := root.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false
	}
	if !info.IsDir() {
		return true
	}

	index, err := root.Open(path.Join(name, "index.html"))
	if err != nil {
		return false
	}
	index.Close()
	return true
}

// NotFound answers unknown routes with the JSON 404 envelope
func NotFound(logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeErrorResponse(w, r, errors.NewNotFoundError(errors.MsgNotFound), errors.MsgNotFound, logger)
	}
}
