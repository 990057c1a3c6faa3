// Package web provides the HTTP handlers used to serve a generated site.
package web

import (
	"io"
	"io/fs"
	"net/http"

	"github.com/NYTimes/gziphandler"
)

// Options selects the optional behavior of the site handler.
type Options struct {
	CORS    bool      // Add permissive CORS headers
	Gzip    bool      // Serve .gz files when present, else compress on the fly
	Log     io.Writer // Access log destination; nil disables logging
	Metrics *Metrics  // Request counters; nil disables counting
}

// NewHandler returns a handler serving the files in fsys. Folders serve their
// index.html, hidden paths are not served, and 404 and 500 responses use
// 404.html and 500.html when the site has them.
func NewHandler(fsys fs.FS, opts Options) http.Handler {
	h := http.FileServer(http.FS(fsys))
	if opts.Gzip {
		h = PrecompressedHandler(gziphandler.GzipHandler(h), fsys)
	}
	h = ErrorHandler(HiddenHandler(h), fsys)
	if opts.CORS {
		h = CORSHandler(h)
	}
	if opts.Metrics != nil {
		h = opts.Metrics.Handler(h)
	}
	if opts.Log != nil {
		h = LogHandler(h, opts.Log)
	}
	return h
}
