package web

import (
	"io/fs"
	"net/http"
)

// Bodies used when the site has no 404.html or 500.html of its own.
const (
	notFoundText    = "404: File not found"
	serverErrorText = "500: Internal server error"
)

// ErrorHandler captures 404 and 500 errors and serves /404.html or /500.html from the file system,
// falling back to a short plain text message.
func ErrorHandler(h http.Handler, fsys fs.FS) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writer := &responseWriter{
			ResponseWriter: w,
			fsys:           fsys,
		}
		h.ServeHTTP(writer, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	fsys    fs.FS
	noWrite bool
	err     error
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if w.noWrite {
		return len(b), w.err
	}
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) WriteHeader(statusCode int) {
	var file, fallback string
	switch statusCode {
	case http.StatusNotFound:
		file, fallback = "404.html", notFoundText
	case http.StatusInternalServerError:
		file, fallback = "500.html", serverErrorText
	default:
		w.ResponseWriter.WriteHeader(statusCode)
		return
	}
	w.Header().Del("Content-Length")
	w.Header().Del("Content-Encoding")
	b, err := fs.ReadFile(w.fsys, file)
	if err == nil {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Del("X-Content-Type-Options")
	} else {
		b = []byte(fallback)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.ResponseWriter.WriteHeader(statusCode)
	w.noWrite = true
	_, w.err = w.ResponseWriter.Write(b)
}
