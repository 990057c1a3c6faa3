package web

import (
	"net/http"
)

// corsHeaders allow any origin to use the site.
var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":      "*",
	"Access-Control-Allow-Methods":     "GET, POST, OPTIONS, PUT, PATCH, DELETE",
	"Access-Control-Allow-Headers":     "X-Requested-With,content-type",
	"Access-Control-Allow-Credentials": "true",
}

// HeaderHandler returns an http.Handler that adds the given headers to the response.
func HeaderHandler(h http.Handler, headers map[string]string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, v := range headers {
			w.Header().Set(k, v)
		}
		h.ServeHTTP(w, r)
	})
}

// CORSHandler adds permissive CORS headers to every response.
func CORSHandler(h http.Handler) http.Handler {
	return HeaderHandler(h, corsHeaders)
}
