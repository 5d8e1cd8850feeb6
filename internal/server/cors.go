package server

import (
	"net/http"
	"slices"
	"strings"
)

// allowOrigin sets the CORS response headers when the request origin is
// allowed and reports whether it was.
func (h *Handler) allowOrigin(w http.ResponseWriter, r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.opts.CORSOrigins) == 0 {
		return false
	}
	switch {
	case slices.Contains(h.opts.CORSOrigins, "*"):
		w.Header().Set("Access-Control-Allow-Origin", "*")
	case slices.Contains(h.opts.CORSOrigins, origin):
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Add("Vary", "Origin")
	default:
		return false
	}
	return true
}

func preflight(w http.ResponseWriter, r *http.Request) {
	if hdr := r.Header.Get("Access-Control-Request-Headers"); hdr != "" {
		w.Header().Set("Access-Control-Allow-Headers", hdr)
	}
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
}

func acceptsHTML(accept string) bool {
	for _, part := range strings.Split(accept, ",") {
		mt, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		if mt == "text/html" || mt == "*/*" {
			return true
		}
	}
	return false
}
