package http

import (
	"io"
	"net/http"
	"strconv"
)

// errorBody returns the short plain-text body sent with error statuses,
// e.g. "404 Not Found".
func errorBody(code int) string {
	text := http.StatusText(code)
	if text == "" {
		text = "Error"
	}
	return strconv.Itoa(code) + " " + text + "\n"
}

// WriteError writes a short plain-text error response.
func WriteError(w http.ResponseWriter, code int) {
	body := errorBody(code)

	h := w.Header()
	h.Del("Content-Range")
	h.Del("Last-Modified")
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("Content-Length", strconv.Itoa(len(body)))
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	_, _ = io.WriteString(w, body)
}
