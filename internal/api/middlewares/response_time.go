package middlewares

import (
	"net/http"
	"time"
)

// timedWriter stamps X-Response-Time just before the first byte of the
// response goes out, since headers are frozen after that.
type timedWriter struct {
	http.ResponseWriter
	start       time.Time
	wroteHeader bool
}

func (w *timedWriter) stamp() {
	if !w.wroteHeader {
		w.Header().Set("X-Response-Time", time.Since(w.start).String())
		w.wroteHeader = true
	}
}

func (w *timedWriter) WriteHeader(code int) {
	w.stamp()
	w.ResponseWriter.WriteHeader(code)
}

func (w *timedWriter) Write(b []byte) (int, error) {
	w.stamp()
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer, which
// websocket upgrades need for hijacking.
func (w *timedWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func ResponseTimeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tw := &timedWriter{ResponseWriter: w, start: time.Now()}
		next.ServeHTTP(tw, r)

		// nothing written yet (204, HEAD): stamp now
		if !tw.wroteHeader {
			tw.Header().Set("X-Response-Time", time.Since(tw.start).String())
		}
	})
}
