package middlewares

import (
	"log"
	"net/http"
	"runtime/debug"

	"github.com/5w1tchy/library-api/internal/api/httpx"
)

// Recovery converts panics into a JSON 500 so a broken resolver cannot take
// the process down mid-request.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				rid := GetRequestID(r)
				if rid == "" {
					rid = "unknown"
				}
				log.Printf("[PANIC] rid=%s %s %s: %v\n%s",
					rid, r.Method, r.URL.Path, v, debug.Stack())
				httpx.ErrorCode(w, http.StatusInternalServerError,
					"internal_error", "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
