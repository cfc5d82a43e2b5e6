// internal/adapters/in/http/middleware/recover.go
package middleware

import (
	"fmt"
	"log"
	"net/http"
	"runtime/debug"

	"github.com/google/uuid"
)

// Recover converts a handler panic into a JSON 500 instead of letting the
// platform synthesize a 503. Each request gets an id so the panic log line
// and the client-visible error can be matched up.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()

		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("[recover] PANIC reqId=%s path=%s: %v\n%s", reqID, r.URL.Path, rec, string(debug.Stack()))

				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(fmt.Sprintf(`{"error":"internal server error","requestId":%q}`, reqID)))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
