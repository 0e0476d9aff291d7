package middleware

import (
	"log"
	"net/http"

	"github.com/vodhouse/vodhouse/server/util"
)

// Logging installs a request-scoped logger so every handler and the error
// mapper log with the same method/path prefix.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rl := util.WithRequest(log.Default(), r, "")
		next.ServeHTTP(w, r.WithContext(util.ContextWithLogger(r.Context(), rl)))
	})
}
