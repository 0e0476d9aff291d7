package middleware

import (
	"log"
	"net/http"

	"github.com/vodhouse/vodhouse/config"
	"github.com/vodhouse/vodhouse/server/auth"
	"github.com/vodhouse/vodhouse/server/resp"
	"github.com/vodhouse/vodhouse/server/util"
)

// RequireAdmin gates catalog writes behind the configured Authorizer. The
// gate is a no-op unless auth.enforce is set, which keeps token-less
// deployments working.
func RequireAdmin(cfg *config.Auth, authz auth.Authorizer, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !cfg.Enforce {
			next.ServeHTTP(w, r)
			return
		}

		token := auth.BearerToken(r.Header.Get("Authorization"))
		if token == "" {
			resp.WriteUnauthorized(w, "missing bearer token")
			return
		}

		if !authz.Authorize(token) {
			resp.WriteForbidden(w, "admin access required")
			return
		}

		// Tag downstream log lines with the authorized caller.
		rl := util.WithRequest(log.Default(), r, auth.RoleAdmin)
		next.ServeHTTP(w, r.WithContext(util.ContextWithLogger(r.Context(), rl)))
	})
}
