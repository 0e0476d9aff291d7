package session

import (
	"encoding/json"
	"net/http"

	"github.com/vodhouse/vodhouse/server/resp"
	"github.com/vodhouse/vodhouse/server/state"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func HandleLogin(st *state.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			resp.WriteInvalidRequest(w, "request body must be JSON with email and password")
			return
		}

		session, err := st.Authn.Login(req.Email, req.Password)
		if err != nil {
			resp.WriteUnauthorized(w, "invalid credentials")
			return
		}

		resp.WriteOK(w, session)
	}
}
