package video

import (
	"net/http"

	"github.com/vodhouse/vodhouse/server/handler/common"
	"github.com/vodhouse/vodhouse/server/resp"
	"github.com/vodhouse/vodhouse/server/state"
)

func HandleGet(st *state.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := st.Catalog.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			common.LogAndWriteError(w, r, "look up video", err)
			return
		}

		resp.WriteOK(w, v)
	}
}

func HandleList(st *state.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videos, err := st.Catalog.List(r.Context(), r.URL.Query().Get("category"))
		if err != nil {
			common.LogAndWriteError(w, r, "list videos", err)
			return
		}

		resp.WriteOK(w, videos)
	}
}
