package video

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/vodhouse/vodhouse/server/handler/common"
	"github.com/vodhouse/vodhouse/server/resp"
	"github.com/vodhouse/vodhouse/server/state"
	"github.com/vodhouse/vodhouse/server/util"
	"github.com/vodhouse/vodhouse/storage/catalog"
)

const deleteTimeout = 30 * time.Second

// HandleDelete removes a catalog record and, best effort, its backing file.
// Backend delete failures are logged and never block the record deletion;
// the alternative is an undeletable catalog entry.
func HandleDelete(st *state.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		v, err := st.Catalog.Get(r.Context(), id)
		if err != nil {
			common.LogAndWriteError(w, r, "look up video", err)
			return
		}

		deleteBackingFile(r, st, v)

		if err := st.Catalog.Delete(r.Context(), id); err != nil {
			common.LogAndWriteError(w, r, "delete video", err)
			return
		}

		resp.WriteOK(w, map[string]string{"status": "deleted"})
	}
}

func deleteBackingFile(r *http.Request, st *state.State, v *catalog.Video) {
	source := v.Source
	if source == "" {
		// Rows written before the source column existed.
		source = catalog.DetectSource(v.URL)
	}

	if source == catalog.SourceExternal {
		return
	}

	rl := util.FromContext(r.Context())
	if rl == nil {
		rl = util.WithRequest(log.Default(), r, "")
	}

	if st.Media == nil || st.Media.Source() != source {
		rl.Infof("no %s media store configured, leaving backing file for %s", source, v.ID)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), deleteTimeout)
	defer cancel()

	if err := st.Media.Delete(ctx, v.URL); err != nil {
		rl.Errorf("backing file delete failed for %s (record will still be removed): %v", v.ID, err)
	}
}
