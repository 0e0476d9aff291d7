package progress

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/vodhouse/vodhouse/server/handler/common"
	"github.com/vodhouse/vodhouse/server/resp"
	"github.com/vodhouse/vodhouse/server/state"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type saveRequest struct {
	Email     string  `json:"email" validate:"required"`
	VideoID   string  `json:"video_id" validate:"required"`
	Timestamp float64 `json:"timestamp" validate:"gte=0"`
	Status    string  `json:"status"`
}

// HandleSave upserts the playback state for one (viewer, video) pair. The
// store performs the write as a single conditional statement, so two
// concurrent reports for the same pair cannot lose an update.
func HandleSave(st *state.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req saveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			resp.WriteInvalidRequest(w, "request body must be JSON")
			return
		}

		if err := validate.Struct(req); err != nil {
			resp.WriteInvalidRequest(w, "email and video_id are required, timestamp must not be negative")
			return
		}

		if math.IsNaN(req.Timestamp) || math.IsInf(req.Timestamp, 0) {
			resp.WriteInvalidRequest(w, "timestamp must be a finite number of seconds")
			return
		}

		if err := st.Catalog.Upsert(r.Context(), req.Email, req.VideoID, req.Timestamp, req.Status); err != nil {
			common.LogAndWriteError(w, r, "save progress", err)
			return
		}

		resp.WriteOK(w, map[string]string{"status": "saved"})
	}
}

// HandleForViewer returns every progress row for one viewer as a map keyed
// by video id. A viewer with no rows gets an empty map, not an error.
func HandleForViewer(st *state.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := st.Catalog.ForViewer(r.Context(), r.PathValue("viewer"))
		if err != nil {
			common.LogAndWriteError(w, r, "read progress", err)
			return
		}

		resp.WriteOK(w, rows)
	}
}
