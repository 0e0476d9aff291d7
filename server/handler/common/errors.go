package common

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/vodhouse/vodhouse/server/resp"
	"github.com/vodhouse/vodhouse/server/util"
	"github.com/vodhouse/vodhouse/storage/catalog"
	"github.com/vodhouse/vodhouse/storage/media"
)

// LogAndWriteError logs an error with request context and maps known
// conditions to client responses.
func LogAndWriteError(w http.ResponseWriter, r *http.Request, op string, err error) {
	rl := util.FromContext(r.Context())
	if rl == nil {
		rl = util.WithRequest(log.Default(), r, "")
	}
	rl.Errorf("%s failed: %v", op, err)

	switch {
	case errors.Is(err, catalog.ErrNotFound):
		resp.WriteNotFound(w, "video not found")
	case errors.Is(err, media.ErrCredentials):
		resp.WriteBadGateway(w, "media storage rejected our credentials")
	case errors.Is(err, media.ErrUnavailable):
		resp.WriteBadGateway(w, "media storage is unavailable")
	case errors.Is(err, media.ErrNoStore):
		resp.WriteInternalServerError(w, "no media store is configured for uploads")
	default:
		resp.WriteInternalServerError(w, fmt.Sprintf("%s failed", op))
	}
}
