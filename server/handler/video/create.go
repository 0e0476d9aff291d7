package video

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/vodhouse/vodhouse/server/handler/common"
	"github.com/vodhouse/vodhouse/server/resp"
	"github.com/vodhouse/vodhouse/server/state"
	"github.com/vodhouse/vodhouse/server/util"
	"github.com/vodhouse/vodhouse/storage/catalog"
	"github.com/vodhouse/vodhouse/storage/media"
	storageutil "github.com/vodhouse/vodhouse/storage/util"
)

// uploadTimeout bounds a single backend store call; expiry is treated as a
// backend failure.
const uploadTimeout = 2 * time.Minute

const defaultDuration = "00:00"

// HandleCreate is the ingestion workflow: validate input, generate an id,
// push the uploaded stream to the media backend if one was sent, then insert
// the catalog record. A backend failure aborts the request before any record
// is written; an absent file is not a failure and falls back to the sample
// source URL.
func HandleCreate(st *state.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		maxMemory := int64(st.Cfg.Server.Limits.MaxMultipartMem)
		maxSize := int64(st.Cfg.Server.Limits.MaxFileSize)

		parsed, err := util.ParseMultipart(w, r, maxMemory, maxSize)
		if err != nil {
			if errors.Is(err, util.ErrFileTooLarge) {
				resp.WritePayloadTooLarge(w, "uploaded file exceeds the size limit")
				return
			}

			resp.WriteInvalidRequest(w, "request must be multipart form data")
			return
		}
		defer parsed.CloseFiles()

		title := parsed.Value("title")
		category := parsed.Value("category")
		if title == "" || category == "" {
			resp.WriteInvalidRequest(w, "title and category are required")
			return
		}

		duration := parsed.Value("duration")
		if duration == "" {
			duration = defaultDuration
		}

		thumbnail := parsed.Value("thumbnail")
		if thumbnail == "" {
			thumbnail = media.PlaceholderThumbnail
		}

		id := catalog.NewVideoID()
		sourceURL := media.FallbackURL
		source := catalog.SourceExternal

		if f := parsed.FileByKey("file"); f != nil {
			name := id + storageutil.FileExt(f.Header.Filename, f.Header.Header.Get("Content-Type"))

			ctx, cancel := context.WithTimeout(r.Context(), uploadTimeout)
			url, err := st.Media.Upload(ctx, f.File, f.Header, name)
			cancel()
			if err != nil {
				common.LogAndWriteError(w, r, "store media", err)
				return
			}

			sourceURL = url
			source = st.Media.Source()
		}

		v := &catalog.Video{
			ID:          id,
			Title:       title,
			Description: parsed.Value("description"),
			URL:         sourceURL,
			Source:      source,
			Thumbnail:   thumbnail,
			Duration:    duration,
			Category:    category,
			CreatedAt:   time.Now().Format(time.RFC3339),
		}

		if err := st.Catalog.Insert(r.Context(), v); err != nil {
			common.LogAndWriteError(w, r, "insert video", err)
			return
		}

		resp.WriteCreated(w, v)
	}
}
