package media

import (
	"context"
	"errors"
	"mime/multipart"

	"github.com/vodhouse/vodhouse/storage/catalog"
)

// FallbackURL is served as the video source when an asset is ingested
// without an upload.
const FallbackURL = "https://storage.googleapis.com/gtv-videos-bucket/sample/BigBuckBunny.mp4"

// PlaceholderThumbnail is used when no thumbnail is supplied at ingest time.
const PlaceholderThumbnail = "https://via.placeholder.com/300x169.png?text=No+Image"

var (
	// ErrCredentials indicates the backend rejected or lacked credentials.
	// Fatal to the ingestion request.
	ErrCredentials = errors.New("media backend credentials rejected")

	// ErrUnavailable indicates the backend could not complete the call.
	// Fatal to the ingestion request.
	ErrUnavailable = errors.New("media backend unavailable")

	// ErrNoStore is returned by the "none" strategy when a file part arrives.
	ErrNoStore = errors.New("no media store configured for uploads")
)

// Store is a durable byte-storage backend for uploaded media. Upload persists
// the stream under the given name and returns a publicly resolvable URL.
// Delete is idempotent: removing an already-absent object is not an error.
type Store interface {
	Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader, name string) (string, error)
	Delete(ctx context.Context, url string) error

	// Source tags the backend so the catalog can persist which store owns
	// an uploaded file.
	Source() catalog.Source
}

// NoneStore rejects uploads. Deployments that only reference externally
// hosted media run with this strategy.
type NoneStore struct{}

func (NoneStore) Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader, name string) (string, error) {
	return "", ErrNoStore
}

func (NoneStore) Delete(ctx context.Context, url string) error {
	return nil
}

func (NoneStore) Source() catalog.Source {
	return catalog.SourceExternal
}
