package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("video not found")

// Source records which media backend owns the file a video row points at.
// It is persisted alongside the row so deletion does not have to guess the
// backend from the URL text.
type Source string

const (
	SourceLocal    Source = "local"
	SourceObject   Source = "object"
	SourceExternal Source = "external"
)

type Video struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Source      Source `json:"source"`
	Thumbnail   string `json:"thumbnail"`
	Duration    string `json:"duration"`
	Category    string `json:"category"`
	CreatedAt   string `json:"created_at"`
}

type Progress struct {
	Viewer      string  `json:"user_email"`
	VideoID     string  `json:"video_id"`
	Position    float64 `json:"timestamp"`
	Status      string  `json:"status"`
	LastWatched string  `json:"last_watched"`
}

type AssetStore interface {
	Insert(ctx context.Context, v *Video) error
	Get(ctx context.Context, id string) (*Video, error)
	List(ctx context.Context, category string) ([]Video, error)
	Delete(ctx context.Context, id string) error
}

type ProgressStore interface {
	// Upsert writes the playback state for one (viewer, video) key. The write
	// is a single conditional statement so concurrent reports for the same
	// key cannot lose an update.
	Upsert(ctx context.Context, viewer, videoID string, position float64, status string) error
	ForViewer(ctx context.Context, viewer string) (map[string]Progress, error)
}

// Store is the full catalog surface a strategy provides.
type Store interface {
	AssetStore
	ProgressStore
}

// NewVideoID generates a fresh catalog identifier. The "v" prefix is kept
// for compatibility with existing rows and clients.
func NewVideoID() string {
	return "v" + uuid.NewString()
}

// DetectSource classifies a media URL for rows written before the source
// column existed. Rows written by this version carry an explicit tag.
func DetectSource(raw string) Source {
	u, err := url.Parse(raw)
	if err != nil {
		return SourceExternal
	}

	if strings.Contains(u.Path, "/uploads/") {
		return SourceLocal
	}

	host := strings.ToLower(u.Hostname())
	if strings.HasPrefix(host, "s3.") || strings.Contains(host, ".s3.") || strings.HasSuffix(host, ".r2.cloudflarestorage.com") {
		return SourceObject
	}

	return SourceExternal
}

// ListAll is the category filter value (and the empty string) that disables
// filtering in List.
const ListAll = "all"

func categoryFiltered(category string) bool {
	return category != "" && category != ListAll
}

func validatePosition(position float64) error {
	if math.IsNaN(position) || math.IsInf(position, 0) {
		return fmt.Errorf("playback position must be a finite number")
	}

	if position < 0 {
		return fmt.Errorf("playback position must not be negative")
	}

	return nil
}
