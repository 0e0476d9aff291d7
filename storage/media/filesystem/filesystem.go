package filesystem

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/vodhouse/vodhouse/config"
	"github.com/vodhouse/vodhouse/storage/catalog"
	storageutil "github.com/vodhouse/vodhouse/storage/util"
)

// StoreImpl stores uploaded media files in a local directory.
type StoreImpl struct {
	basePath  string
	publicURL string
	mu        sync.Mutex // Protects file operations
}

// NewFilesystemMediaStore creates a new filesystem-based media store.
func NewFilesystemMediaStore(cfg *config.FilesystemMediaStrategy) (*StoreImpl, error) {
	if cfg == nil {
		return nil, fmt.Errorf("filesystem media config is nil")
	}

	if err := os.MkdirAll(cfg.Path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &StoreImpl{
		basePath:  cfg.Path,
		publicURL: storageutil.NormalizeBaseURL(cfg.PublicUrl),
	}, nil
}

// Upload saves the provided file under the given name and returns its public
// URL. The name is derived from the video id upstream, so collisions only
// happen when the same asset is written twice.
func (fs *StoreImpl) Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader, name string) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if file == nil || header == nil {
		return "", fmt.Errorf("file and header are required")
	}

	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid media name %q", name)
	}

	absPath := filepath.Join(fs.basePath, name)

	outFile, err := os.Create(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer outFile.Close()

	if _, err := io.Copy(outFile, file); err != nil {
		// Clean up the partial file so a failed ingest leaves nothing behind.
		_ = os.Remove(absPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return fs.publicURL + name, nil
}

// Delete removes a media file from the filesystem. Deleting a file that is
// already gone succeeds.
func (fs *StoreImpl) Delete(ctx context.Context, url string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if !strings.HasPrefix(url, fs.publicURL) {
		return fmt.Errorf("url %q does not match public URL prefix %q", url, fs.publicURL)
	}

	relPath := strings.TrimPrefix(url, fs.publicURL)
	relPath = filepath.FromSlash(relPath)

	if relPath == "" || relPath != filepath.Base(relPath) {
		return fmt.Errorf("url %q does not name a stored file", url)
	}

	absPath := filepath.Join(fs.basePath, relPath)

	if _, err := os.Stat(absPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat file: %w", err)
	}

	if err := os.Remove(absPath); err != nil {
		return fmt.Errorf("failed to remove file: %w", err)
	}

	return nil
}

func (fs *StoreImpl) Source() catalog.Source {
	return catalog.SourceLocal
}

// BasePath exposes the upload root so the server can mount a static file
// handler over it.
func (fs *StoreImpl) BasePath() string {
	return fs.basePath
}
