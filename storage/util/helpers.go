package util

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
)

// NormalizeBaseURL ensures the base URL ends with a slash.
func NormalizeBaseURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimRight(trimmed, "/")
	return trimmed + "/"
}

// DeriveTableName constructs a table name from the configured prefix, if any.
func DeriveTableName(prefix string, table string) string {
	if prefix == "" {
		return table
	}

	return fmt.Sprintf("%s_%s", prefix, table)
}

// FileExt returns a URL-safe extension (leading dot included) for an
// uploaded file. The extension comes from the client, so it is slugified
// before it becomes part of an object key or filename. When the filename
// carries no extension, one is derived from the declared content type.
func FileExt(filename string, contentType string) string {
	ext := filepath.Ext(filename)

	if ext == "" && contentType != "" {
		exts, err := mime.ExtensionsByType(contentType)
		if err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}

	body := slug.Make(strings.TrimPrefix(ext, "."))
	if body == "" {
		return ""
	}

	return "." + body
}
