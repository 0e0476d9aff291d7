package util

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
)

// ErrFileTooLarge marks an uploaded part exceeding the configured size limit.
// A request carrying one is rejected outright; dropping the part and carrying
// on would persist a record that silently ignores the client's upload.
var ErrFileTooLarge = errors.New("uploaded file exceeds the size limit")

type MultipartFile struct {
	Field  string
	File   multipart.File
	Header *multipart.FileHeader
}

type ParsedMultipart struct {
	Values map[string]string
	Files  []MultipartFile
}

func (pm *ParsedMultipart) CloseFiles() {
	for _, mf := range pm.Files {
		if mf.File != nil {
			mf.File.Close()
		}
	}
}

// Value returns the first value for a form field, trimmed.
func (pm *ParsedMultipart) Value(key string) string {
	return strings.TrimSpace(pm.Values[key])
}

func (pm *ParsedMultipart) FileByKey(key string) *MultipartFile {
	for i := range pm.Files {
		if pm.Files[i].Field == key {
			return &pm.Files[i]
		}
	}

	return nil
}

func ParseMultipart(w http.ResponseWriter, r *http.Request, maxMemory, maxFileSize int64) (*ParsedMultipart, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxMemory+maxFileSize)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return nil, err
	}

	files, err := extractFiles(r, maxFileSize)
	if err != nil {
		return nil, err
	}

	return &ParsedMultipart{
		Values: extractValues(r),
		Files:  files,
	}, nil
}

func extractValues(r *http.Request) map[string]string {
	values := make(map[string]string)

	if r.MultipartForm != nil {
		for key, arr := range r.MultipartForm.Value {
			if len(arr) > 0 {
				values[key] = arr[0]
			}
		}
	}

	return values
}

func extractFiles(r *http.Request, maxFileSize int64) ([]MultipartFile, error) {
	var filesOut []MultipartFile

	closeAll := func() {
		for _, mf := range filesOut {
			mf.File.Close()
		}
	}

	for key, fhs := range r.MultipartForm.File {
		for _, fh := range fhs {
			if maxFileSize > 0 && fh.Size > maxFileSize {
				closeAll()
				return nil, fmt.Errorf("%w: %s is %d bytes", ErrFileTooLarge, fh.Filename, fh.Size)
			}

			f, err := fh.Open()
			if err != nil {
				closeAll()
				return nil, fmt.Errorf("failed to open uploaded file %s: %w", fh.Filename, err)
			}

			filesOut = append(filesOut, MultipartFile{Field: key, File: f, Header: fh})
		}
	}

	return filesOut, nil
}
