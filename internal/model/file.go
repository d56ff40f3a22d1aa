package model

import (
	"bytes"
	"context"
	"io"
)

// Opener returns a fresh reader over a file's content.
type Opener func(ctx context.Context) (io.ReadCloser, error)

// UploadedFile is an opaque handle to one chosen resume. The controller never
// looks at the content; only analyzers open it.
type UploadedFile struct {
	ID          string `json:"id"`   // unique per upload, duplicates by name stay distinct
	Name        string `json:"name"` // base name shown in the file list
	Size        int64  `json:"size"`
	ContentType string `json:"content_type,omitempty"`
	Location    string `json:"location,omitempty"` // path or object URI it was read from

	open Opener
}

// NewUploadedFile builds a handle whose content is produced by open.
func NewUploadedFile(id, name string, size int64, open Opener) UploadedFile {
	return UploadedFile{ID: id, Name: name, Size: size, open: open}
}

// NewMemoryFile builds a handle over an in-memory copy of data.
func NewMemoryFile(id, name string, data []byte) UploadedFile {
	buf := append([]byte(nil), data...)
	return UploadedFile{
		ID:   id,
		Name: name,
		Size: int64(len(buf)),
		open: func(context.Context) (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(buf)), nil
		},
	}
}

// Open returns the file content. Handles without an opener yield io.ErrUnexpectedEOF.
func (f UploadedFile) Open(ctx context.Context) (io.ReadCloser, error) {
	if f.open == nil {
		return nil, io.ErrUnexpectedEOF
	}
	return f.open(ctx)
}
