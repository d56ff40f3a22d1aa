package resume

import (
	"context"
	"fmt"
	"strings"

	"github.com/amishk599/screener/internal/model"
)

// Source turns a user-supplied location into an ordered list of file handles.
type Source interface {
	List(ctx context.Context, location string) ([]model.UploadedFile, error)
}

// Sources routes s3:// locations to the S3 source and everything else to the
// local filesystem.
type Sources struct {
	Local Source
	S3    Source // nil when no bucket is configured
}

// List resolves one location.
func (s Sources) List(ctx context.Context, location string) ([]model.UploadedFile, error) {
	if strings.HasPrefix(location, s3Scheme) {
		if s.S3 == nil {
			return nil, fmt.Errorf("%s: resumes.s3 is not configured", location)
		}
		return s.S3.List(ctx, location)
	}
	return s.Local.List(ctx, location)
}

// ListAll resolves every location in order and concatenates the results.
// Files listed twice appear twice.
func ListAll(ctx context.Context, src Source, locations []string) ([]model.UploadedFile, error) {
	var files []model.UploadedFile
	for _, loc := range locations {
		found, err := src.List(ctx, loc)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

// SplitLocations splits a prompt entry on commas and whitespace.
func SplitLocations(input string) []string {
	return strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}
