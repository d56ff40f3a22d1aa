package resume

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/amishk599/screener/internal/model"
)

// LocalSource lists files from the local filesystem. A location is a file
// path, a glob pattern or a directory (non-recursive, hidden files skipped).
type LocalSource struct{}

// NewLocalSource returns a LocalSource.
func NewLocalSource() *LocalSource {
	return &LocalSource{}
}

// List resolves location into file handles.
func (s *LocalSource) List(_ context.Context, location string) ([]model.UploadedFile, error) {
	if location == "" {
		return nil, fmt.Errorf("empty location")
	}
	if strings.HasPrefix(location, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			location = filepath.Join(home, location[2:])
		}
	}

	info, err := os.Stat(location)
	switch {
	case err == nil && info.IsDir():
		return listDir(location)
	case err == nil:
		return []model.UploadedFile{localFile(location, info)}, nil
	}

	matches, globErr := filepath.Glob(location)
	if globErr != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", location, globErr)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match %q", location)
	}

	files := make([]model.UploadedFile, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, localFile(m, info))
	}
	return files, nil
}

func listDir(dir string) ([]model.UploadedFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	files := make([]model.UploadedFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, localFile(filepath.Join(dir, e.Name()), info))
	}
	return files, nil
}

func localFile(path string, info os.FileInfo) model.UploadedFile {
	f := model.NewUploadedFile(uuid.NewString(), filepath.Base(path), info.Size(),
		func(context.Context) (io.ReadCloser, error) {
			// #nosec G304 - the user picked this path
			return os.Open(path)
		})
	f.ContentType = mime.TypeByExtension(filepath.Ext(path))
	f.Location = path
	return f
}
