package resume

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("resume of "+n), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestLocalSource_DirectorySortedSkipsHidden(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b.pdf", "a.docx", ".DS_Store")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}

	files, err := NewLocalSource().List(context.Background(), dir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}
	if files[0].Name != "a.docx" || files[1].Name != "b.pdf" {
		t.Errorf("order = %s, %s", files[0].Name, files[1].Name)
	}
	if files[0].ID == "" || files[0].ID == files[1].ID {
		t.Errorf("ids should be unique and non-empty: %q %q", files[0].ID, files[1].ID)
	}
}

func TestLocalSource_SingleFileOpens(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "cv.txt")

	files, err := NewLocalSource().List(context.Background(), filepath.Join(dir, "cv.txt"))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("got %d files, want 1", len(files))
	}

	rc, err := files[0].Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "resume of cv.txt" {
		t.Errorf("content = %q", data)
	}
	if files[0].Size != int64(len(data)) {
		t.Errorf("Size = %d, want %d", files[0].Size, len(data))
	}
}

func TestLocalSource_Glob(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.pdf", "b.pdf", "c.txt")

	files, err := NewLocalSource().List(context.Background(), filepath.Join(dir, "*.pdf"))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}
}

func TestLocalSource_NoMatch(t *testing.T) {
	_, err := NewLocalSource().List(context.Background(), filepath.Join(t.TempDir(), "*.pdf"))
	if err == nil {
		t.Fatal("expected error when nothing matches")
	}
}

func TestListAll_KeepsDuplicates(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "cv.txt")
	path := filepath.Join(dir, "cv.txt")

	files, err := ListAll(context.Background(), NewLocalSource(), []string{path, path})
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2 (no dedup)", len(files))
	}
	if files[0].ID == files[1].ID {
		t.Error("duplicate picks should get distinct ids")
	}
}

func TestSources_S3WithoutConfig(t *testing.T) {
	src := Sources{Local: NewLocalSource()}
	if _, err := src.List(context.Background(), "s3://bucket/resumes/"); err == nil {
		t.Fatal("expected error for s3 location without s3 source")
	}
}

func TestSplitLocations(t *testing.T) {
	got := SplitLocations(" ./a.pdf, ./b.pdf\ts3://bkt/x ")
	want := []string{"./a.pdf", "./b.pdf", "s3://bkt/x"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
