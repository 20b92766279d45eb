package fileutil_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"discshelf/internal/fileutil"
)

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	if err := fileutil.CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile failed: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("unexpected destination contents: %q", data)
	}
}

func TestMoveFileMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := fileutil.MoveFile(filepath.Join(dir, "missing.jpg"), filepath.Join(dir, "dest.jpg"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"upload-123.jpg", "upload-123.jpg"},
		{"../../etc/passwd", "passwd"},
		{"..\\..\\shelf.png", "shelf.png"},
		{"  spaced.webp  ", "spaced.webp"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := fileutil.SanitizeFileName(tc.in); got != tc.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestWithinDirectory(t *testing.T) {
	dir := t.TempDir()
	if !fileutil.WithinDirectory(filepath.Join(dir, "photo.jpg"), dir) {
		t.Fatal("expected child path to be within directory")
	}
	if fileutil.WithinDirectory(filepath.Join(dir, "..", "escape.jpg"), dir) {
		t.Fatal("expected parent escape to be rejected")
	}
}

func TestIsImageFile(t *testing.T) {
	if !fileutil.IsImageFile("/drop/IMG_0042.JPG") {
		t.Fatal("expected .JPG to be recognized")
	}
	if fileutil.IsImageFile("/drop/list.csv") {
		t.Fatal("expected .csv to be rejected")
	}
}
