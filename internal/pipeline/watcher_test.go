package pipeline_test

import (
	"path/filepath"
	"testing"
	"time"

	"discshelf/internal/logging"
	"discshelf/internal/pipeline"
	"discshelf/internal/testsupport"
)

func TestWatcherAnnouncesSettledImages(t *testing.T) {
	dir := t.TempDir()
	processed := filepath.Join(dir, "processed")
	notified := make(chan string, 4)

	watcher := pipeline.NewWatcher(dir, processed, 100*time.Millisecond, logging.NewNop(), func(path string) {
		notified <- path
	})
	if err := watcher.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { _ = watcher.Close() })

	testsupport.WriteFile(t, filepath.Join(dir, "shelf.jpg"), []byte("fake-jpeg"))

	select {
	case path := <-notified:
		if filepath.Base(path) != "shelf.jpg" {
			t.Fatalf("unexpected notification %q", path)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("expected notification for new image")
	}
}

func TestWatcherIgnoresNonImages(t *testing.T) {
	dir := t.TempDir()
	notified := make(chan string, 4)

	watcher := pipeline.NewWatcher(dir, "", 50*time.Millisecond, logging.NewNop(), func(path string) {
		notified <- path
	})
	if err := watcher.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { _ = watcher.Close() })

	testsupport.WriteFile(t, filepath.Join(dir, "movie-list.csv"), []byte("Title\nHeat\n"))
	testsupport.WriteFile(t, filepath.Join(dir, ".hidden.jpg"), []byte("fake"))

	select {
	case path := <-notified:
		t.Fatalf("unexpected notification for %q", path)
	case <-time.After(500 * time.Millisecond):
	}
}
