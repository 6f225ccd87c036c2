package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/seatsurge/ticketd/internal/domain"
)

func TestDiskImageStore_Save(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskImageStore(dir, "/static/images/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("stores image and returns url", func(t *testing.T) {
		url, err := store.Save(context.Background(), "event-1", "poster.PNG", strings.NewReader("fake-image-bytes"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if url != "/static/images/event-1.png" {
			t.Errorf("expected /static/images/event-1.png, got %s", url)
		}

		data, err := os.ReadFile(filepath.Join(dir, "event-1.png"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != "fake-image-bytes" {
			t.Errorf("unexpected file contents: %q", data)
		}
	})

	t.Run("re-upload replaces previous image", func(t *testing.T) {
		if _, err := store.Save(context.Background(), "event-1", "new.png", strings.NewReader("new-bytes")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data, err := os.ReadFile(filepath.Join(dir, "event-1.png"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != "new-bytes" {
			t.Errorf("unexpected file contents: %q", data)
		}
	})

	t.Run("rejects unsupported extensions", func(t *testing.T) {
		_, err := store.Save(context.Background(), "event-1", "malware.exe", strings.NewReader("nope"))
		if !errors.Is(err, domain.ErrInvalidImageFormat) {
			t.Errorf("expected ErrInvalidImageFormat, got %v", err)
		}
	})
}
