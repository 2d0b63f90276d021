package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestPhotoKeyFormat(t *testing.T) {
	owner := uuid.MustParse("7a1c6a55-5c2b-4f4e-9a54-0c4a5b6f2d11")
	at := time.UnixMilli(1717000000123)

	got := PhotoKey(owner, at)
	want := "parking_spot_photos/1717000000123-7a1c6a55-5c2b-4f4e-9a54-0c4a5b6f2d11.jpg"
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestLocalStorageLifecycle(t *testing.T) {
	t.Parallel()

	st, err := NewLocalStorage(t.TempDir(), "http://cdn.test/media/")
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}

	ctx := context.Background()
	key := PhotoKey(uuid.New(), time.Now())

	if err := st.Put(ctx, key, bytes.NewReader([]byte("jpeg-bytes")), "image/jpeg"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	ok, err := st.Exists(ctx, key)
	if err != nil || !ok {
		t.Fatalf("expected object to exist, ok=%v err=%v", ok, err)
	}

	url := st.GetURL(key)
	if url != "http://cdn.test/media/"+key {
		t.Fatalf("unexpected url %s", url)
	}
	if got, ok := KeyFromURL(st, url); !ok || got != key {
		t.Fatalf("expected key %s back, got %s (%v)", key, got, ok)
	}

	if err := st.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := st.Delete(ctx, key); err != nil {
		t.Fatalf("second Delete should be a no-op: %v", err)
	}
	if ok, _ := st.Exists(ctx, key); ok {
		t.Fatal("expected object to be gone")
	}
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	st, err := NewLocalStorage(t.TempDir(), "/media")
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}
	if err := st.Put(context.Background(), "../escape.jpg", bytes.NewReader(nil), "image/jpeg"); err == nil {
		t.Fatal("expected traversal key to be rejected")
	}
}

func TestKeyFromForeignURL(t *testing.T) {
	st, err := NewLocalStorage(t.TempDir(), "/media")
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}
	if _, ok := KeyFromURL(st, "https://elsewhere.test/parking_spot_photos/x.jpg"); ok {
		t.Fatal("expected foreign URL to be ignored")
	}
}

func TestReadImage(t *testing.T) {
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	pngBytes := buf.Bytes()

	data, mime, err := ReadImage(bytes.NewReader(pngBytes), 1<<20)
	if err != nil || mime != "image/png" || len(data) != len(pngBytes) {
		t.Fatalf("unexpected result mime=%s err=%v", mime, err)
	}

	if _, _, err := ReadImage(bytes.NewReader(pngBytes), 10); !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
	if _, _, err := ReadImage(bytes.NewReader([]byte("plain text")), 1<<20); !errors.Is(err, ErrInvalidMimeType) {
		t.Fatalf("expected ErrInvalidMimeType, got %v", err)
	}
	if _, _, err := ReadImage(bytes.NewReader(nil), 1<<20); !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
}
