package assets

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/ariane/internal/entity"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "/static/uploads/")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	rel := CoverPath("story-1", "PNG")
	if rel != "covers/story-1.png" {
		t.Fatalf("unexpected cover path %q", rel)
	}
	if err := store.Save(rel, bytes.NewReader([]byte("data"))); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !store.Exists(rel) {
		t.Fatalf("expected asset to exist")
	}

	rc, err := store.Open(rel)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != "data" {
		t.Fatalf("unexpected content %q", body)
	}

	if url := store.URL(rel); url != "/static/uploads/covers/story-1.png" {
		t.Fatalf("unexpected url %q", url)
	}

	if err := store.Remove(rel); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := store.Open(rel); !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("expected not found after remove, got %v", err)
	}
}

func TestCleanRejectsEscapes(t *testing.T) {
	for _, rel := range []string{"", "../secret", "covers/../../etc/passwd", ".."} {
		if _, err := Clean(rel); !errors.Is(err, entity.ErrValidation) {
			t.Fatalf("expected %q to be rejected, got %v", rel, err)
		}
	}

	clean, err := Clean("/pages//a.png")
	if err != nil || clean != "pages/a.png" {
		t.Fatalf("expected pages/a.png, got %q (%v)", clean, err)
	}
}

func TestRenamedKeepsDirectoryAndExtension(t *testing.T) {
	if got := Renamed("covers/old.jpg", "new"); got != "covers/new.jpg" {
		t.Fatalf("unexpected rename %q", got)
	}
	if got := Renamed("old.png", "new"); got != "new.png" {
		t.Fatalf("unexpected rename %q", got)
	}
}

func testBitmap(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	return img
}

func TestNormalizePassesPNGThrough(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, testBitmap(40, 20)); err != nil {
		t.Fatalf("encode: %v", err)
	}

	img, err := Normalize(buf.Bytes())
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if img.Format != "png" || img.Width != 40 || img.Height != 20 {
		t.Fatalf("unexpected image %+v", img)
	}
	if !bytes.Equal(img.Data, buf.Bytes()) {
		t.Fatalf("expected untouched data")
	}
}

func TestNormalizeConvertsBMP(t *testing.T) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, testBitmap(10, 30)); err != nil {
		t.Fatalf("encode: %v", err)
	}

	img, err := Normalize(buf.Bytes())
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if img.Format != "png" || img.Width != 10 || img.Height != 30 {
		t.Fatalf("unexpected image %+v", img)
	}
}

func TestNormalizeDownscalesOversized(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, testBitmap(MaxImageSide*2, 100)); err != nil {
		t.Fatalf("encode: %v", err)
	}

	img, err := Normalize(buf.Bytes())
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if img.Width != MaxImageSide || img.Height != 50 {
		t.Fatalf("expected %dx50, got %dx%d", MaxImageSide, img.Width, img.Height)
	}
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	if _, err := Normalize([]byte("not an image")); !errors.Is(err, entity.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
