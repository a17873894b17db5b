package hasher

import (
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestContentHash(t *testing.T) {
	a := ContentHash([]byte("icon"), 0)
	if len(a) != 16 {
		t.Fatalf("full digest length %d", len(a))
	}
	if ContentHash([]byte("icon"), 8) != a[:8] {
		t.Error("truncated digest is not a prefix")
	}
	if ContentHash([]byte("icon"), 64) != a {
		t.Error("oversized hexLen should return the full digest")
	}
	if ContentHash([]byte("icons"), 0) == a {
		t.Error("different inputs collided")
	}
	// xxhash64 of the empty input is a fixed, well-known value.
	if got := ContentHash(nil, 0); got != "ef46db3751d8e999" {
		t.Errorf("empty digest: %s", got)
	}
}

func TestReaderAndFileMatch(t *testing.T) {
	data := []byte(strings.Repeat("pixels", 1000))
	want := ContentHash(data, DefaultLen)

	got, err := ContentHashReader(strings.NewReader(string(data)), DefaultLen)
	if err != nil || got != want {
		t.Errorf("reader: %s, %v; want %s", got, err, want)
	}

	path := filepath.Join(t.TempDir(), "blob")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = FileHash(path, DefaultLen)
	if err != nil || got != want {
		t.Errorf("file: %s, %v; want %s", got, err, want)
	}

	if _, err := FileHash(filepath.Join(t.TempDir(), "nope"), 8); err == nil {
		t.Error("missing file should fail")
	}
}

func TestPixelHashIgnoresLayout(t *testing.T) {
	big := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for i := range big.Pix {
		big.Pix[i] = uint8(i)
	}
	sub := big.SubImage(image.Rect(2, 2, 6, 6)).(*image.NRGBA)

	compact := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		copy(compact.Pix[y*compact.Stride:], sub.Pix[sub.PixOffset(2, 2+y):sub.PixOffset(6, 2+y)])
	}
	if PixelHash(sub, 0) != PixelHash(compact, 0) {
		t.Error("same pixels with different stride/offset hashed differently")
	}

	// Same bytes, different shape.
	wide := image.NewNRGBA(image.Rect(0, 0, 16, 1))
	copy(wide.Pix, compact.Pix)
	if PixelHash(wide, 0) == PixelHash(compact, 0) {
		t.Error("dimensions must be part of the digest")
	}
}
