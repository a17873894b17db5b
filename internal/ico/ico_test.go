package ico

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestEncodeLayout(t *testing.T) {
	images := []Image{
		{Size: 48, Image: gradientImg(48)},
		{Size: 16, Image: gradientImg(16)},
		{Size: 32, Image: gradientImg(32)},
	}
	data, entries, err := Encode(images, FormatBMP)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	le := binary.LittleEndian
	if le.Uint16(data[0:]) != 0 || le.Uint16(data[2:]) != 1 || le.Uint16(data[4:]) != 3 {
		t.Fatalf("header: % x", data[:6])
	}

	want := []int{16, 32, 48}
	total := headerSize + entrySize*len(want)
	next := uint32(total)
	for i, e := range entries {
		if e.Size != want[i] {
			t.Errorf("entry %d: size %d, want %d", i, e.Size, want[i])
		}
		if e.Offset != next {
			t.Errorf("entry %d: offset %d, want %d (gap or overlap)", i, e.Offset, next)
		}
		rec := data[headerSize+i*entrySize:]
		if int(rec[0]) != want[i] || int(rec[1]) != want[i] || rec[2] != 0 || rec[3] != 0 {
			t.Errorf("entry %d: dims/palette/reserved % x", i, rec[:4])
		}
		if le.Uint16(rec[4:]) != 1 || le.Uint16(rec[6:]) != 32 {
			t.Errorf("entry %d: planes %d bpp %d", i, le.Uint16(rec[4:]), le.Uint16(rec[6:]))
		}
		if le.Uint32(rec[8:]) != e.Length || le.Uint32(rec[12:]) != e.Offset {
			t.Errorf("entry %d: length/offset fields disagree with returned entry", i)
		}
		wantLen := dibHeaderSize + want[i]*want[i]*4 + maskRowBytes(want[i])*want[i]
		if int(e.Length) != wantLen {
			t.Errorf("entry %d: payload length %d, want %d", i, e.Length, wantLen)
		}
		next += e.Length
		total += int(e.Length)
	}
	if len(data) != total {
		t.Errorf("file length %d, want header+directory+payloads = %d", len(data), total)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, format := range []PayloadFormat{FormatBMP, FormatPNG, FormatAuto} {
		t.Run(string(format), func(t *testing.T) {
			var images []Image
			for _, s := range []int{16, 32, 48} {
				images = append(images, Image{Size: s, Image: gradientImg(s)})
			}
			data, _, err := Encode(images, format)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			dir, err := Parse(data)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if len(dir.Entries) != 3 {
				t.Fatalf("entries: %d", len(dir.Entries))
			}
			for i, e := range dir.Entries {
				if e.Size != images[i].Size || e.BitCount != 32 {
					t.Errorf("entry %d: size %d bpp %d", i, e.Size, e.BitCount)
				}
				img, err := dir.Image(i)
				if err != nil {
					t.Fatalf("decode entry %d: %v", i, err)
				}
				if !bytes.Equal(img.Pix, images[i].Image.Pix) {
					t.Errorf("entry %d: pixels changed in round trip", i)
				}
			}
		})
	}
}

func TestBMPPayloadHeaderAndMask(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	// Top-left pixel transparent, everything else opaque.
	for i := 0; i < len(img.Pix); i += 4 {
		copy(img.Pix[i:], []uint8{10, 20, 30, 255})
	}
	img.SetNRGBA(0, 0, color.NRGBA{1, 2, 3, 0})

	p, err := (&BMPEncoder{}).Encode(img)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	le := binary.LittleEndian
	if le.Uint32(p[0:]) != 40 || le.Uint32(p[4:]) != 16 || le.Uint32(p[8:]) != 32 {
		t.Errorf("header size/width/height: % x", p[:12])
	}
	if le.Uint16(p[12:]) != 1 || le.Uint16(p[14:]) != 32 || le.Uint32(p[16:]) != 0 {
		t.Errorf("planes/bpp/compression: % x", p[12:20])
	}

	// Rows are bottom-up: image row 0 is the last color row.
	lastRow := p[dibHeaderSize+15*16*4:]
	if !bytes.Equal(lastRow[:4], []byte{3, 2, 1, 0}) {
		t.Errorf("top-left pixel as BGRA: % x", lastRow[:4])
	}
	if !bytes.Equal(p[dibHeaderSize:dibHeaderSize+4], []byte{30, 20, 10, 255}) {
		t.Errorf("bottom-left pixel as BGRA: % x", p[dibHeaderSize:dibHeaderSize+4])
	}

	mask := p[dibHeaderSize+16*16*4:]
	if len(mask) != 4*16 {
		t.Fatalf("mask length %d", len(mask))
	}
	if mask[15*4] != 0x80 {
		t.Errorf("mask bit for transparent top-left: %08b", mask[15*4])
	}
	for i, b := range mask[:15*4] {
		if b != 0 {
			t.Fatalf("mask byte %d should be clear, got %08b", i, b)
		}
	}
}

func TestLargeSizesUseZeroDimensionByte(t *testing.T) {
	images := []Image{
		{Size: 256, Image: gradientImg(256)},
		{Size: 300, Image: gradientImg(300)},
		{Size: 255, Image: gradientImg(255)},
	}
	data, entries, err := Encode(images, FormatAuto)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	wantFormat := []string{"bmp", "png", "png"}
	wantByte := []byte{255, 0, 0}
	for i, e := range entries {
		if e.Format != wantFormat[i] {
			t.Errorf("entry %d (%dpx): format %s, want %s", i, e.Size, e.Format, wantFormat[i])
		}
		if b := data[headerSize+i*entrySize]; b != wantByte[i] {
			t.Errorf("entry %d: width byte %d, want %d", i, b, wantByte[i])
		}
	}

	dir, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for i, want := range []int{255, 256, 300} {
		if dir.Entries[i].Size != want {
			t.Errorf("parsed entry %d: size %d, want %d", i, dir.Entries[i].Size, want)
		}
	}
}

func TestEncodeErrors(t *testing.T) {
	if _, _, err := Encode(nil, FormatBMP); !errors.Is(err, ErrNoSizes) {
		t.Errorf("empty: got %v, want ErrNoSizes", err)
	}
	_, _, err := Encode([]Image{{Size: 32, Image: gradientImg(16)}}, FormatBMP)
	if err == nil {
		t.Error("size/buffer mismatch should fail")
	}
	_, _, err = Encode([]Image{{Size: 16, Image: gradientImg(16)}}, PayloadFormat("jpeg"))
	if err == nil {
		t.Error("unknown payload format should fail")
	}
}

func TestParsePayloadFormat(t *testing.T) {
	for in, want := range map[string]PayloadFormat{"BMP": FormatBMP, "png": FormatPNG, " auto ": FormatAuto} {
		if got, err := ParsePayloadFormat(in); err != nil || got != want {
			t.Errorf("ParsePayloadFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParsePayloadFormat("gif"); err == nil {
		t.Error("gif should be rejected")
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	good, _, err := Encode([]Image{
		{Size: 16, Image: gradientImg(16)},
		{Size: 32, Image: gradientImg(32)},
	}, FormatBMP)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	le := binary.LittleEndian
	mutate := func(f func(b []byte) []byte) []byte {
		return f(append([]byte(nil), good...))
	}

	tests := map[string][]byte{
		"short":          good[:4],
		"cursor type":    mutate(func(b []byte) []byte { le.PutUint16(b[2:], 2); return b }),
		"reserved":       mutate(func(b []byte) []byte { le.PutUint16(b[0:], 1); return b }),
		"zero count":     mutate(func(b []byte) []byte { le.PutUint16(b[4:], 0); return b }),
		"truncated dir":  good[:headerSize+entrySize],
		"truncated data": good[:len(good)-1],
		"overlap": mutate(func(b []byte) []byte {
			second := b[headerSize+entrySize:]
			le.PutUint32(second[12:], le.Uint32(second[12:])-8)
			return b
		}),
		"inside directory": mutate(func(b []byte) []byte { le.PutUint32(b[headerSize+12:], 6); return b }),
		"wrong declared size": mutate(func(b []byte) []byte {
			b[headerSize] = 17
			return b
		}),
	}
	for name, data := range tests {
		if _, err := Parse(data); !errors.Is(err, ErrInvalidIcon) {
			t.Errorf("%s: got %v, want ErrInvalidIcon", name, err)
		}
	}
}

func TestWriteFileReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.ico")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(path, []byte("new contents")); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil || string(got) != "new contents" {
		t.Fatalf("read back %q, %v", got, err)
	}
	assertOnlyFiles(t, dir, "app.ico")
}

func TestWriteFileFailures(t *testing.T) {
	dir := t.TempDir()

	err := WriteFile(filepath.Join(dir, "missing", "app.ico"), []byte("x"))
	if !errors.Is(err, ErrEncodeIO) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing dir: got %v", err)
	}
	var we *WriteError
	if !errors.As(err, &we) || we.Op != "create temp" {
		t.Errorf("expected *WriteError from create temp, got %#v", err)
	}

	// Renaming a file over a non-empty directory fails; the directory and
	// its contents must survive and no temp file may linger.
	target := filepath.Join(dir, "taken.ico")
	if err := os.MkdirAll(filepath.Join(target, "keep"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(target, []byte("x")); !errors.Is(err, ErrEncodeIO) {
		t.Errorf("directory target: got %v", err)
	}
	if _, err := os.Stat(filepath.Join(target, "keep")); err != nil {
		t.Errorf("directory target was modified: %v", err)
	}
	assertOnlyFiles(t, dir, "taken.ico")
}

// ─── helpers ─────────────────────────────────────────────────

func gradientImg(side int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, side, side))
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / max(side-1, 1)),
				G: uint8(y * 255 / max(side-1, 1)),
				B: uint8(x ^ y),
				A: uint8((x + y) % 256),
			})
		}
	}
	return img
}

func assertOnlyFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]bool{}
	for _, n := range names {
		want[n] = true
	}
	for _, e := range entries {
		if !want[e.Name()] {
			t.Errorf("unexpected file left behind: %s", e.Name())
		}
	}
	if len(entries) != len(names) {
		t.Errorf("got %d entries in %s, want %d", len(entries), dir, len(names))
	}
}
