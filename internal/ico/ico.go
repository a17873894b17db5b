// Package ico reads and writes multi-image Windows icon containers.
//
// A container is a 6-byte ICONDIR header, one 16-byte ICONDIRENTRY per
// image and the image payloads, stored back to back after the directory.
// All integers are little-endian.
package ico

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
)

const (
	headerSize    = 6
	entrySize     = 16
	dibHeaderSize = 40

	typeIcon = 1

	// MaxEntries is the most images a directory can count.
	MaxEntries = 0xffff
)

var (
	// ErrNoSizes is returned when asked to encode zero images.
	ErrNoSizes = errors.New("no icon images to encode")

	// ErrEncodeIO matches every failure to create or write the destination.
	ErrEncodeIO = errors.New("icon write failed")
)

// WriteError reports a failed destination write. The destination is left
// as it was before the write started.
type WriteError struct {
	Path string
	Op   string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write icon %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func (e *WriteError) Is(target error) bool { return target == ErrEncodeIO }

// Image is one square icon image.
type Image struct {
	Size  int
	Image *image.NRGBA
}

// Entry describes one directory entry as laid out in the container.
type Entry struct {
	Size     int
	Width    int // from the directory byte, 0 decoded as 256
	Height   int
	Planes   int
	BitCount int
	Offset   uint32
	Length   uint32
	Format   string // payload format: "bmp" or "png"
}

// Encode lays out a complete container in memory. Images are written in
// ascending size order, each encoded as chosen by format.
func Encode(images []Image, format PayloadFormat) ([]byte, []Entry, error) {
	return NewRegistry().Encode(images, format)
}

// Encode lays out a complete container using r's payload encoders.
func (r *Registry) Encode(images []Image, format PayloadFormat) ([]byte, []Entry, error) {
	if len(images) == 0 {
		return nil, nil, ErrNoSizes
	}
	if len(images) > MaxEntries {
		return nil, nil, fmt.Errorf("too many icon images: %d > %d", len(images), MaxEntries)
	}

	sorted := append([]Image(nil), images...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Size < sorted[j].Size })

	payloads := make([][]byte, len(sorted))
	entries := make([]Entry, len(sorted))
	offset := uint32(headerSize + entrySize*len(sorted))
	for i, im := range sorted {
		b := im.Image.Bounds()
		if b.Dx() != im.Size || b.Dy() != im.Size {
			return nil, nil, fmt.Errorf("icon image %d: buffer is %dx%d, want %dx%d square",
				im.Size, b.Dx(), b.Dy(), im.Size, im.Size)
		}
		enc, err := r.For(format, im.Size)
		if err != nil {
			return nil, nil, err
		}
		data, err := enc.Encode(im.Image)
		if err != nil {
			return nil, nil, fmt.Errorf("encode %dpx %s payload: %w", im.Size, enc.Format(), err)
		}
		payloads[i] = data
		entries[i] = Entry{
			Size:     im.Size,
			Width:    im.Size,
			Height:   im.Size,
			Planes:   1,
			BitCount: 32,
			Offset:   offset,
			Length:   uint32(len(data)),
			Format:   enc.Format(),
		}
		offset += uint32(len(data))
	}

	var buf bytes.Buffer
	buf.Grow(int(offset))

	le := binary.LittleEndian
	var hdr [headerSize]byte
	le.PutUint16(hdr[2:], typeIcon)
	le.PutUint16(hdr[4:], uint16(len(entries)))
	buf.Write(hdr[:])

	for _, e := range entries {
		var rec [entrySize]byte
		rec[0] = dimByte(e.Width)
		rec[1] = dimByte(e.Height)
		rec[2] = 0 // palette colors: full color
		rec[3] = 0 // reserved
		le.PutUint16(rec[4:], uint16(e.Planes))
		le.PutUint16(rec[6:], uint16(e.BitCount))
		le.PutUint32(rec[8:], e.Length)
		le.PutUint32(rec[12:], e.Offset)
		buf.Write(rec[:])
	}
	for _, p := range payloads {
		buf.Write(p)
	}
	return buf.Bytes(), entries, nil
}

// dimByte encodes a side length for the directory. 0 stands for 256; sizes
// above 256 also store 0 and readers take the real size from the payload.
func dimByte(n int) byte {
	if n >= 256 {
		return 0
	}
	return byte(n)
}

// WriteFile writes data to path atomically: a temp file in the same
// directory is written, synced and renamed over path. On failure the temp
// file is removed and any existing file at path is untouched.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &WriteError{Path: path, Op: "create temp", Err: err}
	}
	tmpPath := tmp.Name()
	fail := func(op string, err error) error {
		tmp.Close()
		os.Remove(tmpPath)
		return &WriteError{Path: path, Op: op, Err: err}
	}

	if _, err := tmp.Write(data); err != nil {
		return fail("write", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail("chmod", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &WriteError{Path: path, Op: "close", Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &WriteError{Path: path, Op: "rename", Err: err}
	}
	return nil
}
