// Package hasher computes short xxHash64 digests for icon payloads and
// decoded pixels.
package hasher

import (
	"encoding/binary"
	"encoding/hex"
	"image"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// DefaultLen is the digest length, in hex chars, used in reports.
const DefaultLen = 16

// ContentHash returns the xxHash64 of data as hex, truncated to hexLen
// chars when 0 < hexLen < 16.
func ContentHash(data []byte, hexLen int) string {
	return format(xxhash.Sum64(data), hexLen)
}

// ContentHashReader computes the same digest as ContentHash, streaming.
func ContentHashReader(r io.Reader, hexLen int) (string, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return format(h.Sum64(), hexLen), nil
}

// FileHash digests the file at path.
func FileHash(path string, hexLen int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return ContentHashReader(f, hexLen)
}

// PixelHash digests the dimensions and NRGBA samples of img, ignoring
// stride padding and bounds offset. Two payloads that decode to the same
// pixels hash equal regardless of their encoding.
func PixelHash(img *image.NRGBA, hexLen int) string {
	b := img.Bounds()
	h := xxhash.New()

	var dims [8]byte
	binary.BigEndian.PutUint32(dims[0:], uint32(b.Dx()))
	binary.BigEndian.PutUint32(dims[4:], uint32(b.Dy()))
	h.Write(dims[:])

	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		h.Write(img.Pix[off : off+b.Dx()*4])
	}
	return format(h.Sum64(), hexLen)
}

func format(sum uint64, hexLen int) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], sum)
	full := hex.EncodeToString(b[:])
	if hexLen > 0 && hexLen < len(full) {
		return full[:hexLen]
	}
	return full
}
