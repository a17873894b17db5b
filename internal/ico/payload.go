package ico

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
	"strings"
)

// PayloadEncoder encodes one icon image into its embedded record.
type PayloadEncoder interface {
	// Format returns the payload format name ("bmp" or "png").
	Format() string

	// Encode serializes a square NRGBA image.
	Encode(img *image.NRGBA) ([]byte, error)
}

// BMPEncoder writes a 32-bit BITMAPINFOHEADER DIB with an AND mask, the
// classic uncompressed icon record.
type BMPEncoder struct{}

func (e *BMPEncoder) Format() string { return "bmp" }

// BMP record layout: 40-byte header, bottom-up BGRA rows, then a 1-bpp AND
// mask with rows padded to 32 bits. The header height counts both the color
// and the mask planes, so it is twice the image height.
func (e *BMPEncoder) Encode(img *image.NRGBA) ([]byte, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("bmp payload: empty image %dx%d", w, h)
	}

	maskStride := maskRowBytes(w)
	colorSize := w * h * 4
	buf := make([]byte, dibHeaderSize+colorSize+maskStride*h)

	le := binary.LittleEndian
	le.PutUint32(buf[0:], dibHeaderSize)
	le.PutUint32(buf[4:], uint32(w))
	le.PutUint32(buf[8:], uint32(2*h))
	le.PutUint16(buf[12:], 1)  // planes
	le.PutUint16(buf[14:], 32) // bits per pixel
	le.PutUint32(buf[16:], 0)  // BI_RGB
	le.PutUint32(buf[20:], uint32(colorSize+maskStride*h))

	pix := buf[dibHeaderSize : dibHeaderSize+colorSize]
	mask := buf[dibHeaderSize+colorSize:]
	for y := 0; y < h; y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		src := img.Pix[off : off+w*4]
		row := h - 1 - y
		dst := pix[row*w*4 : (row+1)*w*4]
		mrow := mask[row*maskStride : (row+1)*maskStride]
		for x := 0; x < w; x++ {
			s := src[x*4 : x*4+4]
			d := dst[x*4 : x*4+4]
			d[0], d[1], d[2], d[3] = s[2], s[1], s[0], s[3]
			if s[3] == 0 {
				mrow[x/8] |= 0x80 >> (x % 8)
			}
		}
	}
	return buf, nil
}

// PNGEncoder embeds a PNG stream.
type PNGEncoder struct{}

func (e *PNGEncoder) Format() string { return "png" }

func (e *PNGEncoder) Encode(img *image.NRGBA) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(img.Pix) / 2)

	enc := &png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PayloadFormat selects payload encoders per icon size.
type PayloadFormat string

const (
	// FormatBMP writes every entry as an uncompressed DIB.
	FormatBMP PayloadFormat = "bmp"
	// FormatPNG writes every entry as PNG.
	FormatPNG PayloadFormat = "png"
	// FormatAuto writes DIBs below 256 pixels and PNG from 256 up.
	FormatAuto PayloadFormat = "auto"
)

// autoPNGThreshold is the smallest size FormatAuto stores as PNG.
const autoPNGThreshold = 256

// ParsePayloadFormat parses "bmp", "png" or "auto" (any case).
func ParsePayloadFormat(s string) (PayloadFormat, error) {
	switch f := PayloadFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatBMP, FormatPNG, FormatAuto:
		return f, nil
	}
	return "", fmt.Errorf("invalid payload format %q: want one of bmp, png, auto", s)
}

// Registry holds payload encoders and picks one per entry.
type Registry struct {
	encoders map[string]PayloadEncoder
}

// NewRegistry creates a registry with the BMP and PNG encoders.
func NewRegistry() *Registry {
	r := &Registry{encoders: make(map[string]PayloadEncoder)}
	for _, enc := range []PayloadEncoder{&BMPEncoder{}, &PNGEncoder{}} {
		r.encoders[enc.Format()] = enc
	}
	return r
}

// Get returns an encoder by format name, or nil if unknown.
func (r *Registry) Get(format string) PayloadEncoder {
	return r.encoders[strings.ToLower(format)]
}

// For returns the encoder f uses for an icon of the given size.
func (r *Registry) For(f PayloadFormat, size int) (PayloadEncoder, error) {
	name := string(f)
	switch f {
	case "":
		name = string(FormatBMP)
	case FormatAuto:
		name = string(FormatBMP)
		if size >= autoPNGThreshold {
			name = string(FormatPNG)
		}
	}
	enc := r.Get(name)
	if enc == nil {
		return nil, fmt.Errorf("no payload encoder for format %q", f)
	}
	return enc, nil
}

func maskRowBytes(w int) int {
	return (w + 31) / 32 * 4
}
