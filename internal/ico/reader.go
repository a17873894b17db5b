package ico

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/png"
	"sort"

	"github.com/disintegration/imaging"
)

// ErrInvalidIcon is returned for containers that fail structural checks.
var ErrInvalidIcon = errors.New("invalid icon file")

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// Directory is a parsed icon container.
type Directory struct {
	Type    int
	Entries []Entry
	data    []byte
}

// Parse validates the header and directory of an icon container and
// resolves each entry's real size from its payload header. Payload ranges
// must lie after the directory, inside the file, without overlapping.
func Parse(data []byte) (*Directory, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes is too short for a header", ErrInvalidIcon, len(data))
	}
	le := binary.LittleEndian
	reserved := le.Uint16(data[0:])
	typ := le.Uint16(data[2:])
	count := int(le.Uint16(data[4:]))
	if reserved != 0 {
		return nil, fmt.Errorf("%w: reserved field is %d", ErrInvalidIcon, reserved)
	}
	if typ != typeIcon {
		return nil, fmt.Errorf("%w: type %d is not an icon", ErrInvalidIcon, typ)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: no images", ErrInvalidIcon)
	}
	dirEnd := headerSize + count*entrySize
	if len(data) < dirEnd {
		return nil, fmt.Errorf("%w: directory of %d entries truncated", ErrInvalidIcon, count)
	}

	d := &Directory{Type: int(typ), Entries: make([]Entry, count), data: data}
	for i := range d.Entries {
		rec := data[headerSize+i*entrySize : headerSize+(i+1)*entrySize]
		e := Entry{
			Width:    undim(rec[0]),
			Height:   undim(rec[1]),
			Planes:   int(le.Uint16(rec[4:])),
			BitCount: int(le.Uint16(rec[6:])),
			Length:   le.Uint32(rec[8:]),
			Offset:   le.Uint32(rec[12:]),
		}
		end := uint64(e.Offset) + uint64(e.Length)
		if e.Length == 0 || uint64(e.Offset) < uint64(dirEnd) || end > uint64(len(data)) {
			return nil, fmt.Errorf("%w: entry %d payload [%d, %d) outside [%d, %d)",
				ErrInvalidIcon, i, e.Offset, end, dirEnd, len(data))
		}
		payload := data[e.Offset:end]
		w, h, format, err := payloadInfo(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrInvalidIcon, i, err)
		}
		if w != h {
			return nil, fmt.Errorf("%w: entry %d payload is %dx%d, not square", ErrInvalidIcon, i, w, h)
		}
		if (e.Width < 256 && e.Width != w) || (e.Width == 256 && w < 256) {
			return nil, fmt.Errorf("%w: entry %d declares %d but payload is %d wide",
				ErrInvalidIcon, i, e.Width, w)
		}
		e.Size = w
		e.Format = format
		d.Entries[i] = e
	}

	byOffset := append([]Entry(nil), d.Entries...)
	sort.Slice(byOffset, func(i, j int) bool { return byOffset[i].Offset < byOffset[j].Offset })
	for i := 1; i < len(byOffset); i++ {
		prev := byOffset[i-1]
		if prev.Offset+prev.Length > byOffset[i].Offset {
			return nil, fmt.Errorf("%w: payloads at %d and %d overlap", ErrInvalidIcon, prev.Offset, byOffset[i].Offset)
		}
	}
	return d, nil
}

// Payload returns the raw bytes of entry i.
func (d *Directory) Payload(i int) []byte {
	e := d.Entries[i]
	return d.data[e.Offset : e.Offset+e.Length]
}

// Image decodes entry i to an NRGBA buffer.
func (d *Directory) Image(i int) (*image.NRGBA, error) {
	return DecodePayload(d.Payload(i))
}

// DecodePayload decodes a PNG or 32-bit DIB icon record.
func DecodePayload(p []byte) (*image.NRGBA, error) {
	if bytes.HasPrefix(p, pngMagic) {
		img, err := png.Decode(bytes.NewReader(p))
		if err != nil {
			return nil, fmt.Errorf("png payload: %w", err)
		}
		return imaging.Clone(img), nil
	}
	return decodeDIB(p)
}

func decodeDIB(p []byte) (*image.NRGBA, error) {
	if len(p) < dibHeaderSize {
		return nil, fmt.Errorf("dib payload: %d bytes is too short", len(p))
	}
	le := binary.LittleEndian
	if hs := le.Uint32(p[0:]); hs < dibHeaderSize {
		return nil, fmt.Errorf("dib payload: header size %d", hs)
	}
	w := int(int32(le.Uint32(p[4:])))
	h2 := int(int32(le.Uint32(p[8:])))
	bpp := le.Uint16(p[14:])
	comp := le.Uint32(p[16:])
	if bpp != 32 || comp != 0 {
		return nil, fmt.Errorf("dib payload: only 32-bit BI_RGB is supported, got %d-bit compression %d", bpp, comp)
	}
	if w <= 0 || h2 <= 0 || h2%2 != 0 {
		return nil, fmt.Errorf("dib payload: bad dimensions %dx%d", w, h2)
	}
	h := h2 / 2
	start := int(le.Uint32(p[0:]))
	need := start + w*h*4
	if len(p) < need {
		return nil, fmt.Errorf("dib payload: %d bytes, need %d for pixels", len(p), need)
	}

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for row := 0; row < h; row++ {
		src := p[start+row*w*4 : start+(row+1)*w*4]
		y := h - 1 - row
		dst := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			s := src[x*4 : x*4+4]
			d := dst[x*4 : x*4+4]
			d[0], d[1], d[2], d[3] = s[2], s[1], s[0], s[3]
		}
	}
	return img, nil
}

// payloadInfo reads the pixel dimensions and format from a payload header.
func payloadInfo(p []byte) (w, h int, format string, err error) {
	if bytes.HasPrefix(p, pngMagic) {
		// IHDR is always the first chunk.
		if len(p) < 24 || string(p[12:16]) != "IHDR" {
			return 0, 0, "", errors.New("png payload without IHDR")
		}
		be := binary.BigEndian
		return int(be.Uint32(p[16:])), int(be.Uint32(p[20:])), "png", nil
	}
	if len(p) < dibHeaderSize {
		return 0, 0, "", fmt.Errorf("payload of %d bytes is neither png nor dib", len(p))
	}
	le := binary.LittleEndian
	if le.Uint32(p[0:]) < dibHeaderSize {
		return 0, 0, "", errors.New("payload is neither png nor dib")
	}
	w = int(int32(le.Uint32(p[4:])))
	h = int(int32(le.Uint32(p[8:]))) / 2
	return w, h, "bmp", nil
}

func undim(b byte) int {
	if b == 0 {
		return 256
	}
	return int(b)
}
