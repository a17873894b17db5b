//go:build heif

package decode

import (
	"fmt"
	"image"

	"github.com/strukturag/libheif/go/heif"
)

// HEIFCodec decodes HEIC/HEIF (and AVIF) stills through libheif. Only the
// primary image is decoded; libheif applies the container's rotation and
// mirror transforms.
type HEIFCodec struct{}

func init() {
	DefaultRegistry.Register(&HEIFCodec{})
}

func (c *HEIFCodec) Name() string { return "heif" }

func (c *HEIFCodec) Extensions() []string {
	return []string{".heic", ".heif", ".avif"}
}

func (c *HEIFCodec) Probe(header []byte) bool {
	return isHEIFHeader(header)
}

func (c *HEIFCodec) Decode(data []byte) (image.Image, error) {
	ctx, err := heif.NewContext()
	if err != nil {
		return nil, fmt.Errorf("libheif context: %w", err)
	}
	if err := ctx.ReadFromMemory(data); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	handle, err := ctx.GetPrimaryImageHandle()
	if err != nil {
		return nil, fmt.Errorf("primary image: %w", err)
	}
	img, err := handle.DecodeImage(heif.ColorspaceUndefined, heif.ChromaUndefined, nil)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img.GetImage()
}
