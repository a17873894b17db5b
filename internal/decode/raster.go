package decode

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// RasterCodec decodes the common still formats registered with the image
// package: PNG, JPEG, GIF, BMP, TIFF and WebP. EXIF orientation in JPEG
// sources is applied to the pixels. Animated GIFs yield their first frame.
type RasterCodec struct{}

func (c *RasterCodec) Name() string { return "raster" }

func (c *RasterCodec) Extensions() []string {
	return []string{".png", ".jpg", ".jpeg", ".jpe", ".gif", ".bmp", ".dib", ".tif", ".tiff", ".webp"}
}

func (c *RasterCodec) Probe(header []byte) bool {
	for _, m := range rasterMagic {
		if matchMagic(header, m) {
			return true
		}
	}
	return false
}

func (c *RasterCodec) Decode(data []byte) (image.Image, error) {
	return imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
}

// rasterMagic lists signatures; '?' matches any byte.
var rasterMagic = []string{
	"\x89PNG\r\n\x1a\n",
	"\xff\xd8",
	"GIF87a",
	"GIF89a",
	"BM",
	"II*\x00",
	"MM\x00*",
	"RIFF????WEBPVP8",
}

func matchMagic(b []byte, magic string) bool {
	if len(b) < len(magic) {
		return false
	}
	for i := 0; i < len(magic); i++ {
		if magic[i] != '?' && b[i] != magic[i] {
			return false
		}
	}
	return true
}
