// Package resample produces the per-size square buffers of an icon.
package resample

import (
	"image"

	"github.com/disintegration/imaging"
)

// Filter is the resampling kernel used for every resize: Lanczos with
// a = 3, applied separably on both axes.
var Filter = imaging.Lanczos

// Resize returns img resampled to w×h. Same-size requests return an exact
// copy.
func Resize(img image.Image, w, h int) *image.NRGBA {
	return imaging.Resize(img, w, h, Filter)
}

// Master returns the buffer every icon size is derived from: sq itself when
// it is at least largest pixels wide, otherwise sq upscaled once to
// largest×largest.
func Master(sq *image.NRGBA, largest int) *image.NRGBA {
	if sq.Bounds().Dx() >= largest {
		return sq
	}
	return Resize(sq, largest, largest)
}

// Variant is one resized square.
type Variant struct {
	Size  int
	Image *image.NRGBA
}

// Variants builds the master once and downscales it to each size, in the
// order given.
func Variants(sq *image.NRGBA, sizes []int) []Variant {
	largest := 0
	for _, s := range sizes {
		largest = max(largest, s)
	}
	master := Master(sq, largest)

	out := make([]Variant, 0, len(sizes))
	for _, s := range sizes {
		out = append(out, Variant{Size: s, Image: Resize(master, s, s)})
	}
	return out
}
