// Package square turns arbitrary-aspect images into square ones.
package square

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/disintegration/imaging"
)

// Mode selects how a non-square image becomes square.
type Mode int

const (
	// Pad centers the image on a square canvas filled with a pad color.
	Pad Mode = iota
	// Crop extracts a square window, optionally off-center and zoomed.
	Crop
	// Stretch resamples non-uniformly to a square, distorting the aspect.
	Stretch
)

// ErrInvalidMode is returned by ParseMode for unknown mode names.
var ErrInvalidMode = errors.New("invalid fit mode")

var modeNames = [...]string{Pad: "pad", Crop: "crop", Stretch: "stretch"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool {
	return m >= Pad && m <= Stretch
}

// ParseMode parses "pad", "crop" or "stretch" (any case).
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for m, n := range modeNames {
		if n == name {
			return Mode(m), nil
		}
	}
	return 0, fmt.Errorf("%w %q: want one of pad, crop, stretch", ErrInvalidMode, s)
}

// Point is a position in source pixel coordinates.
type Point struct {
	X, Y float64
}

// CropSpec positions the crop window. A nil Center means the geometric
// center of the source. Zoom below 1, zero or non-finite means 1.
type CropSpec struct {
	Center *Point
	Zoom   float64
}

// EffectiveZoom returns Zoom, or 1 when Zoom is below 1 or not finite.
func (c CropSpec) EffectiveZoom() float64 {
	if !finite(c.Zoom) || c.Zoom < 1 {
		return 1
	}
	return c.Zoom
}

// ToSquare returns a square version of img. A square input is returned as-is
// unless mode is Crop, which always recomputes the window. mode must be
// valid; callers validate it with ParseMode or Mode.Valid.
func ToSquare(img *image.NRGBA, mode Mode, pad color.NRGBA, crop CropSpec) *image.NRGBA {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w == h && mode != Crop {
		return img
	}

	switch mode {
	case Crop:
		return imaging.Crop(img, CropWindow(img.Bounds(), crop))
	case Stretch:
		side := max(w, h)
		return imaging.Resize(img, side, side, imaging.Lanczos)
	case Pad:
		side := max(w, h)
		canvas := imaging.New(side, side, pad)
		return imaging.Paste(canvas, img, image.Pt((side-w)/2, (side-h)/2))
	}
	panic(fmt.Sprintf("square: invalid mode %d", int(mode)))
}

// CropWindow computes the square crop rectangle inside bounds. The window
// side is round(min(w,h)/zoom), at least 1, and the center is clamped so
// the window never leaves bounds.
func CropWindow(bounds image.Rectangle, crop CropSpec) image.Rectangle {
	w, h := float64(bounds.Dx()), float64(bounds.Dy())

	side := int(math.RoundToEven(math.Min(w, h) / crop.EffectiveZoom()))
	if side < 1 {
		side = 1
	}
	half := float64(side) / 2

	cx, cy := w/2, h/2
	if c := crop.Center; c != nil {
		if finite(c.X) {
			cx = c.X
		}
		if finite(c.Y) {
			cy = c.Y
		}
	}
	cx = math.Min(math.Max(cx, half), w-half)
	cy = math.Min(math.Max(cy, half), h-half)

	left := int(math.RoundToEven(cx - half))
	top := int(math.RoundToEven(cy - half))
	return image.Rect(left, top, left+side, top+side).Add(bounds.Min)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
