package square

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

var (
	// ErrInvalidPadColor is returned for a malformed R,G,B,A pad color.
	ErrInvalidPadColor = errors.New("pad color must be R,G,B,A with each component 0-255")

	// ErrInvalidCenter is returned for a malformed X,Y crop center.
	ErrInvalidCenter = errors.New("crop center must be X,Y")
)

// ParsePadColor parses four comma-separated integers in [0,255].
func ParsePadColor(s string) (color.NRGBA, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return color.NRGBA{}, fmt.Errorf("%w: got %q", ErrInvalidPadColor, s)
	}
	var c [4]uint8
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v < 0 || v > 255 {
			return color.NRGBA{}, fmt.Errorf("%w: got %q", ErrInvalidPadColor, s)
		}
		c[i] = uint8(v)
	}
	return color.NRGBA{R: c[0], G: c[1], B: c[2], A: c[3]}, nil
}

// ParseCenter parses "X,Y" source pixel coordinates.
func ParseCenter(s string) (Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Point{}, fmt.Errorf("%w: got %q", ErrInvalidCenter, s)
	}
	var xy [2]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || !finite(v) {
			return Point{}, fmt.Errorf("%w: got %q", ErrInvalidCenter, s)
		}
		xy[i] = v
	}
	return Point{X: xy[0], Y: xy[1]}, nil
}
