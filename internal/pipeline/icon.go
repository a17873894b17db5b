package pipeline

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/LiftVortex/pIcon/internal/decode"
	"github.com/LiftVortex/pIcon/internal/hasher"
	"github.com/LiftVortex/pIcon/internal/ico"
	"github.com/LiftVortex/pIcon/internal/manifest"
	"github.com/LiftVortex/pIcon/internal/resample"
	"github.com/LiftVortex/pIcon/internal/sizes"
	"github.com/LiftVortex/pIcon/internal/square"
)

// Request holds all parameters for converting one image to an icon.
type Request struct {
	Input   string
	Output  string
	Sizes   []int
	Mode    square.Mode
	Pad     color.NRGBA
	Crop    square.CropSpec
	Payload ico.PayloadFormat // "" means bmp
	Verbose bool

	// Decoder overrides decode.DefaultRegistry when set.
	Decoder *decode.Registry
}

// MakeIcon decodes req.Input, squares it, resamples it to every requested
// size and writes a single icon container to req.Output.
//
// Errors match sizes.ErrInvalidSizes, square.ErrInvalidMode,
// decode.ErrInputNotFound, decode.ErrUnsupportedFormat or ico.ErrEncodeIO.
// Nothing is written unless every stage succeeds.
func MakeIcon(req Request) (*manifest.Icon, error) {
	set, err := sizes.Validate(req.Sizes)
	if err != nil {
		return nil, err
	}
	if !req.Mode.Valid() {
		return nil, fmt.Errorf("%w: %s", square.ErrInvalidMode, req.Mode)
	}
	payload := req.Payload
	if payload == "" {
		payload = ico.FormatBMP
	}
	if payload, err = ico.ParsePayloadFormat(string(payload)); err != nil {
		return nil, err
	}
	registry := req.Decoder
	if registry == nil {
		registry = decode.DefaultRegistry
	}

	logf(req.Verbose, "decode: %s", req.Input)
	src, err := registry.Decode(req.Input)
	if err != nil {
		return nil, err
	}
	b := src.Bounds()
	logf(req.Verbose, "source: %dx%d", b.Dx(), b.Dy())

	sq := square.ToSquare(src, req.Mode, req.Pad, req.Crop)
	logf(req.Verbose, "%s: square %dx%d", req.Mode, sq.Bounds().Dx(), sq.Bounds().Dy())

	variants := resample.Variants(sq, set)
	images := make([]ico.Image, len(variants))
	for i, v := range variants {
		images[i] = ico.Image{Size: v.Size, Image: v.Image}
	}

	data, entries, err := ico.Encode(images, payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", req.Output, err)
	}
	if err := ico.WriteFile(req.Output, data); err != nil {
		return nil, err
	}
	logf(req.Verbose, "wrote %s (%d entries, %d bytes)", req.Output, len(entries), len(data))

	m := manifest.New(req.Output)
	m.Source = sourceInfo(req.Input, src)
	m.Fit = fitInfo(req, sq.Bounds().Dx())
	m.Payload = string(payload)
	for i, e := range entries {
		m.Entries = append(m.Entries, manifest.Entry{
			Size:      e.Size,
			Offset:    e.Offset,
			Length:    e.Length,
			BitCount:  e.BitCount,
			Format:    e.Format,
			Hash:      hasher.ContentHash(data[e.Offset:e.Offset+e.Length], hasher.DefaultLen),
			PixelHash: hasher.PixelHash(images[i].Image, hasher.DefaultLen),
		})
	}
	m.Stats.FileBytes = int64(len(data))
	m.Stats.FileHash = hasher.ContentHash(data, hasher.DefaultLen)
	m.ComputeStats()
	return m, nil
}

func sourceInfo(path string, img *image.NRGBA) *manifest.Source {
	s := &manifest.Source{
		Path:     path,
		Format:   formatName(filepath.Ext(path)),
		Width:    img.Bounds().Dx(),
		Height:   img.Bounds().Dy(),
		HasAlpha: hasAlpha(img),
	}
	if info, err := os.Stat(path); err == nil {
		s.Size = info.Size()
	}
	return s
}

func fitInfo(req Request, side int) *manifest.Fit {
	f := &manifest.Fit{Mode: req.Mode.String(), Square: side}
	switch req.Mode {
	case square.Pad:
		f.PadRGBA = &[4]uint8{req.Pad.R, req.Pad.G, req.Pad.B, req.Pad.A}
	case square.Crop:
		f.Zoom = req.Crop.EffectiveZoom()
		if c := req.Crop.Center; c != nil && !math.IsNaN(c.X+c.Y) && !math.IsInf(c.X+c.Y, 0) {
			f.Center = &[2]float64{c.X, c.Y}
		}
	}
	return f
}

// hasAlpha reports whether any pixel is not fully opaque.
func hasAlpha(img *image.NRGBA) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		row := img.Pix[off : off+b.Dx()*4]
		for i := 3; i < len(row); i += 4 {
			if row[i] != 0xff {
				return true
			}
		}
	}
	return false
}

// formatName normalizes an extension to a format name.
func formatName(ext string) string {
	format := strings.TrimPrefix(strings.ToLower(ext), ".")
	switch format {
	case "jpg", "jpe":
		return "jpeg"
	case "tif":
		return "tiff"
	case "heic":
		return "heif"
	}
	return format
}

func logf(verbose bool, format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[picon] "+format+"\n", args...)
	}
}
