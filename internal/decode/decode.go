// Package decode loads image files into canonical NRGBA buffers.
//
// Decoding goes through an ordered registry of codecs. Codecs that claim the
// file extension are tried first, then every codec whose content probe
// accepts the leading bytes. The first successful decode wins.
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

var (
	// ErrInputNotFound is returned when the input path does not name a
	// readable regular file.
	ErrInputNotFound = errors.New("input not found")

	// ErrUnsupportedFormat is returned when no registered codec can decode
	// the input bytes.
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// UnsupportedFormatError names the format that could not be decoded.
type UnsupportedFormatError struct {
	Path   string
	Format string // extension or sniffed format, without dot
	Hint   string // optional remedy
	Err    error  // last codec error, if any codec was tried
}

func (e *UnsupportedFormatError) Error() string {
	msg := fmt.Sprintf("unsupported image format %q: %s", e.Format, e.Path)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UnsupportedFormatError) Unwrap() error { return e.Err }

func (e *UnsupportedFormatError) Is(target error) bool { return target == ErrUnsupportedFormat }

// Codec decodes one family of image formats.
type Codec interface {
	// Name returns a short identifier, e.g. "raster" or "heif".
	Name() string

	// Extensions lists lower-case file extensions (with dot) the codec
	// claims without sniffing.
	Extensions() []string

	// Probe reports whether the codec recognizes the leading bytes.
	Probe(header []byte) bool

	// Decode returns the first (or primary) image with orientation already
	// applied to the pixels.
	Decode(data []byte) (image.Image, error)
}

// highEfficiencyExts are extensions served only by the optional heif codec.
var highEfficiencyExts = map[string]bool{
	".heic": true,
	".heif": true,
	".avif": true,
}

// Registry holds codecs in priority order.
type Registry struct {
	codecs []Codec
}

// NewRegistry creates a registry from codecs in priority order.
func NewRegistry(codecs ...Codec) *Registry {
	return &Registry{codecs: codecs}
}

// DefaultRegistry holds the raster codec. Codecs compiled in with build
// tags register themselves from init.
var DefaultRegistry = NewRegistry(&RasterCodec{})

// Register appends a codec at the lowest priority.
func (r *Registry) Register(c Codec) {
	r.codecs = append(r.codecs, c)
}

// Names returns the registered codec names in order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.codecs))
	for i, c := range r.codecs {
		names[i] = c.Name()
	}
	return names
}

// String returns a summary of registered codecs.
func (r *Registry) String() string {
	if len(r.codecs) == 0 {
		return "no codecs registered"
	}
	return fmt.Sprintf("codecs: %s", strings.Join(r.Names(), ", "))
}

// Decode reads path and decodes it with DefaultRegistry.
func Decode(path string) (*image.NRGBA, error) {
	return DefaultRegistry.Decode(path)
}

// Decode reads path and returns its pixels as an origin-anchored NRGBA
// buffer.
func (r *Registry) Decode(path string) (*image.NRGBA, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	img, err := r.DecodeBytes(data, filepath.Ext(path))
	if err != nil {
		var ufe *UnsupportedFormatError
		if errors.As(err, &ufe) {
			ufe.Path = path
		}
		return nil, err
	}
	return img, nil
}

// DecodeBytes decodes data, using ext (with dot, any case) as a hint.
func (r *Registry) DecodeBytes(data []byte, ext string) (*image.NRGBA, error) {
	ext = strings.ToLower(ext)
	var lastErr error
	for _, c := range r.candidates(data, ext) {
		img, err := c.Decode(data)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", c.Name(), err)
			continue
		}
		b := img.Bounds()
		if b.Dx() <= 0 || b.Dy() <= 0 {
			lastErr = fmt.Errorf("%s: empty image %dx%d", c.Name(), b.Dx(), b.Dy())
			continue
		}
		return toNRGBA(img), nil
	}

	ufe := &UnsupportedFormatError{Format: formatLabel(data, ext), Err: lastErr}
	if (highEfficiencyExts[ext] || isHEIFHeader(data)) && !r.claims(".heic") {
		ufe.Hint = "high-efficiency image codec not built in; rebuild with -tags heif"
	}
	return nil, ufe
}

// candidates orders codecs: extension claimants first, then content probes.
func (r *Registry) candidates(data []byte, ext string) []Codec {
	var out []Codec
	tried := map[Codec]bool{}
	for _, c := range r.codecs {
		for _, e := range c.Extensions() {
			if e == ext {
				out = append(out, c)
				tried[c] = true
				break
			}
		}
	}
	header := data
	if len(header) > sniffLen {
		header = header[:sniffLen]
	}
	for _, c := range r.codecs {
		if !tried[c] && c.Probe(header) {
			out = append(out, c)
		}
	}
	return out
}

// Supports reports whether some codec claims the extension (with dot).
func (r *Registry) Supports(ext string) bool {
	return r.claims(strings.ToLower(ext))
}

func (r *Registry) claims(ext string) bool {
	for _, c := range r.codecs {
		for _, e := range c.Extensions() {
			if e == ext {
				return true
			}
		}
	}
	return false
}

// sniffLen is how many leading bytes probes see.
const sniffLen = 64

func readInput(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInputNotFound, path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrInputNotFound, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInputNotFound, path, err)
	}
	return data, nil
}

// toNRGBA converts any image to an origin-anchored NRGBA copy. Sources
// without alpha come out fully opaque.
func toNRGBA(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}

func formatLabel(data []byte, ext string) string {
	if ext != "" {
		return strings.TrimPrefix(ext, ".")
	}
	if isHEIFHeader(data) {
		return "heif"
	}
	if _, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		return format
	}
	return "unknown"
}
