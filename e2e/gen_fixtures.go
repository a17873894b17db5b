//go:build ignore

// gen_fixtures creates source images for the icon smoke test: one per
// fit-mode edge (wide, tall, square, translucent) plus a JPEG and a GIF.
// Usage: go run gen_fixtures.go <output_dir>
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
)

type fixture struct {
	name  string
	img   *image.NRGBA
	write func(string, *image.NRGBA) error
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]
	if err := os.MkdirAll(filepath.Join(dir, "logos"), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "[gen_fixtures] %v\n", err)
		os.Exit(1)
	}

	fixtures := []fixture{
		{"wide.png", gradient(300, 120), writePNG},
		{"tall.png", gradient(90, 240), writePNG},
		{"photo.jpg", gradient(400, 225), writeJPEG},
		{"logos/ring.png", ring(128, color.NRGBA{R: 30, G: 110, B: 220, A: 255}), writePNG},
		{"logos/fade.png", alphaGradient(64, 64), writePNG},
		{"logos/flat.gif", solidWithBorder(48, 32, 90), writeGIF},
	}
	for _, f := range fixtures {
		if err := f.write(filepath.Join(dir, filepath.FromSlash(f.name)), f.img); err != nil {
			fmt.Fprintf(os.Stderr, "[gen_fixtures] %s: %v\n", f.name, err)
			os.Exit(1)
		}
	}

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created %d fixtures in %s\n", len(fixtures), dir)
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

// ring draws an opaque ring on a transparent square, the typical logo
// shape whose mask the small BMP entries must keep.
func ring(side int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, side, side))
	r := float64(side) / 2
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			dx, dy := float64(x)+0.5-r, float64(y)+0.5-r
			if d := dx*dx + dy*dy; d <= r*r && d >= r*r/4 {
				img.SetNRGBA(x, y, c)
			}
		}
	}
	return img
}

func solidWithBorder(w, h int, base uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: base, G: base + 40, B: base + 80, A: 255}
			if x < 4 || x >= w-4 || y < 4 || y >= h-4 {
				c = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func alphaGradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: 220, G: 60, B: 30,
				A: uint8(x * 255 / w),
			})
		}
	}
	return img
}

func writePNG(path string, img *image.NRGBA) error {
	return writeWith(path, func(f *os.File) error { return png.Encode(f, img) })
}

func writeJPEG(path string, img *image.NRGBA) error {
	return writeWith(path, func(f *os.File) error { return jpeg.Encode(f, img, &jpeg.Options{Quality: 85}) })
}

func writeGIF(path string, img *image.NRGBA) error {
	return writeWith(path, func(f *os.File) error { return gif.Encode(f, img, nil) })
}

func writeWith(path string, enc func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := enc(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
