package pipeline

import (
	"os"
	"path/filepath"
	"strings"
)

// Source represents a discovered image file.
type Source struct {
	// AbsPath is the absolute path to the file on disk.
	AbsPath string
	// RelPath is the path relative to the input directory.
	RelPath string
	// Key is the relative path without extension, with forward slashes.
	Key string
	// Format is the normalized source format (png, jpeg, heif, ...).
	Format string
	// Size is the file size in bytes.
	Size int64
}

// ScanImages walks inputDir and returns every file whose extension
// supported accepts. Hidden directories are skipped.
func ScanImages(inputDir string, supported func(ext string) bool) ([]Source, error) {
	var sources []Source

	err := filepath.Walk(inputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != inputDir && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext == "" || !supported(ext) {
			return nil
		}

		relPath, err := filepath.Rel(inputDir, path)
		if err != nil {
			return err
		}

		sources = append(sources, Source{
			AbsPath: path,
			RelPath: filepath.ToSlash(relPath),
			Key:     filepath.ToSlash(strings.TrimSuffix(relPath, ext)),
			Format:  formatName(ext),
			Size:    info.Size(),
		})
		return nil
	})

	return sources, err
}
