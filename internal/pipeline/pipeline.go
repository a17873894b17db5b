// Package pipeline runs the image-to-icon conversion: decode, square,
// resample, encode and write.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/LiftVortex/pIcon/internal/decode"
	"github.com/LiftVortex/pIcon/internal/manifest"
)

// BatchConfig holds all parameters for converting a directory of images.
type BatchConfig struct {
	InputDir  string
	OutputDir string
	Workers   int
	Verbose   bool

	// Template supplies sizes, fit and payload settings. Input and Output
	// are filled in per source.
	Template Request
}

// BatchResult is the outcome for one source image.
type BatchResult struct {
	Source Source
	Icon   *manifest.Icon
	Err    error
}

// BatchReport collects the results of a batch run in source order.
type BatchReport struct {
	Workers int
	Results []BatchResult
}

// Succeeded counts results without errors.
func (r *BatchReport) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the results that carry errors.
func (r *BatchReport) Failed() []BatchResult {
	var out []BatchResult
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Batch converts every supported image under cfg.InputDir into
// <OutputDir>/<key>.ico using a bounded worker pool. Individual failures
// are reported in the result; Batch itself fails only when scanning fails,
// nothing is found, or every image fails.
func Batch(cfg BatchConfig) (*BatchReport, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	registry := cfg.Template.Decoder
	if registry == nil {
		registry = decode.DefaultRegistry
	}
	logf(cfg.Verbose, "%s", registry)

	// Step 1: Scan for images.
	sources, err := ScanImages(cfg.InputDir, registry.Supports)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no images found in %s", cfg.InputDir)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Key < sources[j].Key })
	logf(cfg.Verbose, "found %d images", len(sources))

	// Two sources differing only by extension would share an output path.
	seen := map[string]string{}
	for _, s := range sources {
		if prev, ok := seen[s.Key]; ok {
			return nil, fmt.Errorf("%s and %s would both write %s.ico", prev, s.RelPath, s.Key)
		}
		seen[s.Key] = s.RelPath
	}

	// Step 2: Convert in parallel.
	report := &BatchReport{Workers: cfg.Workers, Results: make([]BatchResult, len(sources))}
	var wg sync.WaitGroup
	sem := make(chan struct{}, cfg.Workers)

	for i, src := range sources {
		wg.Add(1)
		go func(idx int, s Source) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release

			logf(cfg.Verbose, "processing: %s", s.Key)
			report.Results[idx] = convertOne(s, cfg)
			if r := report.Results[idx]; r.Err == nil {
				logf(cfg.Verbose, "done: %s (%d entries)", s.Key, len(r.Icon.Entries))
			}
		}(i, src)
	}
	wg.Wait()

	// Step 3: Report errors but don't fail the batch for partial failures.
	failed := report.Failed()
	for _, r := range failed {
		fmt.Fprintf(os.Stderr, "[picon] error: %s: %v\n", r.Source.RelPath, r.Err)
	}
	if len(failed) == len(sources) {
		return report, fmt.Errorf("all %d images failed to convert", len(failed))
	}
	if len(failed) > 0 {
		fmt.Fprintf(os.Stderr, "[picon] warning: %d of %d images had errors\n", len(failed), len(sources))
	}
	return report, nil
}

func convertOne(s Source, cfg BatchConfig) BatchResult {
	out := filepath.Join(cfg.OutputDir, filepath.FromSlash(s.Key)+".ico")
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return BatchResult{Source: s, Err: fmt.Errorf("create output dir: %w", err)}
	}

	req := cfg.Template
	req.Input = s.AbsPath
	req.Output = out
	req.Verbose = false // per-stage logs from parallel jobs interleave

	icon, err := MakeIcon(req)
	return BatchResult{Source: s, Icon: icon, Err: err}
}
