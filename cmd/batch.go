package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/LiftVortex/pIcon/internal/manifest"
	"github.com/LiftVortex/pIcon/internal/pipeline"
)

var (
	batchOpts      iconFlags
	batchOutDir    string
	batchWorkers   int
	batchManifests bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <input_dir>",
	Short: "Convert every image in a directory tree to an icon",
	Long: `Scans input directory recursively for supported images, skipping
hidden directories, and writes <out>/<relative path>.ico for each one
with the same size, fit and payload settings.

A failed image is reported and the rest continue; the command fails only
when no image converts.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	addIconFlags(batchCmd.Flags(), &batchOpts)
	batchCmd.Flags().StringVarP(&batchOutDir, "out", "o", "./icons", "output directory")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "parallel workers (0 = NumCPU)")
	batchCmd.Flags().BoolVar(&batchManifests, "manifests", false, "write <name>.json next to every icon")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	start := time.Now()

	tmpl, err := batchOpts.request(cmd.Flags())
	if err != nil {
		return err
	}

	absInput, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	absOutput, err := filepath.Abs(batchOutDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}
	if info, err := os.Stat(absInput); err != nil || !info.IsDir() {
		return &usageError{fmt.Sprintf("input %s is not a directory", args[0])}
	}

	logVerbose("input:   %s", absInput)
	logVerbose("output:  %s", absOutput)

	if err := os.MkdirAll(absOutput, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	report, err := pipeline.Batch(pipeline.BatchConfig{
		InputDir:  absInput,
		OutputDir: absOutput,
		Workers:   batchWorkers,
		Verbose:   verbose,
		Template:  tmpl,
	})
	if err != nil {
		return fmt.Errorf("batch: %w", err)
	}

	if batchManifests {
		for _, r := range report.Results {
			if r.Err != nil {
				continue
			}
			path := strings.TrimSuffix(r.Icon.Output, ".ico") + ".json"
			if err := manifest.WriteJSON(r.Icon, path); err != nil {
				return fmt.Errorf("write manifest: %w", err)
			}
		}
	}

	printBatchReport(cmd.OutOrStdout(), report, time.Since(start))
	return nil
}

func printBatchReport(w io.Writer, report *pipeline.BatchReport, elapsed time.Duration) {
	var inBytes, outBytes int64
	entries := 0
	for _, r := range report.Results {
		if r.Err != nil {
			continue
		}
		inBytes += r.Source.Size
		outBytes += r.Icon.Stats.FileBytes
		entries += len(r.Icon.Entries)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Icons:       %d of %d\n", report.Succeeded(), len(report.Results))
	fmt.Fprintf(w, "  Entries:     %d\n", entries)
	fmt.Fprintf(w, "  Input size:  %s\n", formatBytes(inBytes))
	fmt.Fprintf(w, "  Output size: %s\n", formatBytes(outBytes))
	fmt.Fprintf(w, "  Workers:     %d\n", report.Workers)
	fmt.Fprintf(w, "  Time:        %s\n", elapsed.Round(time.Millisecond))

	if failed := report.Failed(); len(failed) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  Failed (%d):\n", len(failed))
		for _, r := range failed {
			fmt.Fprintf(w, "    ✗ %s: %v\n", r.Source.RelPath, r.Err)
		}
	}
	fmt.Fprintln(w)
}
