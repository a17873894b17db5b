package cmd

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/LiftVortex/pIcon/internal/manifest"
	"github.com/LiftVortex/pIcon/internal/pipeline"
	"github.com/LiftVortex/pIcon/internal/sizes"
	"github.com/LiftVortex/pIcon/internal/square"
)

var (
	version = "0.1.0"
	verbose bool

	makeOpts     iconFlags
	makeManifest string
)

var rootCmd = &cobra.Command{
	Use:   "picon <input> <output>",
	Short: "Convert an image into a multi-resolution Windows icon",
	Long: `picon squares an image (pad, crop or stretch), resamples it with a
Lanczos filter to every requested size and writes a single .ico file
with one 32-bit entry per size.

Supported inputs: png, jpeg, gif, bmp, tiff, webp, plus heic/heif/avif
when built with -tags heif.`,
	Version:       version,
	Args:          cobra.ExactArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runMake,
}

// Execute runs the command line. Callers print the error and exit with
// ExitCode(err).
func Execute() error {
	return rootCmd.Execute()
}

// ExitCode maps an error from Execute to a process exit status: 1 for
// rejected sizes, pad colors and crop centers, 2 for everything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, sizes.ErrInvalidSizes),
		errors.Is(err, square.ErrInvalidPadColor),
		errors.Is(err, square.ErrInvalidCenter):
		return 1
	}
	return 2
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	addIconFlags(rootCmd.Flags(), &makeOpts)
	rootCmd.Flags().StringVar(&makeManifest, "manifest", "", "also write a JSON manifest of the icon to this path")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"picon %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

func runMake(cmd *cobra.Command, args []string) error {
	req, err := makeOpts.request(cmd.Flags())
	if err != nil {
		return err
	}
	req.Input, req.Output = args[0], args[1]
	req.Verbose = verbose

	logVerbose("input:   %s", req.Input)
	logVerbose("output:  %s", req.Output)
	logVerbose("sizes:   %s", sizes.Set(req.Sizes))
	logVerbose("fit:     %s, payload %s", req.Mode, req.Payload)

	m, err := pipeline.MakeIcon(req)
	if err != nil {
		return err
	}
	if makeManifest != "" {
		if err := manifest.WriteJSON(m, makeManifest); err != nil {
			return fmt.Errorf("write manifest: %w", err)
		}
		logVerbose("manifest: %s", makeManifest)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", req.Output)
	return nil
}

// logVerbose prints a message only when --verbose is set.
func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[picon] "+format+"\n", args...)
	}
}
