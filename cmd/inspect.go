package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/LiftVortex/pIcon/internal/hasher"
	"github.com/LiftVortex/pIcon/internal/ico"
	"github.com/LiftVortex/pIcon/internal/manifest"
)

var inspectJSON bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.ico>",
	Short: "List the entries of an icon file",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "print the entries as a JSON manifest")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	m, err := describeIcon(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if inspectJSON {
		data, err := manifest.Marshal(m)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}
	printInspectReport(out, m)
	return nil
}

// describeIcon parses an icon file into a manifest without source or fit
// information.
func describeIcon(path string) (*manifest.Icon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read icon: %w", err)
	}
	d, err := ico.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	m := manifest.New(path)
	for i, e := range d.Entries {
		me := manifest.Entry{
			Size:     e.Size,
			Offset:   e.Offset,
			Length:   e.Length,
			BitCount: e.BitCount,
			Format:   e.Format,
			Hash:     hasher.ContentHash(d.Payload(i), hasher.DefaultLen),
		}
		if img, err := d.Image(i); err == nil {
			me.PixelHash = hasher.PixelHash(img, hasher.DefaultLen)
		} else {
			logVerbose("entry %d: %v", i, err)
		}
		m.Entries = append(m.Entries, me)
	}
	m.Stats.FileBytes = int64(len(data))
	m.Stats.FileHash = hasher.ContentHash(data, hasher.DefaultLen)
	m.ComputeStats()
	return m, nil
}

func printInspectReport(w io.Writer, m *manifest.Icon) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  File:     %s\n", m.Output)
	fmt.Fprintf(w, "  Size:     %s  (hash %s)\n", formatBytes(m.Stats.FileBytes), m.Stats.FileHash)
	fmt.Fprintf(w, "  Entries:  %d  (payload %s)\n", m.Stats.Entries, formatBytes(m.Stats.PayloadBytes))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "    %9s  %-4s  %3s  %10s  %10s  %s\n", "size", "fmt", "bpp", "offset", "length", "pixels")
	for _, e := range m.Entries {
		px := e.PixelHash
		if px == "" {
			px = "(undecodable)"
		}
		fmt.Fprintf(w, "    %4dx%-4d  %-4s  %3d  %10d  %10s  %s\n",
			e.Size, e.Size, e.Format, e.BitCount, e.Offset, formatBytes(int64(e.Length)), px)
	}
	fmt.Fprintln(w)
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
