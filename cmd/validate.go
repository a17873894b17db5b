package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/LiftVortex/pIcon/internal/hasher"
	"github.com/LiftVortex/pIcon/internal/ico"
	"github.com/LiftVortex/pIcon/internal/manifest"
	"github.com/LiftVortex/pIcon/internal/sizes"
)

var validateManifestPath string

var validateCmd = &cobra.Command{
	Use:   "validate <file.ico>",
	Short: "Check an icon file for structural problems",
	Long: `Parses the icon directory and decodes every entry. Entries must be
32-bit, single-plane, square, unique and stored in ascending size order.
With --manifest, entry hashes are also compared with a picon manifest.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateManifestPath, "manifest", "", "manifest written for this icon")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := args[0]
	out := cmd.OutOrStdout()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read icon: %w", err)
	}
	d, err := ico.Parse(data)
	if err != nil {
		fmt.Fprintf(out, "  ✗ %v\n", err)
		return fmt.Errorf("%s: %w", path, err)
	}

	errs := validateIcon(d)
	if validateManifestPath != "" {
		m, err := manifest.ReadJSON(validateManifestPath)
		if err != nil {
			return fmt.Errorf("read manifest: %w", err)
		}
		errs = append(errs, compareManifest(d, data, m)...)
	}

	if len(errs) == 0 {
		fmt.Fprintln(out, "  ✓ Icon is valid")
		fmt.Fprintf(out, "  ✓ %d entries: %s\n", len(d.Entries), entrySizes(d))
		return nil
	}

	fmt.Fprintf(out, "  ✗ Icon has %d error(s):\n", len(errs))
	for _, e := range errs {
		fmt.Fprintf(out, "    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errs))
}

func validateIcon(d *ico.Directory) []string {
	var errs []string
	prev := 0
	for i, e := range d.Entries {
		if e.Size < sizes.Min || e.Size > sizes.Max {
			errs = append(errs, fmt.Sprintf("entry %d: size %d outside [%d, %d]", i, e.Size, sizes.Min, sizes.Max))
		}
		if e.Size <= prev {
			errs = append(errs, fmt.Sprintf("entry %d: size %d does not follow %d in ascending order", i, e.Size, prev))
		}
		prev = e.Size
		if e.Planes != 1 {
			errs = append(errs, fmt.Sprintf("entry %d: %d color planes, want 1", i, e.Planes))
		}
		if e.BitCount != 32 {
			errs = append(errs, fmt.Sprintf("entry %d: %d bits per pixel, want 32", i, e.BitCount))
		}
		img, err := d.Image(i)
		if err != nil {
			errs = append(errs, fmt.Sprintf("entry %d: %v", i, err))
			continue
		}
		if b := img.Bounds(); b.Dx() != e.Size || b.Dy() != e.Size {
			errs = append(errs, fmt.Sprintf("entry %d: decodes to %dx%d, want %dx%d", i, b.Dx(), b.Dy(), e.Size, e.Size))
		}
	}
	return errs
}

func compareManifest(d *ico.Directory, data []byte, m *manifest.Icon) []string {
	var errs []string
	if m.Version != manifest.SupportedManifestVersion {
		errs = append(errs, fmt.Sprintf("unsupported manifest version: %d", m.Version))
	}
	if len(m.Entries) != len(d.Entries) {
		return append(errs, fmt.Sprintf("manifest lists %d entries, icon has %d", len(m.Entries), len(d.Entries)))
	}
	if m.Stats.FileHash != "" && m.Stats.FileHash != hasher.ContentHash(data, hasher.DefaultLen) {
		errs = append(errs, "file hash differs from manifest")
	}
	for i, me := range m.Entries {
		e := d.Entries[i]
		if me.Size != e.Size || me.Offset != e.Offset || me.Length != e.Length {
			errs = append(errs, fmt.Sprintf("entry %d: manifest says %dpx at %d+%d, icon has %dpx at %d+%d",
				i, me.Size, me.Offset, me.Length, e.Size, e.Offset, e.Length))
			continue
		}
		if me.Hash != hasher.ContentHash(d.Payload(i), hasher.DefaultLen) {
			errs = append(errs, fmt.Sprintf("entry %d: payload hash differs from manifest", i))
		}
	}
	return errs
}

func entrySizes(d *ico.Directory) string {
	s := make(sizes.Set, len(d.Entries))
	for i, e := range d.Entries {
		s[i] = e.Size
	}
	return s.String()
}
