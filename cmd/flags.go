package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/LiftVortex/pIcon/internal/ico"
	"github.com/LiftVortex/pIcon/internal/pipeline"
	"github.com/LiftVortex/pIcon/internal/sizes"
	"github.com/LiftVortex/pIcon/internal/square"
)

// iconFlags are the conversion settings shared by the root command and batch.
type iconFlags struct {
	sizes      string
	preset     string
	fit        string
	padRGB     string
	cropCenter string
	zoom       float64
	payload    string
}

func addIconFlags(fs *pflag.FlagSet, o *iconFlags) {
	fs.StringVar(&o.sizes, "sizes", sizes.DefaultString, "icon sizes, comma or space separated")
	fs.StringVar(&o.preset, "preset", "", "size preset ("+strings.Join(sizes.PresetNames(), ", ")+"); ignored when --sizes is set")
	fs.StringVar(&o.fit, "fit", "pad", "how to make the image square: pad, crop or stretch")
	fs.StringVar(&o.padRGB, "padrgb", "0,0,0,0", "pad color as R,G,B,A")
	fs.StringVar(&o.cropCenter, "crop-center", "", "crop center X,Y in source pixels (default: image center)")
	fs.Float64Var(&o.zoom, "zoom", 1.0, "crop zoom; values below 1 are treated as 1")
	fs.StringVar(&o.payload, "payload", string(ico.FormatBMP), "entry payload: bmp, png or auto (png from 256px)")
}

// usageError marks argument problems that are reported like a bad flag.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

// request validates the flags and fills a pipeline request. Sizes, pad color
// and crop center are checked here so bad values fail before any decode.
func (o *iconFlags) request(fs *pflag.FlagSet) (pipeline.Request, error) {
	var req pipeline.Request

	set := sizes.Resolve(o.sizes)
	if !fs.Changed("sizes") && o.preset != "" {
		if !knownPreset(o.preset) {
			return req, &usageError{fmt.Sprintf("unknown preset %q: want one of %s",
				o.preset, strings.Join(sizes.PresetNames(), ", "))}
		}
		set = sizes.Preset(o.preset).Sizes
	}
	if len(set) == 0 {
		return req, fmt.Errorf("%w: %q resolves to no sizes in [%d, %d]",
			sizes.ErrInvalidSizes, o.sizes, sizes.Min, sizes.Max)
	}

	mode, err := square.ParseMode(o.fit)
	if err != nil {
		return req, &usageError{err.Error()}
	}
	pad, err := square.ParsePadColor(o.padRGB)
	if err != nil {
		return req, err
	}
	crop := square.CropSpec{Zoom: o.zoom}
	if o.cropCenter != "" {
		c, err := square.ParseCenter(o.cropCenter)
		if err != nil {
			return req, err
		}
		crop.Center = &c
	}
	payload, err := ico.ParsePayloadFormat(o.payload)
	if err != nil {
		return req, &usageError{err.Error()}
	}

	req.Sizes = set
	req.Mode = mode
	req.Pad = pad
	req.Crop = crop
	req.Payload = payload
	return req, nil
}

func knownPreset(name string) bool {
	for _, n := range sizes.PresetNames() {
		if n == name {
			return true
		}
	}
	return false
}
