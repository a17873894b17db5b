package sizes

import "sort"

// PresetInfo is a named size set for a common icon target.
type PresetInfo struct {
	Name  string
	Sizes Set
}

// Built-in presets.
var presets = map[string]PresetInfo{
	"windows": {
		Name:  "windows",
		Sizes: Default,
	},
	"favicon": {
		Name:  "favicon",
		Sizes: Set{16, 32, 48},
	},
	"minimal": {
		Name:  "minimal",
		Sizes: Set{16, 32, 48, 256},
	},
	"hires": {
		Name:  "hires",
		Sizes: Set{16, 24, 32, 48, 64, 96, 128, 192, 256, 512, 1024},
	},
}

// Preset returns a preset by name. Falls back to windows if unknown.
func Preset(name string) PresetInfo {
	if p, ok := presets[name]; ok {
		p.Sizes = append(Set(nil), p.Sizes...)
		return p
	}
	p := presets["windows"]
	p.Name = name // preserve requested name
	p.Sizes = append(Set(nil), p.Sizes...)
	return p
}

// PresetNames lists the built-in preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
