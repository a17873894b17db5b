package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// New creates an empty manifest for output.
func New(output string) *Icon {
	return &Icon{
		Version:     SupportedManifestVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Output:      output,
		Entries:     []Entry{},
	}
}

// ComputeStats recalculates payload totals from entries. FileBytes and
// FileHash are set by whoever holds the container bytes.
func (m *Icon) ComputeStats() {
	m.Stats.Entries = len(m.Entries)
	m.Stats.PayloadBytes = 0
	for _, e := range m.Entries {
		m.Stats.PayloadBytes += int64(e.Length)
	}
}

// Sizes returns the entry sizes in directory order.
func (m *Icon) Sizes() []int {
	out := make([]int, len(m.Entries))
	for i, e := range m.Entries {
		out[i] = e.Size
	}
	return out
}

// Marshal serializes the manifest as indented JSON with a trailing newline.
func Marshal(m *Icon) ([]byte, error) {
	m.ComputeStats()
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// WriteJSON serializes the manifest to a JSON file.
func WriteJSON(m *Icon, path string) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadJSON loads a manifest. Unknown fields are ignored.
func ReadJSON(path string) (*Icon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Icon
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}
