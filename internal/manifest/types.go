package manifest

// Icon describes one written icon container.
type Icon struct {
	Version     int     `json:"version"`
	GeneratedAt string  `json:"generated_at"`
	Output      string  `json:"output"`
	Source      *Source `json:"source,omitempty"` // absent for inspected files
	Fit         *Fit    `json:"fit,omitempty"`
	Payload     string  `json:"payload,omitempty"` // "bmp", "png" or "auto"
	Entries     []Entry `json:"entries"`
	Stats       Stats   `json:"stats"`
}

// Source holds metadata about the decoded input image.
type Source struct {
	Path     string `json:"path"`
	Format   string `json:"format"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Size     int64  `json:"size"`
	HasAlpha bool   `json:"has_alpha"`
}

// Fit records how the source was squared.
type Fit struct {
	Mode    string      `json:"mode"`
	PadRGBA *[4]uint8   `json:"pad_rgba,omitempty"`
	Center  *[2]float64 `json:"crop_center,omitempty"`
	Zoom    float64     `json:"crop_zoom,omitempty"`
	Square  int         `json:"square_side"` // side of the squared image before upscaling
}

// Entry is one directory entry of the container.
type Entry struct {
	Size      int    `json:"size"`
	Offset    uint32 `json:"offset"`
	Length    uint32 `json:"length"`
	BitCount  int    `json:"bit_count"`
	Format    string `json:"format"`     // "bmp" or "png"
	Hash      string `json:"hash"`       // xxhash64 of the payload bytes
	PixelHash string `json:"pixel_hash"` // xxhash64 of the decoded pixels
}

// Stats aggregates container metrics.
type Stats struct {
	FileBytes    int64  `json:"file_bytes"`
	PayloadBytes int64  `json:"payload_bytes"`
	Entries      int    `json:"entries"`
	FileHash     string `json:"file_hash"`
}

// SupportedManifestVersion is the current schema version.
const SupportedManifestVersion = 1
