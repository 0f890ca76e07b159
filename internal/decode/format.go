package decode

import (
	"path/filepath"
	"strings"
)

// Format selects the codec family for a file.
type Format int

const (
	Unknown Format = iota
	// Standard covers 8-bit raster formats handled by the Go image codecs.
	Standard
	// Scientific covers TIFF, which may carry 16-bit or floating point samples.
	Scientific
)

func (f Format) String() string {
	switch f {
	case Standard:
		return "standard"
	case Scientific:
		return "scientific"
	default:
		return "unknown"
	}
}

var extensionFormats = map[string]Format{
	".jpg":  Standard,
	".jpeg": Standard,
	".png":  Standard,
	".bmp":  Standard,
	".webp": Standard,
	".tif":  Scientific,
	".tiff": Scientific,
}

// FormatForPath dispatches on the lower-cased file extension.
func FormatForPath(path string) Format {
	return extensionFormats[strings.ToLower(filepath.Ext(path))]
}

// IsSupported reports whether path has one of the supported extensions.
func IsSupported(path string) bool {
	return FormatForPath(path) != Unknown
}

// SupportedExtensions lists the accepted extensions in a stable order.
func SupportedExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".bmp", ".webp", ".tif", ".tiff"}
}
