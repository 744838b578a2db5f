package constants

import "strings"

// Source formats recognized by the text sources.
const (
	PDF   = "PDF"
	IMAGE = "IMAGE"
	TXT   = "TXT"
	XLSX  = "XLSX"
)

// FileTypes holds every source format in dispatch order.
var FileTypes = []string{PDF, IMAGE, TXT, XLSX}

var extFormats = map[string]string{
	"pdf":  PDF,
	"jpg":  IMAGE,
	"jpeg": IMAGE,
	"png":  IMAGE,
	"tif":  IMAGE,
	"tiff": IMAGE,
	"bmp":  IMAGE,
	"txt":  TXT,
	"xlsx": XLSX,
	"xlsm": XLSX,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns the source format for ext, or "" when unsupported.
func MapExtToFormat(ext string) string {
	return extFormats[NormalizeExt(ext)]
}

// IsAllowedExt reports whether a file with ext can be extracted.
func IsAllowedExt(ext string) bool {
	return MapExtToFormat(ext) != ""
}
