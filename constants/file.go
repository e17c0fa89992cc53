package constants

import "strings"

// SourceFormat is the kind of document handed to the text acquisition stage.
type SourceFormat string

const (
	PDF   SourceFormat = "PDF"
	IMAGE SourceFormat = "IMAGE"
	TXT   SourceFormat = "TXT"
)

// AllowedExtensions holds the file extensions the CLI picks up when given a directory.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"tif":  {},
	"tiff": {},
	"txt":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to its source format.
// Unknown extensions return an empty format.
func MapExtToFormat(ext string) SourceFormat {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "jpg", "jpeg", "png", "tif", "tiff":
		return IMAGE
	case "txt":
		return TXT
	default:
		return ""
	}
}

// IsAllowedExt reports whether ext is in AllowedExtensions.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}
