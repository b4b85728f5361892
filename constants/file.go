package constants

import "strings"

// FileTypes holds the allowed input kinds for OCR extraction.
var FileTypes = []string{"PDF", "IMAGE"}

// AllowedExtensions holds the default allowed file extensions for card scans.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"bmp":  {},
	"gif":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// FormatFromExt maps a file extension onto one of FileTypes.
func FormatFromExt(ext string) (string, bool) {
	e := NormalizeExt(ext)
	if _, ok := AllowedExtensions[e]; !ok {
		return "", false
	}
	if e == "pdf" {
		return "PDF", true
	}
	return "IMAGE", true
}
