package storage

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Magic byte signatures keyed by lowercase extension.
var magicBytes = map[string][][]byte{
	".jpg":  {{0xFF, 0xD8, 0xFF}},
	".jpeg": {{0xFF, 0xD8, 0xFF}},
	".png":  {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	".gif":  {{0x47, 0x49, 0x46, 0x38, 0x37, 0x61}, {0x47, 0x49, 0x46, 0x38, 0x39, 0x61}},
	".pdf":  {{0x25, 0x50, 0x44, 0x46}},
}

var imageMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// MatchesMagicBytes reports whether data starts with a signature known for the extension of filename.
func MatchesMagicBytes(filename string, data []byte) bool {
	signatures, ok := magicBytes[strings.ToLower(filepath.Ext(filename))]
	if !ok || len(data) < 4 {
		return false
	}
	for _, sig := range signatures {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

func IsImageMIME(mime string) bool {
	return imageMIMETypes[mime]
}

// ObjectKey builds "<prefix>/<uuid>_<sanitized base><ext>".
func ObjectKey(prefix, filename, ext string) string {
	return prefix + "/" + uuid.NewString() + "_" + SanitizeFilename(filename) + ext
}

// SanitizeFilename strips the extension and keeps ASCII letters, digits, _ and -.
func SanitizeFilename(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = strings.ReplaceAll(base, " ", "_")

	var result strings.Builder
	for _, r := range base {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			result.WriteRune(r)
		}
	}
	if result.Len() == 0 {
		return "file"
	}
	if result.Len() > 64 {
		return result.String()[:64]
	}
	return result.String()
}
