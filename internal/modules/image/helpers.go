package image

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// buildFileName generates a collision-resistant filename preserving the
// original extension.
func buildFileName(original string) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(original)))
	if ext == "" || len(ext) > 10 {
		ext = ".dat"
	}
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:18] + ext
}

// thumbName derives the thumbnail filename from a stored filename.
// Thumbnails are always JPEG.
func thumbName(stored string) string {
	base := strings.TrimSuffix(stored, filepath.Ext(stored))
	return base + "_thumb.jpg"
}

// allowedUploadExt limits uploads to formats the thumbnailer can decode.
func allowedUploadExt(original string) bool {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(original))) {
	case ".jpg", ".jpeg", ".png", ".gif":
		return true
	default:
		return false
	}
}

// safeName returns the base name of raw only when it is a safe path segment,
// guarding the uploads-serving route against traversal.
func safeName(raw string) string {
	name := filepath.Base(strings.TrimSpace(raw))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return ""
	}
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			continue
		}
		return ""
	}
	return name
}
