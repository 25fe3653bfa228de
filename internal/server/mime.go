package server

import (
	"path/filepath"
	"strings"
)

// contentTypes maps lowercase file extensions to the Content-Type the static
// server sends for them.
var contentTypes = map[string]string{
	".html": "text/html",
	".htm":  "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
}

// ResolveContentType maps a file path to a Content-Type by its extension.
// It is total: unrecognized or missing extensions resolve to text/plain.
func ResolveContentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if contentType, ok := contentTypes[ext]; ok {
		return contentType
	}
	return "text/plain"
}
