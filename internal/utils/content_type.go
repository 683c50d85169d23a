package utils

import (
	"mime"
	"path/filepath"
	"strings"
)

// DetectContentType returns the MIME type for a project file based on its
// extension. LaTeX sources have no registered extension mappings, so they
// are pinned to text/plain explicitly.
func DetectContentType(name string) string {
	if isTexSource(name) {
		return "text/plain; charset=utf-8"
	} else if mimeType := mime.TypeByExtension(filepath.Ext(name)); mimeType != "" {
		return mimeType
	}
	return "application/octet-stream"
}

func isTexSource(name string) bool {
	return strings.HasSuffix(name, ".tex") ||
		strings.HasSuffix(name, ".bib") ||
		strings.HasSuffix(name, ".sty") ||
		strings.HasSuffix(name, ".cls") ||
		strings.HasSuffix(name, ".bst") ||
		strings.HasSuffix(name, ".md")
}
