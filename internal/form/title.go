package form

import (
	"path/filepath"
	"strings"
)

const DefaultTitle = "Quiz"

// TitleFromFilename derives a form title from a document name: the base name
// without extension, with underscores and dashes read as spaces.
func TitleFromFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	base = strings.Join(strings.Fields(base), " ")
	if base == "" || base == "." || base == "/" {
		return DefaultTitle
	}
	return base
}
