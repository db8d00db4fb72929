package diagfmt

import (
	"path/filepath"
	"strings"

	"rivet/internal/source"
)

// displayPath форматирует путь файла согласно режиму.
func displayPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(f.Path); err == nil {
			return abs
		}
		return f.Path
	case PathModeBasename:
		return filepath.Base(f.Path)
	case PathModeRelative, PathModeAuto:
		base := fs.BaseDir()
		if base == "" {
			return f.Path
		}
		rel, err := filepath.Rel(base, f.Path)
		if err != nil || strings.HasPrefix(rel, "..") {
			return f.Path
		}
		return rel
	default:
		return f.Path
	}
}
