package report

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const pathSeparatorCharactersConstant = string(filepath.Separator)

// RenderDisplayName converts a repository path into the name shown in the report.
// Relative names drop basePath and the separator that follows it; paths that are
// not longer than basePath render as the empty string.
func RenderDisplayName(path string, basePath string, showAbsolute bool) string {
	if showAbsolute {
		return trimTrailingSeparators(path)
	}

	baseLength := utf8.RuneCountInString(basePath)
	pathRunes := []rune(path)
	if len(pathRunes) <= baseLength {
		return ""
	}

	skippedRunes := utf8.RuneCountInString(strings.TrimRight(basePath, pathSeparatorCharactersConstant)) + 1
	if skippedRunes > len(pathRunes) {
		return ""
	}
	return strings.TrimRight(string(pathRunes[skippedRunes:]), pathSeparatorCharactersConstant)
}

// trimTrailingSeparators removes trailing separators while keeping a bare filesystem root intact.
func trimTrailingSeparators(path string) string {
	trimmedPath := strings.TrimRight(path, pathSeparatorCharactersConstant)
	if len(trimmedPath) == 0 && len(path) > 0 {
		return pathSeparatorCharactersConstant
	}
	return trimmedPath
}
