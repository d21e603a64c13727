package driver

import (
	"path/filepath"
	"strings"

	"github.com/nao1215/filequery/source"
)

// maxParentLevels is how far a relative path may climb with ".."
const maxParentLevels = 3

// systemDirs are never read through a DSN
var systemDirs = []string{"/etc/", "/proc/", "/sys/", "/dev/", "/boot/"}

// ValidatePath rejects DSN locations that are empty, contain null bytes,
// climb too far out of the working directory or point into system
// directories. Remote locations are only checked for null bytes.
func ValidatePath(location string) error {
	if strings.TrimSpace(location) == "" || strings.Contains(location, "\x00") {
		return ErrInvalidPath
	}
	if source.DetectScheme(location) != source.SchemeLocal {
		return nil
	}

	path := strings.TrimPrefix(location, "file://")
	if parentLevels(path) > maxParentLevels {
		return ErrInvalidPath
	}

	lowerPath := strings.ToLower(filepath.ToSlash(path))
	for _, dir := range systemDirs {
		if strings.HasPrefix(lowerPath, dir) {
			return ErrInvalidPath
		}
	}
	return nil
}

// parentLevels counts the leading ".." elements of the cleaned path
func parentLevels(path string) int {
	parts := strings.FieldsFunc(filepath.Clean(path), func(c rune) bool {
		return c == '/' || c == '\\'
	})
	levels := 0
	for _, part := range parts {
		if part != ".." {
			break
		}
		levels++
	}
	return levels
}

// splitDSN returns the locations of a semicolon separated DSN
func splitDSN(dsn string) []string {
	var locations []string
	for _, p := range strings.Split(dsn, ";") {
		if p = strings.TrimSpace(p); p != "" {
			locations = append(locations, p)
		}
	}
	return locations
}
