// Package utils holds small filesystem-path helpers shared by cmd/luna's
// module reader. Adapted from _examples/funvibe-funxy/internal/utils'
// path_utils.go, trimmed to the one extension Luna recognizes.
package utils

import (
	"path/filepath"

	"github.com/lunalang/luna/internal/config"
)

// ExtractModuleName derives a bare module name from a file path: the base
// filename with its .luna extension removed.
func ExtractModuleName(path string) string {
	return config.TrimSourceExt(filepath.Base(path))
}
