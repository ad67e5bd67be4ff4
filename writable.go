package projects

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// IsWritablePath reports whether a document could be saved to path: the name
// is valid, the parent directory exists, and any existing file there is a
// regular file that is not read-only and can be opened for writing.
func IsWritablePath(path string) bool {
	if strings.TrimSpace(path) == "" || strings.ContainsRune(path, 0) {
		return false
	}
	name := filepath.Base(path)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return false
	}

	dir, err := os.Stat(filepath.Dir(path))
	if err != nil || !dir.IsDir() {
		return false
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return true
	}
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	if info.Mode().Perm()&0o200 == 0 {
		return false
	}
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}
