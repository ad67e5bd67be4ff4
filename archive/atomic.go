package archive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CheckOverwrite reports ErrCannotOverwrite when path exists but cannot be
// replaced: it is a directory, lacks the owner write bit, or cannot be opened
// for writing. A missing path is fine.
func CheckOverwrite(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCannotOverwrite, path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrCannotOverwrite, path)
	}
	if info.Mode().Perm()&0o200 == 0 {
		return fmt.Errorf("%w: %s is read-only", ErrCannotOverwrite, path)
	}
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCannotOverwrite, path, err)
	}
	_ = f.Close()
	return nil
}

// WriteFileAtomic replaces path with whatever write produces. The content goes
// to a temporary file in the same directory which is renamed over path only
// after write succeeds, so a failure leaves the previous file intact.
func WriteFileAtomic(path string, write func(io.Writer) error) error {
	if err := CheckOverwrite(path); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmpPath := filepath.Join(dir, "."+filepath.Base(path)+"."+newID()+".tmp")
	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create temporary file in %s: %w", dir, err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}
	// The replacement keeps the permissions of the file it replaces.
	if info, err := os.Stat(path); err == nil {
		if err := os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
			return fmt.Errorf("chmod %s: %w", tmpPath, err)
		}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCannotOverwrite, path, err)
	}
	committed = true
	return nil
}
