package archive

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// Extractor unpacks a project archive into a staging directory.
type Extractor struct {
	*Stager
}

// NewExtractor prepares an extractor for archivePath without reading it.
func NewExtractor(archivePath string, opts ...Option) (*Extractor, error) {
	stager, err := newStager(archivePath, resolveSettings(opts))
	if err != nil {
		return nil, err
	}
	return &Extractor{Stager: stager}, nil
}

// Extract creates an extractor for archivePath and unpacks it. On failure the
// staging directory has already been released.
func Extract(archivePath string, opts ...Option) (*Extractor, error) {
	extractor, err := NewExtractor(archivePath, opts...)
	if err != nil {
		return nil, err
	}
	if err := extractor.Extract(); err != nil {
		_ = extractor.Close()
		return nil, err
	}
	return extractor, nil
}

// Extract unpacks every file entry of the archive into the staging directory
// and records its name as a member. Membership comes from the archive's own
// entries, so stray files already in the directory are never reported.
func (e *Extractor) Extract() error {
	if e.closed {
		return ErrStagerClosed
	}

	reader, err := zip.OpenReader(e.archivePath)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", e.archivePath, err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		name, err := memberName(file.Name)
		if err != nil {
			return err
		}
		if err := e.extractFile(file, name); err != nil {
			return err
		}
		e.record(name)
	}

	e.logger.Debug("Archive extracted", "archive", e.archivePath, "dir", e.dir, "members", len(e.members))
	return nil
}

func (e *Extractor) extractFile(file *zip.File, name string) error {
	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("open member %s: %w", name, err)
	}
	defer src.Close()

	target := filepath.Join(e.dir, name)
	dst, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create staged file %s: %w", target, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("extract member %s: %w", name, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("close staged file %s: %w", target, err)
	}
	return nil
}

// memberName validates an entry name of a flat archive. Absolute names,
// parent references and nested directories are rejected.
func memberName(entry string) (string, error) {
	normalized := strings.ReplaceAll(entry, `\`, "/")
	if normalized == "" || strings.HasPrefix(normalized, "/") || filepath.IsAbs(entry) {
		return "", fmt.Errorf("%w: %q", ErrInvalidMember, entry)
	}
	cleaned := path.Clean(normalized)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") || strings.Contains(cleaned, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidMember, entry)
	}
	return cleaned, nil
}
