package archive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

// Compressor collects registered members in a staging directory and writes
// them out as an archive.
type Compressor struct {
	*Stager
	level int
}

// NewCompressor prepares a compressor that will write archivePath.
func NewCompressor(archivePath string, opts ...Option) (*Compressor, error) {
	cfg := resolveSettings(opts)
	stager, err := newStager(archivePath, cfg)
	if err != nil {
		return nil, err
	}
	return &Compressor{Stager: stager, level: cfg.level}, nil
}

// Compress writes exactly the registered members, in registration order, to
// the archive. The previous archive is replaced only once the new one has
// been written completely.
func (c *Compressor) Compress() error {
	if c.closed {
		return ErrStagerClosed
	}
	for _, member := range c.members {
		info, err := os.Stat(filepath.Join(c.dir, member))
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %q", ErrMemberMissing, member)
		}
		if err != nil {
			return fmt.Errorf("stat member %s: %w", member, err)
		}
		if !info.Mode().IsRegular() {
			return fmt.Errorf("%w: %q is not a regular file", ErrMemberMissing, member)
		}
	}

	if err := WriteFileAtomic(c.archivePath, c.writeArchive); err != nil {
		return err
	}
	c.logger.Debug("Archive written", "archive", c.archivePath, "members", len(c.members))
	return nil
}

func (c *Compressor) writeArchive(w io.Writer) error {
	zw := zip.NewWriter(w)
	level := c.level
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})

	for _, member := range c.members {
		if err := addMember(zw, filepath.Join(c.dir, member), member); err != nil {
			_ = zw.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish archive: %w", err)
	}
	return nil
}

func addMember(zw *zip.Writer, source, name string) error {
	f, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("open member %s: %w", name, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat member %s: %w", name, err)
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("header for member %s: %w", name, err)
	}
	header.Name = name
	header.Method = zip.Deflate

	dst, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("add member %s: %w", name, err)
	}
	if _, err := io.Copy(dst, f); err != nil {
		return fmt.Errorf("compress member %s: %w", name, err)
	}
	return nil
}
