// Package archive stages the member files of a project archive in a
// directory and moves them in and out of a single zip file.
//
// A Stager owns one staging directory for the duration of one read or write.
// An Extractor unpacks an archive into it; a Compressor collects registered
// members in it and writes them out as an archive. Both must be closed, which
// removes a private staging directory and everything in it:
//
//	extractor, err := archive.Extract(path)
//	if err != nil {
//		return err
//	}
//	defer extractor.Close()
//
// Archives are flat: every member sits at the root of the zip file.
package archive

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"
)

// Stager manages the staging directory shared by Extractor and Compressor.
type Stager struct {
	archivePath string
	dir         string
	members     []string
	owned       bool
	closed      bool
	logger      Logger
	cleanup     runtime.Cleanup
}

func newStager(archivePath string, cfg settings) (*Stager, error) {
	s := &Stager{
		archivePath: archivePath,
		logger:      cfg.logger,
	}

	if cfg.stagingDir != "" {
		if err := os.MkdirAll(cfg.stagingDir, 0o755); err != nil {
			return nil, fmt.Errorf("create staging directory %s: %w", cfg.stagingDir, err)
		}
		s.dir = cfg.stagingDir
		return s, nil
	}

	root := cfg.tempRoot
	if root == "" {
		root = os.TempDir()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create temp root %s: %w", root, err)
	}

	dir := filepath.Join(root, cfg.prefix+"-"+newID())
	if err := os.Mkdir(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create staging directory %s: %w", dir, err)
	}
	s.dir = dir
	s.owned = true

	// Backstop for stagers dropped without Close. Runs at an unspecified time,
	// if at all.
	s.cleanup = runtime.AddCleanup(s, removeAbandoned, dir)
	return s, nil
}

func removeAbandoned(dir string) {
	_ = os.RemoveAll(dir)
}

// newID returns a UUIDv7, falling back to v4.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}

// ArchivePath returns the location of the archive being read or written.
func (s *Stager) ArchivePath() string {
	return s.archivePath
}

// Dir returns the staging directory.
func (s *Stager) Dir() string {
	return s.dir
}

// Owned reports whether the staging directory is private to the stager and
// will be deleted by Close.
func (s *Stager) Owned() bool {
	return s.owned
}

// Members returns the member file names in registration or extraction order.
func (s *Stager) Members() []string {
	out := make([]string, len(s.members))
	copy(out, s.members)
	return out
}

// Paths returns the staged path of every member.
func (s *Stager) Paths() []string {
	out := make([]string, 0, len(s.members))
	for _, member := range s.members {
		out = append(out, filepath.Join(s.dir, member))
	}
	return out
}

// Contains reports whether name, stripped of any directory, is a member.
// Names compare case-insensitively.
func (s *Stager) Contains(name string) bool {
	_, ok := s.lookup(baseName(name))
	return ok
}

// RegisterFile strips any directory from p, records the bare file name as a
// member and returns the path reserved for it in the staging directory.
func (s *Stager) RegisterFile(p string) (string, error) {
	if s.closed {
		return "", ErrStagerClosed
	}
	name := baseName(p)
	if name == "" {
		return "", fmt.Errorf("%w: %q", ErrEmptyFileName, p)
	}
	if existing, ok := s.lookup(name); ok {
		return filepath.Join(s.dir, existing), nil
	}
	s.members = append(s.members, name)
	return filepath.Join(s.dir, name), nil
}

// FilePath returns the staged path of a member. Directory components of name
// are ignored and the match is case-insensitive.
func (s *Stager) FilePath(name string) (string, error) {
	if s.closed {
		return "", ErrStagerClosed
	}
	member, ok := s.lookup(baseName(name))
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNotArchiveMember, name)
	}
	return filepath.Join(s.dir, member), nil
}

func (s *Stager) lookup(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	for _, member := range s.members {
		if strings.EqualFold(member, name) {
			return member, true
		}
	}
	return "", false
}

func (s *Stager) record(name string) {
	if _, ok := s.lookup(name); !ok {
		s.members = append(s.members, name)
	}
}

// Close releases the staging directory. A private directory is deleted along
// with every staged member; a supplied directory is left untouched. Failures
// are logged and never returned. Close is idempotent.
func (s *Stager) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if !s.owned {
		return nil
	}
	s.cleanup.Stop()

	for _, member := range s.members {
		memberPath := filepath.Join(s.dir, member)
		if err := os.Remove(memberPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("Failed to remove staged file", "path", memberPath, "error", err)
		}
	}
	s.members = nil

	if err := os.RemoveAll(s.dir); err != nil {
		s.logger.Warn("Failed to remove staging directory", "dir", s.dir, "error", err)
	}
	return nil
}

// baseName strips directories using both slash styles so names written on
// Windows resolve the same way.
func baseName(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	name := path.Base(p)
	if name == "." || name == ".." || name == "/" {
		return ""
	}
	return name
}
