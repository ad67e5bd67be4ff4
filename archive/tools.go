package archive

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/zeebo/blake3"
)

// TransformFunc rewrites the content of one archive member.
type TransformFunc func(in io.Reader, out io.Writer) error

// ListMembers returns the member names of an archive in stored order.
func ListMembers(archivePath string) ([]string, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", archivePath, err)
	}
	defer reader.Close()

	names := make([]string, 0, len(reader.File))
	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		names = append(names, file.Name)
	}
	return names, nil
}

// ExtractBeside unpacks an archive into a directory next to it named after
// the archive without its extension, and returns that directory.
func ExtractBeside(archivePath string, opts ...Option) (string, error) {
	dir := strings.TrimSuffix(archivePath, filepath.Ext(archivePath))
	if dir == archivePath {
		dir += ".contents"
	}
	extractor, err := Extract(archivePath, append(opts, WithStagingDir(dir))...)
	if err != nil {
		return "", err
	}
	defer extractor.Close()
	return dir, nil
}

// UpdatedPath returns the path ReplaceMember writes to when it does not
// replace the source archive.
func UpdatedPath(archivePath string) string {
	ext := filepath.Ext(archivePath)
	return strings.TrimSuffix(archivePath, ext) + " - Updated" + ext
}

// ReplaceMember rewrites one member of an archive through transform. With
// replace set the archive is updated in place; otherwise the result goes to
// UpdatedPath(archivePath). The path written is returned.
func ReplaceMember(archivePath, member string, transform TransformFunc, replace bool, opts ...Option) (string, error) {
	opts = append(opts, WithStagingDir(""))

	extractor, err := Extract(archivePath, opts...)
	if err != nil {
		return "", err
	}
	defer extractor.Close()

	source, err := extractor.FilePath(member)
	if err != nil {
		return "", err
	}
	if err := transformFile(source, transform); err != nil {
		return "", fmt.Errorf("transform member %s: %w", member, err)
	}

	target := archivePath
	if !replace {
		target = UpdatedPath(archivePath)
	}

	compressor, err := NewCompressor(target, append(opts, WithStagingDir(extractor.Dir()))...)
	if err != nil {
		return "", err
	}
	defer compressor.Close()

	for _, name := range extractor.Members() {
		if _, err := compressor.RegisterFile(name); err != nil {
			return "", err
		}
	}
	if err := compressor.Compress(); err != nil {
		return "", err
	}
	return target, nil
}

func transformFile(path string, transform TransformFunc) error {
	in, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := transform(bytes.NewReader(in), &out); err != nil {
		return err
	}
	return os.WriteFile(path, out.Bytes(), 0o644)
}

// Fingerprint hashes the member names and contents of an archive with BLAKE3.
// Members are taken in name order, so two archives with the same members and
// content have the same fingerprint regardless of entry order or timestamps.
func Fingerprint(archivePath string) (string, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", fmt.Errorf("open archive %s: %w", archivePath, err)
	}
	defer reader.Close()

	files := make([]*zip.File, 0, len(reader.File))
	for _, file := range reader.File {
		if !file.FileInfo().IsDir() {
			files = append(files, file)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	hasher := blake3.New()
	var size [8]byte
	for _, file := range files {
		binary.LittleEndian.PutUint64(size[:], uint64(len(file.Name)))
		_, _ = hasher.Write(size[:])
		_, _ = hasher.Write([]byte(file.Name))

		binary.LittleEndian.PutUint64(size[:], file.UncompressedSize64)
		_, _ = hasher.Write(size[:])
		if err := hashMember(hasher, file); err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

func hashMember(w io.Writer, file *zip.File) error {
	rc, err := file.Open()
	if err != nil {
		return fmt.Errorf("open member %s: %w", file.Name, err)
	}
	defer rc.Close()
	if _, err := io.Copy(w, rc); err != nil {
		return fmt.Errorf("read member %s: %w", file.Name, err)
	}
	return nil
}
