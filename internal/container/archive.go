package container

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Extraction limits for archives copied out of containers.
const (
	maxArchiveFiles     = 100000
	maxArchiveFileSize  = 1 << 30
	maxArchiveTotalSize = 4 << 30
)

// tarDirectory archives the contents of dir with paths relative to dir.
// The .git directory is skipped.
func tarDirectory(dir string) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if d.IsDir() && d.Name() == ".git" {
			return filepath.SkipDir
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", rel, err)
		}
		var link string
		if info.Mode()&os.ModeSymlink != 0 {
			if link, err = os.Readlink(p); err != nil {
				return fmt.Errorf("read symlink %s: %w", rel, err)
			}
		}
		header, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return fmt.Errorf("tar header for %s: %w", rel, err)
		}
		header.Name = filepath.ToSlash(rel)
		if d.IsDir() {
			header.Name += "/"
		}
		if err := tw.WriteHeader(header); err != nil {
			return fmt.Errorf("write tar header for %s: %w", rel, err)
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		f, err := os.Open(p)
		if err != nil {
			return fmt.Errorf("open %s: %w", rel, err)
		}
		_, copyErr := io.Copy(tw, f)
		f.Close()
		if copyErr != nil {
			return fmt.Errorf("archive %s: %w", rel, copyErr)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("archiving %s: %w", dir, err)
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}
	return &buf, nil
}

// tarFile archives a single file named name.
func tarFile(name string, data []byte, mode int64) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	if err := tw.WriteHeader(&tar.Header{
		Name:     name,
		Mode:     mode,
		Size:     int64(len(data)),
		Typeflag: tar.TypeReg,
	}); err != nil {
		return nil, err
	}
	if _, err := tw.Write(data); err != nil {
		return nil, err
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}
	return &buf, nil
}

// readSingleFile returns the first regular file in a tar stream.
func readSingleFile(r io.Reader) ([]byte, int64, error) {
	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil, 0, errors.New("archive contains no regular file")
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read tar header: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		data, err := io.ReadAll(io.LimitReader(tr, maxArchiveFileSize))
		if err != nil {
			return nil, 0, fmt.Errorf("read %s: %w", header.Name, err)
		}
		return data, header.Mode & 0777, nil
	}
}

// extractTar unpacks r into destDir. When stripRoot is set the first path
// component of every entry is dropped, so a directory archived as
// "plugins/..." lands directly in destDir.
func extractTar(r io.Reader, destDir string, stripRoot bool) error {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", destDir, err)
	}

	tr := tar.NewReader(r)
	count := 0
	var total int64
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}
		count++
		if count > maxArchiveFiles {
			return fmt.Errorf("archive contains too many files (limit: %d)", maxArchiveFiles)
		}

		name := strings.TrimPrefix(header.Name, "./")
		if stripRoot {
			_, rest, ok := strings.Cut(name, "/")
			if !ok || rest == "" {
				continue
			}
			name = rest
		}

		target := filepath.Join(destDir, filepath.FromSlash(name)) //nolint:gosec // G305: validated below
		rel, err := filepath.Rel(destDir, target)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return fmt.Errorf("invalid path in archive: %s", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			//nolint:gosec // G115: mode masked to permission bits
			if err := os.MkdirAll(target, os.FileMode(header.Mode&0777)|0700); err != nil {
				return fmt.Errorf("create directory %s: %w", name, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("create parent directory for %s: %w", name, err)
			}
			//nolint:gosec // G115: mode masked to permission bits
			f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(header.Mode&0777))
			if err != nil {
				return fmt.Errorf("create file %s: %w", name, err)
			}
			if total > maxArchiveTotalSize {
				_ = f.Close()
				return fmt.Errorf("archive exceeds maximum extracted size (limit: %d bytes)", maxArchiveTotalSize)
			}
			written, copyErr := io.Copy(f, io.LimitReader(tr, maxArchiveFileSize))
			total += written
			if copyErr != nil {
				_ = f.Close()
				return fmt.Errorf("write file %s: %w", name, copyErr)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close file %s: %w", name, err)
			}
		default:
			// Installed plugin layouts contain only directories and regular files.
		}
	}
}
