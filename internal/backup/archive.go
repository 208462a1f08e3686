// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

package backup

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// createArchive writes a gzip-compressed tar of srcDir to destPath, with
// every entry's path prefixed by topLevelName (the server's name), per
// the spec's "top-level entry equal to the server name" requirement. It
// returns the final compressed file size.
func createArchive(srcDir, topLevelName, destPath string) (int64, error) {
	out, err := os.Create(destPath)
	if err != nil {
		return 0, fmt.Errorf("backup: create archive file: %w", err)
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	walkErr := filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(srcDir, path)
		if relErr != nil {
			return relErr
		}
		entryName := topLevelName
		if rel != "." {
			entryName = filepath.ToSlash(filepath.Join(topLevelName, rel))
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = entryName
		if info.IsDir() && !strings.HasSuffix(header.Name, "/") {
			header.Name += "/"
		}

		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(tw, f)
		return err
	})

	if tarErr := tw.Close(); tarErr != nil && walkErr == nil {
		walkErr = tarErr
	}
	if gzErr := gz.Close(); gzErr != nil && walkErr == nil {
		walkErr = gzErr
	}
	if walkErr != nil {
		_ = out.Close()
		_ = os.Remove(destPath)
		return 0, fmt.Errorf("backup: write archive: %w", walkErr)
	}

	if err := out.Close(); err != nil {
		return 0, fmt.Errorf("backup: close archive file: %w", err)
	}
	info, err := os.Stat(destPath)
	if err != nil {
		return 0, fmt.Errorf("backup: stat archive file: %w", err)
	}
	return info.Size(), nil
}

// restoreArchive extracts archivePath over destDir, stripping the
// archive's top-level directory entry (the server name) so the
// contents land directly in destDir. It refuses any entry whose
// resolved path would escape destDir — the same traversal discipline
// internal/lifecycle's delete path applies to untrusted path segments,
// here applied to an untrusted (if locally produced) tar member name.
func restoreArchive(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("backup: open archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("backup: open gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("backup: read tar entry: %w", err)
		}

		name := header.Name
		if idx := strings.IndexByte(name, '/'); idx >= 0 {
			name = name[idx+1:]
		} else {
			name = ""
		}
		if name == "" {
			continue
		}

		target := filepath.Join(destDir, name)
		rel, err := filepath.Rel(destDir, target)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return fmt.Errorf("backup: archive entry %q escapes destination directory", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o750); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(header.Mode))
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
		}
	}
}
