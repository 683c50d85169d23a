package client

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrExtraction is a corrupt or unwritable project archive.
var ErrExtraction = errors.New("client: archive extraction failed")

// extractZip extracts the downloaded project archive into dir. Existing
// files at the same relative paths are overwritten; local files absent
// from the archive are left untouched.
func extractZip(zipPath, dir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("%w: open %q: %w", ErrExtraction, zipPath, err)
	}
	defer r.Close()

	for _, f := range r.File {
		name := filepath.FromSlash(f.Name)
		if !filepath.IsLocal(name) {
			return fmt.Errorf("%w: unsafe path %q in archive", ErrExtraction, f.Name)
		}
		target := filepath.Join(dir, name)

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("%w: create dir %q: %w", ErrExtraction, target, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("%w: create dir for %q: %w", ErrExtraction, target, err)
		}

		if err := extractFile(f, target); err != nil {
			return err
		}
	}

	return nil
}

func extractFile(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: open %q in archive: %w", ErrExtraction, f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("%w: create %q: %w", ErrExtraction, target, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("%w: extract %q: %w", ErrExtraction, f.Name, err)
	}

	return nil
}
