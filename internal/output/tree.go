package output

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// RemoveTree deletes path recursively. A missing path is not an error.
// It reports whether something was removed.
func RemoveTree(path string) (bool, error) {
	if _, err := os.Lstat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}

		return false, fmt.Errorf("inspecting %s: %w", path, err)
	}

	if err := os.RemoveAll(path); err != nil {
		return false, fmt.Errorf("removing %s: %w", path, err)
	}

	return true, nil
}

// EnsureDir creates path and any missing parents.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o750); err != nil {
		return fmt.Errorf("creating directory %s: %w", path, err)
	}

	return nil
}

// Exists reports whether path exists.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}

	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	return false, fmt.Errorf("inspecting %s: %w", path, err)
}

// PruneDir removes every entry of dir whose name is not in keep. A missing
// dir is not an error. It returns the names that were removed.
func PruneDir(dir string, keep map[string]bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var removed []string

	for _, e := range entries {
		if keep[e.Name()] {
			continue
		}

		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return removed, fmt.Errorf("removing %s: %w", filepath.Join(dir, e.Name()), err)
		}

		removed = append(removed, e.Name())
	}

	return removed, nil
}

// PruneSubdirs removes every subdirectory of dir whose name is not in
// keep. Regular files are left alone. A missing dir is not an error. It
// returns the names that were removed.
func PruneSubdirs(dir string, keep map[string]bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var removed []string

	for _, e := range entries {
		if !e.IsDir() || keep[e.Name()] {
			continue
		}

		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return removed, fmt.Errorf("removing %s: %w", filepath.Join(dir, e.Name()), err)
		}

		removed = append(removed, e.Name())
	}

	return removed, nil
}

// Subdirs returns the names of the subdirectories of dir in lexical order.
// A missing dir has none.
func Subdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var names []string

	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}

	return names, nil
}

// CopyFlat copies the regular files directly inside src into dst. The copy
// is one level deep: subdirectories of src are skipped and logged. dst is
// created only when there is at least one file to copy, and a missing src
// copies nothing. It returns the number of files copied.
func CopyFlat(src, dst string, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}

		return 0, fmt.Errorf("reading directory %s: %w", src, err)
	}

	copied := 0

	for _, e := range entries {
		if e.IsDir() {
			logger.Warn("skipping nested template directory",
				slog.String("dir", filepath.Join(src, e.Name())),
			)

			continue
		}

		if !e.Type().IsRegular() {
			continue
		}

		if copied == 0 {
			if err := EnsureDir(dst); err != nil {
				return 0, err
			}
		}

		if err := copyFile(filepath.Join(src, e.Name()), filepath.Join(dst, e.Name())); err != nil {
			return copied, err
		}

		copied++
	}

	return copied, nil
}

// CopyTree copies src recursively into dst, keeping relative paths. Only
// directories and regular files are copied. A missing src copies nothing.
func CopyTree(src, dst string) error {
	if ok, err := Exists(src); err != nil || !ok {
		return err
	}

	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			return EnsureDir(target)
		case d.Type().IsRegular():
			return copyFile(path, target)
		default:
			return nil
		}
	})
	if err != nil {
		return fmt.Errorf("copying %s to %s: %w", src, dst, err)
	}

	return nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src) //nolint:gosec // src is a file inside a staging directory we created
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close() //nolint:errcheck // read-only

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644) //nolint:gosec // dst is under the output directory
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}

	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", dst, cerr)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copying %s to %s: %w", src, dst, err)
	}

	return nil
}
