package plan

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// ChangeKind classifies a file in a tree comparison.
type ChangeKind string

const (
	Added    ChangeKind = "added"
	Removed  ChangeKind = "removed"
	Modified ChangeKind = "modified"
)

// FileChange is one file that differs between two trees.
type FileChange struct {
	// Path is slash-separated and relative to the tree root.
	Path string
	Kind ChangeKind
	Diff *DiffResult
}

// TreeDiff is the comparison of an existing tree with a proposed one.
type TreeDiff struct {
	Changes   []FileChange
	Unchanged int
}

// HasDifferences reports whether any file was added, removed, or modified.
func (d *TreeDiff) HasDifferences() bool {
	return len(d.Changes) > 0
}

// Count returns the number of changes of kind k.
func (d *TreeDiff) Count(k ChangeKind) int {
	n := 0

	for _, c := range d.Changes {
		if c.Kind == k {
			n++
		}
	}

	return n
}

// DiffTrees compares every regular file under existingDir with the file at
// the same relative path under proposedDir. A missing existingDir compares
// as empty. Changes are sorted by path.
func DiffTrees(existingDir, proposedDir string) (*TreeDiff, error) {
	existing, err := readTree(existingDir)
	if err != nil {
		return nil, err
	}

	proposed, err := readTree(proposedDir)
	if err != nil {
		return nil, err
	}

	paths := make(map[string]bool, len(existing)+len(proposed))
	for p := range existing {
		paths[p] = true
	}

	for p := range proposed {
		paths[p] = true
	}

	sorted := make([]string, 0, len(paths))
	for p := range paths {
		sorted = append(sorted, p)
	}

	sort.Strings(sorted)

	result := &TreeDiff{}

	for _, p := range sorted {
		oldData, inOld := existing[p]
		newData, inNew := proposed[p]

		kind := Modified

		switch {
		case !inOld:
			kind = Added
		case !inNew:
			kind = Removed
		case oldData == newData:
			result.Unchanged++
			continue
		}

		opts := DefaultDiffOptions()
		opts.OldLabel = "a/" + p
		opts.NewLabel = "b/" + p

		d, err := ComputeDiff(oldData, newData, opts)
		if err != nil {
			return nil, err
		}

		result.Changes = append(result.Changes, FileChange{Path: p, Kind: kind, Diff: d})
	}

	return result, nil
}

// readTree loads every regular file under root keyed by its slash path.
func readTree(root string) (map[string]string, error) {
	files := map[string]string{}

	if _, err := os.Stat(root); os.IsNotExist(err) {
		return files, nil
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(path) //nolint:gosec // path comes from walking root
		if err != nil {
			return err
		}

		files[filepath.ToSlash(rel)] = string(data)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading tree %s: %w", root, err)
	}

	return files, nil
}

// WriteTreeDiff writes every file diff followed by a one-line summary.
func WriteTreeDiff(w io.Writer, d *TreeDiff, color bool) {
	if !d.HasDifferences() {
		_, _ = fmt.Fprintln(w, "No differences found.")
		return
	}

	for _, c := range d.Changes {
		WriteDiff(w, c.Diff, color)
	}

	_, _ = fmt.Fprintf(w, "\n%d added, %d removed, %d modified, %d unchanged\n",
		d.Count(Added), d.Count(Removed), d.Count(Modified), d.Unchanged)
}
