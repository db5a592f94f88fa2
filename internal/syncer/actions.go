package syncer

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// ActionOp identifies one kind of filesystem mutation the engine performs.
type ActionOp string

const (
	OpDeleteDir    ActionOp = "delete-dir"
	OpCopyTree     ActionOp = "copy-tree"
	OpCopyFile     ActionOp = "copy-file"
	OpDeleteFile   ActionOp = "delete-file"
	OpRestoreFile  ActionOp = "restore-file"
	OpSaveManifest ActionOp = "save-manifest"
)

// Action is one step of a sync plan. The engine records the identical plan
// in dry-run and real mode; dry-run just skips execution.
type Action struct {
	Op   ActionOp
	Path string
	From string // source path for copy ops
}

// String renders the action for the dry-run preview.
func (a Action) String() string {
	switch a.Op {
	case OpDeleteDir:
		return fmt.Sprintf("delete directory %s", a.Path)
	case OpCopyTree:
		return fmt.Sprintf("copy %s -> %s", a.From, a.Path)
	case OpCopyFile:
		return fmt.Sprintf("copy %s -> %s", a.From, a.Path)
	case OpDeleteFile:
		return fmt.Sprintf("delete stale file %s", a.Path)
	case OpRestoreFile:
		return fmt.Sprintf("restore preserved file %s", a.Path)
	case OpSaveManifest:
		return fmt.Sprintf("write manifest %s", a.Path)
	default:
		return fmt.Sprintf("%s %s", a.Op, a.Path)
	}
}

// copyTree recursively copies src into dst, preserving file modes. Symlinks
// and other special files are skipped, matching the bundle builder.
func copyTree(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := copyTree(srcPath, dstPath); err != nil {
				return err
			}
		} else if entry.Type().IsRegular() {
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}

	return nil
}

// copyFile copies a single file, preserving permissions.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}

	return os.WriteFile(dst, data, srcInfo.Mode().Perm())
}

// walkFiles calls fn for every regular file under root with its
// slash-separated relative path, in sorted order so plans are stable.
func walkFiles(root string, fn func(rel string) error) error {
	var rels []string
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
		rels = append(rels, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return err
	}

	sort.Strings(rels)
	for _, rel := range rels {
		if err := fn(rel); err != nil {
			return err
		}
	}
	return nil
}
