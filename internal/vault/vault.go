package vault

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/compass-labs/compass-engine/internal/targets"
)

// Entry is one preserved file: its path relative to the destination
// directory, its content, and its original mode.
type Entry struct {
	RelPath string
	Data    []byte
	Mode    os.FileMode
}

// Snapshot holds the preserved files for one (project, target) sync. It is
// captured before any destructive step and reinjected after; it lives only
// in memory and only for the duration of that sync.
type Snapshot struct {
	Entries []Entry
}

// Len returns the number of preserved files.
func (s *Snapshot) Len() int {
	return len(s.Entries)
}

// Paths returns the relative paths of all preserved files, in capture order.
func (s *Snapshot) Paths() []string {
	paths := make([]string, 0, len(s.Entries))
	for _, e := range s.Entries {
		paths = append(paths, e.RelPath)
	}
	return paths
}

// Extract walks destDir and captures every file whose relative path matches
// any of the preserve patterns. A missing destDir yields an empty snapshot.
// Any read failure aborts the extraction: syncing must not proceed to a
// destructive step while local state could not be fully captured.
func Extract(destDir string, patterns []string) (*Snapshot, error) {
	snap := &Snapshot{}

	if len(patterns) == 0 {
		return snap, nil
	}
	if _, err := os.Stat(destDir); os.IsNotExist(err) {
		return snap, nil
	}

	err := filepath.WalkDir(destDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(destDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if !targets.MatchAny(patterns, rel) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading preserved file %s: %w", path, err)
		}
		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stating preserved file %s: %w", path, err)
		}

		snap.Entries = append(snap.Entries, Entry{
			RelPath: rel,
			Data:    data,
			Mode:    info.Mode().Perm(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("extracting local state from %s: %w", destDir, err)
	}

	return snap, nil
}

// Reinject writes every snapshot entry back to its original relative path
// under destDir, creating parent directories as needed. It keeps going on
// write failures so that one bad path does not lose the rest of the
// snapshot, and reports every failure in the returned error.
func Reinject(destDir string, snap *Snapshot) error {
	var failed []string

	for _, e := range snap.Entries {
		dst := filepath.Join(destDir, filepath.FromSlash(e.RelPath))
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", e.RelPath, err))
			continue
		}
		if err := os.WriteFile(dst, e.Data, e.Mode); err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", e.RelPath, err))
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("restoring %d preserved file(s) under %s failed: %v", len(failed), destDir, failed)
	}
	return nil
}
