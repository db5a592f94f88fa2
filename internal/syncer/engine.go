package syncer

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/compass-labs/compass-engine/internal/discovery"
	"github.com/compass-labs/compass-engine/internal/manifest"
	"github.com/compass-labs/compass-engine/internal/targets"
	"github.com/compass-labs/compass-engine/internal/vault"
)

// State is the progress of one (project, target) sync.
type State string

const (
	StatePending         State = "pending"
	StateVaultExtracted  State = "vault-extracted"
	StateReplaced        State = "replaced"
	StateMerged          State = "merged"
	StateStaleChecked    State = "stale-checked"
	StateVaultReinjected State = "vault-reinjected"
	StateDone            State = "done"
	StateError           State = "error"
)

// PairResult is the outcome of syncing one target into one project.
type PairResult struct {
	Project string
	Target  string
	State   State
	Err     error
	// Critical marks a reinjection failure: the destination may now be
	// missing local content the user depended on.
	Critical  bool
	Actions   []Action
	Warnings  []string
	Preserved int
}

// Failed reports whether the pair ended in an error state.
func (r *PairResult) Failed() bool {
	return r.Err != nil
}

// Summary collects every pair attempted in a push run.
type Summary struct {
	Pairs []PairResult
}

// Failed reports whether any pair errored.
func (s *Summary) Failed() bool {
	for i := range s.Pairs {
		if s.Pairs[i].Failed() {
			return true
		}
	}
	return false
}

// Engine replicates one built bundle into project repositories. The bundle
// is read-only for the duration of a run; each (project, target) pair owns
// its destination directory exclusively.
type Engine struct {
	BundleRoot string
	Registry   *targets.Registry
	DryRun     bool
}

// Run syncs every requested target into every project. Pairs are isolated:
// a failure is recorded and the run moves on to the next pair.
func (e *Engine) Run(projects []discovery.ProjectRef, targetNames []string) (*Summary, error) {
	defs := make([]*targets.Definition, 0, len(targetNames))
	for _, name := range targetNames {
		def, err := e.Registry.Resolve(name)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}

	summary := &Summary{}
	for _, project := range projects {
		for _, def := range defs {
			summary.Pairs = append(summary.Pairs, e.syncPair(project.Path, def))
		}
	}
	return summary, nil
}

// syncPair runs the per-pair state machine: vault extract, destructive step
// per strategy, stale check (merge only), vault reinject. Extraction
// strictly precedes the destructive step, which strictly precedes
// reinjection; reinjection runs even when the destructive step failed, so
// a mid-sync failure cannot silently drop preserved local files.
func (e *Engine) syncPair(projectRoot string, def *targets.Definition) PairResult {
	res := PairResult{
		Project: projectRoot,
		Target:  def.Name,
		State:   StatePending,
	}

	if _, err := os.Stat(projectRoot); err != nil {
		res.State = StateError
		res.Err = fmt.Errorf("project root %s is missing or unreadable: %w", projectRoot, err)
		return res
	}

	srcDir := filepath.Join(e.BundleRoot, filepath.FromSlash(def.SourceSubtree))
	if _, err := os.Stat(srcDir); err != nil {
		res.State = StateError
		res.Err = fmt.Errorf("bundle subtree %s is missing (rebuild the bundle): %w", srcDir, err)
		return res
	}

	destDir := filepath.Join(projectRoot, filepath.FromSlash(def.DestinationDir))

	snap, err := vault.Extract(destDir, def.PreservePatterns)
	if err != nil {
		// Fail safe: nothing destructive has happened yet.
		res.State = StateError
		res.Err = err
		return res
	}
	res.State = StateVaultExtracted
	res.Preserved = snap.Len()

	var destErr error
	switch def.Strategy {
	case targets.StrategyReplace:
		destErr = e.replace(srcDir, destDir, &res)
		if destErr == nil {
			res.State = StateReplaced
		}
	case targets.StrategyMerge:
		var copied map[string]bool
		copied, destErr = e.merge(srcDir, destDir, &res)
		if destErr == nil {
			res.State = StateMerged
			destErr = e.staleCheck(projectRoot, def, copied, &res)
			if destErr == nil {
				res.State = StateStaleChecked
			}
		}
	default:
		destErr = fmt.Errorf("unknown strategy %q for target %s", def.Strategy, def.Name)
	}

	// Reinject regardless of the destructive step's outcome.
	if reinjectErr := e.reinject(destDir, snap, &res); reinjectErr != nil {
		res.State = StateError
		res.Critical = true
		res.Err = reinjectErr
		return res
	}
	if snap.Len() > 0 {
		res.State = StateVaultReinjected
	}

	if destErr != nil {
		res.State = StateError
		res.Err = destErr
		return res
	}

	res.State = StateDone
	return res
}

// replace converges destDir to the bundle subtree by full delete-and-copy.
// Intentionally not a diff: incremental merging would let stale files, and
// the bugs in them, persist downstream.
func (e *Engine) replace(srcDir, destDir string, res *PairResult) error {
	res.record(Action{Op: OpDeleteDir, Path: destDir})
	if !e.DryRun {
		if err := os.RemoveAll(destDir); err != nil {
			return fmt.Errorf("removing %s: %w", destDir, err)
		}
	}

	res.record(Action{Op: OpCopyTree, Path: destDir, From: srcDir})
	if !e.DryRun {
		if err := copyTree(srcDir, destDir); err != nil {
			return fmt.Errorf("copying %s to %s: %w", srcDir, destDir, err)
		}
	}
	return nil
}

// merge copies every bundle file into destDir, overwriting same-path files
// and leaving everything else alone. Returns the set of relative paths
// copied (the next manifest).
func (e *Engine) merge(srcDir, destDir string, res *PairResult) (map[string]bool, error) {
	copied := make(map[string]bool)

	err := walkFiles(srcDir, func(rel string) error {
		copied[rel] = true
		dst := filepath.Join(destDir, filepath.FromSlash(rel))
		res.record(Action{Op: OpCopyFile, Path: dst, From: filepath.Join(srcDir, filepath.FromSlash(rel))})
		if e.DryRun {
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(dst), err)
		}
		return copyFile(filepath.Join(srcDir, filepath.FromSlash(rel)), dst)
	})
	if err != nil {
		return copied, fmt.Errorf("merging %s into %s: %w", srcDir, destDir, err)
	}
	return copied, nil
}

// staleCheck deletes previously-managed files that disappeared from the
// bundle, then persists the new manifest. A file is only deleted if it
// still exists and no preserve pattern shields it.
func (e *Engine) staleCheck(projectRoot string, def *targets.Definition, copied map[string]bool, res *PairResult) error {
	prior := manifest.Load(projectRoot)

	// Sorted so the plan is stable across runs.
	sorted := make([]string, 0, len(prior))
	for rel := range prior {
		sorted = append(sorted, rel)
	}
	sort.Strings(sorted)

	for _, rel := range sorted {
		if copied[rel] {
			continue
		}
		if !insideRoot(rel) {
			res.warn(fmt.Sprintf("manifest entry %q escapes the project root, skipped", rel))
			continue
		}
		if targets.MatchAny(def.PreservePatterns, rel) {
			continue
		}
		stale := filepath.Join(projectRoot, filepath.FromSlash(rel))
		if _, err := os.Stat(stale); err != nil {
			continue
		}
		res.record(Action{Op: OpDeleteFile, Path: stale})
		if !e.DryRun {
			if err := os.Remove(stale); err != nil {
				return fmt.Errorf("removing stale file %s: %w", stale, err)
			}
		}
	}

	res.record(Action{Op: OpSaveManifest, Path: manifest.Path(projectRoot)})
	if !e.DryRun {
		if err := manifest.Save(projectRoot, copied); err != nil {
			return err
		}
	}
	return nil
}

// reinject restores the vault snapshot into destDir. In dry-run the restore
// actions are recorded so the plan matches what a real run would do.
func (e *Engine) reinject(destDir string, snap *vault.Snapshot, res *PairResult) error {
	for _, rel := range snap.Paths() {
		res.record(Action{Op: OpRestoreFile, Path: filepath.Join(destDir, filepath.FromSlash(rel))})
	}
	if e.DryRun || snap.Len() == 0 {
		return nil
	}
	return vault.Reinject(destDir, snap)
}

// insideRoot reports whether a manifest-supplied relative path stays inside
// the project root once joined onto it. The manifest lives in
// project-writable locations, so its entries are untrusted input to every
// os.Remove below; anything absolute or climbing out via ".." is rejected.
func insideRoot(rel string) bool {
	if rel == "" || filepath.IsAbs(filepath.FromSlash(rel)) {
		return false
	}
	clean := path.Clean(rel)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return false
	}
	return true
}

func (r *PairResult) record(a Action) {
	r.Actions = append(r.Actions, a)
}

func (r *PairResult) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}
