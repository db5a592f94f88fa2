package bundle

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/semver/v3"
)

// MetaFileName is the bundle metadata file, written as the final build step.
// Its presence marks the bundle complete; push refuses a bundle without it.
const MetaFileName = "bundle.json"

// Meta records which tool version built the bundle and what it contains.
type Meta struct {
	Version       string         `json:"version"`
	BuiltAt       time.Time      `json:"built_at"`
	SubtreeCounts map[string]int `json:"subtree_counts"`
}

// writeMeta stamps the staged bundle with version and content metadata.
func writeMeta(stage, version string, counts map[string]int) error {
	meta := Meta{
		Version:       version,
		BuiltAt:       time.Now().UTC(),
		SubtreeCounts: counts,
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling bundle metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(stage, MetaFileName), append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing bundle metadata: %w", err)
	}
	return nil
}

// ReadMeta loads the metadata of a built bundle. A missing file means the
// bundle is absent or was left half-built by an aborted build.
func ReadMeta(bundleRoot string) (*Meta, error) {
	data, err := os.ReadFile(filepath.Join(bundleRoot, MetaFileName))
	if err != nil {
		return nil, fmt.Errorf("no complete bundle at %s (run build first): %w", bundleRoot, err)
	}

	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing bundle metadata: %w", err)
	}
	return &meta, nil
}

// CheckCompat rejects a bundle built by a newer major version of the tool
// than the one about to push it. Non-semver versions (dev builds) skip the
// check.
func CheckCompat(meta *Meta, cliVersion string) error {
	bundleVer, err := semver.NewVersion(meta.Version)
	if err != nil {
		return nil
	}
	cliVer, err := semver.NewVersion(cliVersion)
	if err != nil {
		return nil
	}

	if bundleVer.Major() > cliVer.Major() {
		return fmt.Errorf("bundle was built by %s, newer than this CLI (%s); upgrade before pushing", meta.Version, cliVersion)
	}
	return nil
}
