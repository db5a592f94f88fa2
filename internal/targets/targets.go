package targets

import (
	_ "embed"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Strategy selects how a target's destination is converged to the bundle.
type Strategy string

const (
	// StrategyReplace deletes the destination directory and copies the
	// bundle subtree in its place.
	StrategyReplace Strategy = "replace"
	// StrategyMerge copies over existing files without deleting the
	// destination, then removes previously-managed files that disappeared
	// from the bundle.
	StrategyMerge Strategy = "merge"
)

// Definition maps one named target to its bundle subtree, project
// destination, preservation rules, and sync strategy.
type Definition struct {
	Name             string   `yaml:"name"`
	SourceSubtree    string   `yaml:"source_subtree"`
	DestinationDir   string   `yaml:"destination_dir"`
	Strategy         Strategy `yaml:"strategy"`
	PreservePatterns []string `yaml:"preserve_patterns"`
}

// IsRoot reports whether the target's destination is the project root itself.
func (d *Definition) IsRoot() bool {
	return d.DestinationDir == "."
}

// Registry is the compiled, immutable target table for a run.
type Registry struct {
	defs   []Definition
	byName map[string]*Definition
}

// targetsFile is the on-disk shape of a target table.
type targetsFile struct {
	Targets []Definition `yaml:"targets"`
}

//go:embed targets.yaml
var defaultTable []byte

// NotFoundError is returned by Resolve for an unknown target name.
type NotFoundError struct {
	Name  string
	Known []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unknown target %q (known targets: %s)", e.Name, strings.Join(e.Known, ", "))
}

// Load compiles the built-in default target table.
func Load() (*Registry, error) {
	return compile(defaultTable, "built-in targets.yaml")
}

// LoadFile compiles a target table from an external YAML file, overriding
// the built-in defaults.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading targets file: %w", err)
	}
	return compile(data, path)
}

// compile parses, schema-validates, and semantically validates a target
// table, returning the immutable registry.
func compile(data []byte, origin string) (*Registry, error) {
	result, err := validateSchema(data)
	if err != nil {
		return nil, fmt.Errorf("validating %s: %w", origin, err)
	}
	if !result.Valid {
		var lines []string
		for _, issue := range result.Issues {
			lines = append(lines, fmt.Sprintf("  %s: %s", issue.Path, issue.Message))
		}
		return nil, fmt.Errorf("invalid target table %s:\n%s", origin, strings.Join(lines, "\n"))
	}

	var file targetsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", origin, err)
	}

	reg := &Registry{
		// Fixed capacity: byName holds pointers into defs, which must not
		// reallocate while being filled.
		defs:   make([]Definition, 0, len(file.Targets)),
		byName: make(map[string]*Definition, len(file.Targets)),
	}
	mergeCount := 0

	for i := range file.Targets {
		def := file.Targets[i]

		if _, dup := reg.byName[def.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate target %q", origin, def.Name)
		}
		if err := validateDestination(&def); err != nil {
			return nil, fmt.Errorf("%s: target %q: %w", origin, def.Name, err)
		}
		for _, p := range def.PreservePatterns {
			if err := validatePattern(p); err != nil {
				return nil, fmt.Errorf("%s: target %q: %w", origin, def.Name, err)
			}
		}
		if def.Strategy == StrategyMerge {
			mergeCount++
		}

		reg.defs = append(reg.defs, def)
		reg.byName[def.Name] = &reg.defs[len(reg.defs)-1]
	}

	if mergeCount != 1 {
		return nil, fmt.Errorf("%s: expected exactly one merge-strategy target, found %d", origin, mergeCount)
	}

	return reg, nil
}

// validateDestination enforces the destination rules. The destination is
// later joined with a project root and, for replace targets, recursively
// deleted, so anything that could escape the project root is rejected here.
func validateDestination(def *Definition) error {
	dest := def.DestinationDir

	if filepath.IsAbs(dest) {
		return fmt.Errorf("destination %q must be relative", dest)
	}
	if strings.Contains(dest, "..") {
		return fmt.Errorf("destination %q must not contain %q", dest, "..")
	}

	if def.Strategy == StrategyMerge {
		// The merge target writes into the project root and never deletes
		// directories, so "." is allowed there and only there.
		if dest != "." {
			return fmt.Errorf("merge destination must be %q, got %q", ".", dest)
		}
		return nil
	}

	if dest == "." || strings.ContainsAny(dest, `/\`) {
		return fmt.Errorf("replace destination %q must be a single relative path segment", dest)
	}
	return nil
}

// validatePattern rejects syntactically malformed glob patterns up front.
func validatePattern(pattern string) error {
	// path.Match reports ErrBadPattern independent of the probe string;
	// ** segments are plain names as far as its syntax goes.
	if _, err := path.Match(pattern, "probe"); err != nil {
		return fmt.Errorf("malformed preserve pattern %q: %w", pattern, err)
	}
	return nil
}

// Resolve looks up a target by name.
func (r *Registry) Resolve(name string) (*Definition, error) {
	def, ok := r.byName[name]
	if !ok {
		return nil, &NotFoundError{Name: name, Known: r.Names()}
	}
	return def, nil
}

// All returns every target definition in table order.
func (r *Registry) All() []Definition {
	return r.defs
}

// Names returns the sorted target names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
