// Package targets holds the static target table: the mapping from each named
// sync target to its bundle subtree, project destination directory, sync
// strategy, and preserve patterns. The built-in table is embedded YAML,
// schema-validated at load, and immutable for the duration of a run; an
// external targets file can override it. The package also owns the preserve
// pattern glob matcher.
package targets
