// Package manifest persists, per project, the set of root-level paths the
// tool wrote during its last successful merge sync. The next merge sync
// diffs that record against the bundle to find files that disappeared
// upstream and can be deleted downstream. Only the merge target uses it;
// replace targets converge by full delete-and-copy and need no record.
package manifest
