// Package syncer replicates a built bundle into destination projects, one
// (project, target) pair at a time: extract preserved local files, apply the
// target's replace or merge strategy, remove manifest-tracked stale files
// (merge only), reinject the preserved files. Pairs are isolated, so one
// failure never stops the rest of the run, and dry-run records the exact
// plan a real run would execute. Manifest entries are untrusted input and
// are rejected when they would reach outside the project root.
package syncer
