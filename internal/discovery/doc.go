// Package discovery resolves the set of destination project roots for a
// push: an explicit project, a configured projects file, an environment
// list, or a scan of known workspace directories, in that precedence order,
// deduplicated and filtered to git repositories.
package discovery
