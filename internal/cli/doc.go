// Package cli wires the cobra command tree: build, push, targets, version.
// Each command resolves its inputs from flags, the config file, and the
// environment up front, then hands explicit option structs to the packages
// that do the work.
package cli
