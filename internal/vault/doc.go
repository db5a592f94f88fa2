// Package vault captures local-only files out of a sync destination before
// the destructive step and restores them afterwards. Snapshots are held in
// memory (preserve patterns are scoped to modest config and state files,
// not arbitrary trees) and reinjection is byte-identical, including file
// modes.
package vault
