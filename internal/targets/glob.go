package targets

import (
	"path"
	"strings"
)

// Match checks whether a slash-separated relative path matches a preserve
// pattern:
//
//   - Exact match: "settings.local.json" matches only that path.
//   - Single-segment wildcards: "*" and "?" per path.Match, never crossing "/".
//   - Recursive wildcard: "local/**" matches "local/a" and "local/a/b".
//   - Universal: "**" matches any path.
//   - Interior recursive: "env/**/secrets" matches "env/secrets" and
//     "env/prod/secrets".
//   - Directory pattern: "local" matches "local/a/b"; a pattern naming a
//     directory preserves everything beneath it.
//
// Returns false for malformed patterns rather than propagating errors; the
// registry rejects malformed patterns up front, so a false here can only
// come from a hand-edited targets file.
func Match(pattern, rel string) bool {
	if pattern == "**" {
		return true
	}

	// No ** in the pattern: path.Match handles * and ? correctly
	// (not matching /).
	if !strings.Contains(pattern, "**") {
		if matchGlob(pattern, rel) {
			return true
		}
		return hasMatchingPrefix(pattern, rel)
	}

	// Suffix: "local/**" matches the prefix, then anything after.
	if strings.HasSuffix(pattern, "/**") {
		prefix := strings.TrimSuffix(pattern, "/**")
		if matchGlob(prefix, rel) {
			return true
		}
		return hasMatchingPrefix(prefix, rel)
	}

	// Prefix: "**/secrets" matches anything before, then the suffix.
	if strings.HasPrefix(pattern, "**/") {
		suffix := strings.TrimPrefix(pattern, "**/")
		if matchGlob(suffix, rel) {
			return true
		}
		segments := strings.Split(rel, "/")
		for i := 1; i < len(segments); i++ {
			if matchGlob(suffix, strings.Join(segments[i:], "/")) {
				return true
			}
		}
		return false
	}

	// Interior: "env/**/secrets" splits on the first /**/; prefix and
	// suffix match independently.
	if idx := strings.Index(pattern, "/**/"); idx >= 0 {
		prefix := pattern[:idx]
		suffix := pattern[idx+4:]

		// Zero-segment case: ** matches nothing, prefix and suffix adjacent.
		if Match(prefix+"/"+suffix, rel) {
			return true
		}

		prefixDepth := strings.Count(prefix, "/") + 1
		segments := strings.Split(rel, "/")
		if len(segments) <= prefixDepth {
			return false
		}
		if !matchGlob(prefix, strings.Join(segments[:prefixDepth], "/")) {
			return false
		}
		for i := prefixDepth + 1; i < len(segments); i++ {
			if matchGlob(suffix, strings.Join(segments[i:], "/")) {
				return true
			}
		}
		return false
	}

	return false
}

// MatchAny reports whether rel matches any of the given patterns.
func MatchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if Match(p, rel) {
			return true
		}
	}
	return false
}

// matchGlob wraps path.Match, treating malformed patterns as non-matching.
func matchGlob(pattern, s string) bool {
	ok, err := path.Match(pattern, s)
	return err == nil && ok
}

// hasMatchingPrefix reports whether the leading segments of rel, taken at the
// pattern's segment depth, match the pattern with at least one segment left
// over beneath it.
func hasMatchingPrefix(pattern, rel string) bool {
	depth := strings.Count(pattern, "/") + 1
	segments := strings.Split(rel, "/")
	if len(segments) <= depth {
		return false
	}
	return matchGlob(pattern, strings.Join(segments[:depth], "/"))
}
