package targets

import (
	"testing"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern string
		rel     string
		want    bool
	}{
		// Exact and single-segment wildcards.
		{"settings.local.json", "settings.local.json", true},
		{"settings.local.json", "settings.json", false},
		{"*.local.json", "settings.local.json", true},
		{"*.local.json", "nested/settings.local.json", false},
		{"sessions/*.json", "sessions/abc.json", true},
		{"sessions/*.json", "sessions/deep/abc.json", false},

		// Recursive suffix.
		{"local/**", "local/notes.md", true},
		{"local/**", "local/a/b/c.md", true},
		{"local/**", "local", false},
		{"local/**", "other/notes.md", false},
		{"sessions/**", "sessions/2024/01/log.json", true},

		// Universal.
		{"**", "anything/at/all", true},

		// Recursive prefix.
		{"**/secrets.env", "secrets.env", true},
		{"**/secrets.env", "env/prod/secrets.env", true},
		{"**/secrets.env", "env/prod/other.env", false},

		// Interior recursive.
		{"env/**/secrets", "env/secrets", true},
		{"env/**/secrets", "env/prod/secrets", true},
		{"env/**/secrets", "env/prod/eu/secrets", true},
		{"env/**/secrets", "prod/secrets", false},

		// Directory pattern preserves everything beneath it.
		{"local", "local/a.txt", true},
		{"local", "local/a/b.txt", true},
		{"local", "localx/a.txt", false},
		{".compass-engine/**", ".compass-engine/root-sync-manifest.json", true},

		// Malformed pattern never matches.
		{"[", "anything", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.rel, func(t *testing.T) {
			if got := Match(tt.pattern, tt.rel); got != tt.want {
				t.Errorf("Match(%q, %q) = %v, want %v", tt.pattern, tt.rel, got, tt.want)
			}
		})
	}
}

func TestMatchAny(t *testing.T) {
	patterns := []string{"settings.local.json", "local/**"}

	if !MatchAny(patterns, "local/scratch.md") {
		t.Error("expected local/scratch.md to match")
	}
	if MatchAny(patterns, "commands/run.md") {
		t.Error("expected commands/run.md not to match")
	}
	if MatchAny(nil, "anything") {
		t.Error("expected no match against empty pattern list")
	}
}
