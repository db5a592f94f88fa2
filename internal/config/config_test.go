package config

import (
	"os"
	"strings"
	"testing"
)

func TestSetPersistsAndGetReadsBack(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := Set(KeyBundleRoot, "/tmp/bundle"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	data, err := os.ReadFile(FilePath())
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if !strings.Contains(string(data), KeyBundleRoot) {
		t.Errorf("config file missing key %s: %q", KeyBundleRoot, data)
	}

	Load()
	if got := Get(KeyBundleRoot); got != "/tmp/bundle" {
		t.Errorf("Get(%s) = %q, want /tmp/bundle", KeyBundleRoot, got)
	}
}

func TestGetUnsetKeyIsEmpty(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	Load()
	if got := Get("no_such_key"); got != "" {
		t.Errorf("unset key returned %q", got)
	}
}
