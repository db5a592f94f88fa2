package bundle

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	settingsName     = "settings.json"
	settingsDstDir   = "claude"
	settingsOverride = "settings.json" // under config/
)

// settingsDefaults is the fixed schema of default keys every generated
// settings file starts from. Source-tree overrides are applied per top-level
// key on top of these.
var settingsDefaults = map[string]interface{}{
	"$schema":             "https://json.schemastore.org/claude-code-settings.json",
	"includeCoAuthoredBy": false,
	"cleanupPeriodDays":   30,
	"permissions": map[string]interface{}{
		"allow": []interface{}{},
		"deny":  []interface{}{},
	},
}

// writeSettings generates the bundle's settings file: the fixed defaults,
// overlaid with any top-level keys from <sourceRoot>/config/settings.json.
func writeSettings(sourceRoot, stage string) error {
	merged := make(map[string]interface{}, len(settingsDefaults))
	for k, v := range settingsDefaults {
		merged[k] = v
	}

	overridePath := filepath.Join(sourceRoot, configDir, settingsOverride)
	if data, err := os.ReadFile(overridePath); err == nil {
		var overrides map[string]interface{}
		if err := json.Unmarshal(data, &overrides); err != nil {
			return fmt.Errorf("parsing settings overrides %s: %w", overridePath, err)
		}
		for k, v := range overrides {
			merged[k] = v
		}
	}

	out, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}

	dstDir := filepath.Join(stage, settingsDstDir)
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dstDir, err)
	}
	dst := filepath.Join(dstDir, settingsName)
	if err := os.WriteFile(dst, append(out, '\n'), 0644); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return nil
}
