// Package config persists canvascli user state: a JSON settings file and
// a dotenv-style token file, both under a single config directory.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Settings holds user preferences.
type Settings struct {
	// ConfirmSubmit gates file submission behind an explicit
	// confirmation prompt.
	ConfirmSubmit bool `json:"confirm_submit"`
}

// DefaultSettings returns the default configuration.
func DefaultSettings() Settings {
	return Settings{ConfirmSubmit: true}
}

// DefaultDir returns the directory settings and token are stored in.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".canvascli"), nil
}

// SettingsFile returns the settings path under dir.
func SettingsFile(dir string) string {
	return filepath.Join(dir, "settings.json")
}

// LoadSettings reads settings from dir. A missing or unreadable file
// yields the defaults.
func LoadSettings(dir string) (Settings, error) {
	data, err := os.ReadFile(SettingsFile(dir))
	if os.IsNotExist(err) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return DefaultSettings(), err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		return DefaultSettings(), err
	}
	return settings, nil
}

// SaveSettings writes settings to dir, creating it if needed.
func SaveSettings(dir string, settings Settings) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(SettingsFile(dir), data, 0o644)
}
