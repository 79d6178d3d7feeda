package utils

import (
	"os"
	"path/filepath"
	"runtime"
)

// ConfigDirCandidates lists where the config directory may live, most
// preferred first. homeDir may be empty when it could not be determined.
func ConfigDirCandidates(appName, homeDir string) []string {
	var candidates []string

	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		candidates = append(candidates, filepath.Join(configHome, appName))
	}
	if homeDir != "" {
		candidates = append(candidates, filepath.Join(homeDir, ".config", appName))
		switch runtime.GOOS {
		case "darwin":
			// Not conventional, fallback from ~/.config if not writable
			candidates = append(candidates, filepath.Join(homeDir, "Library", "Application Support", appName))
		case "windows":
			if appData := os.Getenv("APPDATA"); appData != "" {
				candidates = append(candidates, filepath.Join(appData, appName))
			}
		}
	}
	return candidates
}

// RuntimeInfo returns debug information about the current runtime environment
func RuntimeInfo() map[string]string {
	cwd, _ := os.Getwd()
	execDir, _ := ExecutableDir()
	home, _ := os.UserHomeDir()
	return map[string]string{
		"executable_dir": execDir,
		"current_dir":    cwd,
		"home_dir":       home,
		"os":             runtime.GOOS,
		"arch":           runtime.GOARCH,
	}
}
