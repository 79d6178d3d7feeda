package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// FileExists reports whether path names an existing file or directory.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// WriteTOML encodes v into path, prefixed by header comment lines.
// The file is written next to path and renamed over it, so a crash never
// leaves a half-written config behind. Missing parent dirs are created.
func WriteTOML(path string, v any, header ...string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".farecast-*.toml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	for _, line := range header {
		if _, err := fmt.Fprintf(tmp, "# %s\n", line); err != nil {
			tmp.Close()
			return err
		}
	}
	if len(header) > 0 {
		fmt.Fprintln(tmp)
	}
	enc := toml.NewEncoder(tmp)
	enc.Indent = ""
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	log.Debugf("Wrote %s", path)
	return nil
}

// WritableDir creates dir when missing and reports whether a file can be created in it.
func WritableDir(dir string) bool {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Debugf("Cannot create %s: %v", dir, err)
		return false
	}
	probe, err := os.CreateTemp(dir, ".farecast-probe-*")
	if err != nil {
		log.Debugf("Cannot write to %s: %v", dir, err)
		return false
	}
	probe.Close()
	os.Remove(probe.Name())
	return true
}

// DisplayPath is path made absolute for messages; "" means no file was used.
func DisplayPath(path string) string {
	if path == "" {
		return "builtin defaults"
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// ExecutableDir is the last-resort config dir, next to the binary.
func ExecutableDir() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(execPath), nil
}
