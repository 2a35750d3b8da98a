package util

import (
	"os"
	"path/filepath"
	"strings"
)

// HomeDir returns the user's home directory
func HomeDir() string {
	home, _ := os.UserHomeDir()
	return home
}

// ConfigHome returns the root directory for rebackup configuration and data.
// REBACKUP_HOME overrides the default of ~/.config/rebackup.
func ConfigHome() string {
	if v := os.Getenv("REBACKUP_HOME"); v != "" {
		return v
	}
	return filepath.Join(HomeDir(), ".config", "rebackup")
}

// DefaultTrashPath returns the default location of the trash bin.
func DefaultTrashPath() string {
	return filepath.Join(ConfigHome(), "trash")
}

// ExpandPath resolves a path for use at runtime: "~" expands to the home
// directory, relative paths are resolved from baseDir, and the result is
// cleaned. An empty path stays empty.
func ExpandPath(path, baseDir string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		return HomeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(HomeDir(), path[2:])
	}
	if !filepath.IsAbs(path) && baseDir != "" {
		return filepath.Clean(filepath.Join(baseDir, path))
	}
	return filepath.Clean(path)
}

// EnsureDir creates the directory (and parents) if it does not exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o750)
}

// DirExists returns true if path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// FileExists returns true if path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// IsWritable reports whether a new file can be created inside dir.
func IsWritable(dir string) bool {
	f, err := os.CreateTemp(dir, ".rebackup-probe-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}
