// Package runtimepath resolves where quickterm keeps its per-user files:
// the control socket in the runtime directory, the shell-selection history
// in the cache directory.
package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
)

// Dir returns the per-user runtime directory. XDG_RUNTIME_DIR wins; without
// it the systemd convention /run/user/<uid> is probed, and as a last resort
// a private directory under /tmp is created.
func Dir() (string, error) {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir, nil
	}

	uid := os.Getuid()
	if dir := fmt.Sprintf("/run/user/%d", uid); isDir(dir) {
		return dir, nil
	}

	dir := fmt.Sprintf("/tmp/quickterm-%d", uid)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir %s: %w", dir, err)
	}
	return dir, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// SocketPath returns the daemon control socket path inside Dir.
func SocketPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "quickterm.sock"), nil
}

// HistoryPath returns the default shell-selection history path. Unlike the
// socket it lives under the user cache directory and survives reboots.
func HistoryPath() (string, error) {
	cache, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve cache dir: %w", err)
	}
	return filepath.Join(cache, "quickterm", "history"), nil
}
