package history

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Load reads the most-recently-used shell-name list at path. Missing,
// unreadable or stale contents (name set differing from shells) are
// discarded and regenerated from the configured set in sorted order.
func Load(path string, shells []string) []string {
	fallback := make([]string, len(shells))
	copy(fallback, shells)
	sort.Strings(fallback)

	data, err := os.ReadFile(path)
	if err != nil {
		return fallback
	}

	var names []string
	for _, line := range strings.Split(string(data), "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	if !sameSet(names, shells) {
		return fallback
	}
	return names
}

// Promote returns names with shell moved to the front, preserving the
// relative order of the rest.
func Promote(names []string, shell string) []string {
	out := make([]string, 0, len(names)+1)
	out = append(out, shell)
	for _, name := range names {
		if name != shell {
			out = append(out, name)
		}
	}
	return out
}

// Save rewrites the history file atomically, one name per line.
func Save(path string, names []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create history dir: %w", err)
	}

	data := strings.Join(names, "\n") + "\n"
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(data), 0644); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace history: %w", err)
	}
	return nil
}

// sameSet reports whether a and b hold exactly the same names; duplicates
// count as a mismatch.
func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := make([]string, len(a))
	bs := make([]string, len(b))
	copy(as, a)
	copy(bs, b)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
