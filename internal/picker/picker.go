package picker

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/1broseidon/quickterm/internal/terminal"
)

// ErrCancelled is returned when the user closes the menu without selecting
// a shell.
var ErrCancelled = errors.New("picker cancelled")

// Detect returns a menu command for the first picker program found in PATH,
// in priority order: rofi, fuzzel, wofi, dmenu.
func Detect() (string, error) {
	candidates := []struct {
		program string
		command string
	}{
		{"rofi", "rofi -dmenu -p quickterm"},
		{"fuzzel", "fuzzel --dmenu --prompt quickterm"},
		{"wofi", "wofi --dmenu --prompt quickterm"},
		{"dmenu", "dmenu -p quickterm"},
	}
	for _, c := range candidates {
		if _, err := exec.LookPath(c.program); err == nil {
			return c.command, nil
		}
	}
	return "", fmt.Errorf("no menu program found in PATH (looked for: rofi, fuzzel, wofi, dmenu)")
}

// Pick runs menuCommand, writes the candidate names one per line to its
// stdin and returns the chosen line. ErrCancelled when the menu exits with
// nothing selected.
func Pick(menuCommand string, candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", fmt.Errorf("picker: no candidates to show")
	}

	argv, err := terminal.SplitCommand(menuCommand)
	if err != nil || len(argv) == 0 {
		return "", fmt.Errorf("invalid menu command %q: %v", menuCommand, err)
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(strings.Join(candidates, "\n") + "\n")

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	choice := strings.TrimSpace(string(out))

	if err != nil {
		if choice == "" && isCancelExit(err) {
			return "", ErrCancelled
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s failed: %s", argv[0], msg)
		}
		return "", fmt.Errorf("%s failed: %w", argv[0], err)
	}

	if choice == "" {
		return "", ErrCancelled
	}
	return choice, nil
}

func isCancelExit(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	// Menu programs use 1 for "no selection" and 130 for Ctrl+C.
	switch exitErr.ExitCode() {
	case 1, 130:
		return true
	default:
		return false
	}
}
