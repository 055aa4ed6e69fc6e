package toggler

import (
	"fmt"
	"log"
	"math"
	"os"
	"os/exec"
	"regexp"
	"strconv"

	"golang.org/x/sys/unix"

	"github.com/1broseidon/quickterm/internal/config"
	"github.com/1broseidon/quickterm/internal/geometry"
	"github.com/1broseidon/quickterm/internal/registry"
	"github.com/1broseidon/quickterm/internal/session"
	"github.com/1broseidon/quickterm/internal/terminal"
)

// markPrefix makes window marks a bijection between shell names and windows:
// looking a window up by mark is looking it up by shell name.
const markPrefix = "quickterm_"

// ratioTolerance is the minimum drift between the observed height fraction
// and the remembered ratio before the remembered value is overwritten.
const ratioTolerance = 0.03

// Mark returns the window mark carried by shell's terminal window.
func Mark(shell string) string {
	return markPrefix + shell
}

// Session is the window manager surface the toggler drives. *session.Client
// implements it; tests substitute a fake.
type Session interface {
	FocusedWorkspace() (session.Workspace, error)
	FindMarked(pattern string) ([]session.Window, error)
	Command(command string) error
}

// Toggler decides per toggle whether to spawn, show or hide a shell's
// terminal window. State is never cached across calls; the live tree is the
// source of truth.
type Toggler struct {
	session  Session
	registry *registry.Registry
	cfg      *config.Config

	// Injected for tests.
	spawn  func(shell string, ratio float64) error
	execve func(argv0 string, argv []string, envv []string) error
}

// New creates a toggler operating through sess.
func New(sess Session, reg *registry.Registry, cfg *config.Config) *Toggler {
	t := &Toggler{
		session:  sess,
		registry: reg,
		cfg:      cfg,
		execve:   unix.Exec,
	}
	t.spawn = t.spawnTerminal
	return t
}

// Toggle shows shell's terminal if it is hidden or absent and hides it if it
// is visible on the focused workspace. Errors abort the toggle without
// retrying; the remembered ratio only changes after a hide succeeds.
func (t *Toggler) Toggle(shell string) error {
	mark := Mark(shell)
	windows, err := t.session.FindMarked(regexp.QuoteMeta(mark))
	if err != nil {
		return err
	}

	if len(windows) == 0 {
		// Absent: spawn a terminal whose embedded command re-enters the
		// in-place launch path; the new window registers itself there.
		return t.spawn(shell, t.registry.Ratio(shell))
	}

	// Duplicate marks are a manager-side anomaly; operate on the first.
	win := windows[0]

	focused, err := t.session.FocusedWorkspace()
	if err != nil {
		return err
	}

	if win.Workspace == focused.Name {
		if err := t.hide(mark); err != nil {
			return err
		}
		// win still holds the pre-hide geometry; learn from it only once
		// the manager has accepted the hide.
		t.learnRatio(shell, win)
		return nil
	}
	return t.show(shell, focused)
}

// LaunchInPlace runs inside a freshly spawned terminal window: it marks the
// window, parks and re-shows it at the planned geometry, then replaces the
// current process image with the shell's interactive program. On success it
// never returns; the terminal exiting destroys the window and its mark.
func (t *Toggler) LaunchInPlace(shell string, ratio float64) error {
	if ratio <= 0 || ratio >= 1 {
		ratio = t.registry.Ratio(shell)
	}
	mark := Mark(shell)

	if err := t.session.Command("mark " + mark); err != nil {
		return err
	}

	focused, err := t.session.FocusedWorkspace()
	if err != nil {
		return err
	}
	rect := geometry.Plan(focused.Rect, t.cfg.WindowPosition(), ratio)

	command := fmt.Sprintf(
		`[con_mark="%s"] floating enable, move scratchpad, scratchpad show, resize set %d px %d px, move absolute position %dpx %dpx`,
		mark, rect.Width, rect.Height, rect.X, rect.Y)
	if err := t.session.Command(command); err != nil {
		return err
	}

	return t.execShell(shell)
}

// learnRatio updates the remembered ratio from the window's height fraction
// as observed before the hide. Fullscreen windows are skipped; their height
// says nothing about the preferred ratio.
func (t *Toggler) learnRatio(shell string, win session.Window) {
	if win.Fullscreen || win.WorkspaceRect.Height <= 0 {
		return
	}
	observed := float64(win.Rect.Height) / float64(win.WorkspaceRect.Height)
	if math.Abs(observed-t.registry.Ratio(shell)) <= ratioTolerance {
		return
	}
	t.registry.UpdateRatio(shell, observed)
}

func (t *Toggler) hide(mark string) error {
	command := fmt.Sprintf(`[con_mark="%s"] floating enable, move scratchpad`, mark)
	return t.session.Command(command)
}

// show issues one compound request: park (idempotent), show, then size and
// place. Resize must precede the absolute move; the manager re-centers the
// window on resize.
func (t *Toggler) show(shell string, focused session.Workspace) error {
	rect := geometry.Plan(focused.Rect, t.cfg.WindowPosition(), t.registry.Ratio(shell))

	command := fmt.Sprintf(
		`[con_mark="%s"] move scratchpad, scratchpad show, resize set %d px %d px, move absolute position %dpx %dpx`,
		Mark(shell), rect.Width, rect.Height, rect.X, rect.Y)
	return t.session.Command(command)
}

func (t *Toggler) spawnTerminal(shell string, ratio float64) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate quickterm binary: %w", err)
	}
	inner := []string{
		exe, "--in-place",
		"--ratio", strconv.FormatFloat(ratio, 'f', -1, 64),
		shell,
	}

	argv, err := terminal.SpawnArgv(t.cfg.Term, terminal.Options{
		Title:   "quickterm: " + shell,
		Command: inner,
	})
	if err != nil {
		return err
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to spawn terminal: %w", err)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Printf("terminal for shell %q exited: %v", shell, err)
		}
	}()
	return nil
}

func (t *Toggler) execShell(shell string) error {
	command, ok := t.cfg.Shells[shell]
	if !ok {
		return fmt.Errorf("unknown shell %q", shell)
	}
	argv, err := terminal.SplitCommand(command)
	if err != nil || len(argv) == 0 {
		return fmt.Errorf("invalid command for shell %q: %v", shell, err)
	}
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return fmt.Errorf("failed to find program for shell %q: %w", shell, err)
	}
	return t.execve(path, argv, os.Environ())
}
