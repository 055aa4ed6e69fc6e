package toggler

import (
	"strings"
	"testing"

	"github.com/1broseidon/quickterm/internal/config"
	"github.com/1broseidon/quickterm/internal/geometry"
	"github.com/1broseidon/quickterm/internal/registry"
	"github.com/1broseidon/quickterm/internal/session"
)

// fakeSession records commands instead of talking to a window manager.
type fakeSession struct {
	focused  session.Workspace
	windows  []session.Window
	commands []string

	findErr    error
	commandErr error
}

func (f *fakeSession) FocusedWorkspace() (session.Workspace, error) {
	return f.focused, nil
}

func (f *fakeSession) FindMarked(pattern string) ([]session.Window, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.windows, nil
}

func (f *fakeSession) Command(command string) error {
	if f.commandErr != nil {
		return f.commandErr
	}
	f.commands = append(f.commands, command)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Term:     "alacritty",
		Position: "top",
		Ratio:    0.25,
		Shells:   map[string]string{"python": "sh -i", "js": "node"},
	}
}

func newTestToggler(sess *fakeSession) (*Toggler, *registry.Registry, *int) {
	reg := registry.New(0.25)
	t := New(sess, reg, testConfig())
	spawns := 0
	t.spawn = func(shell string, ratio float64) error {
		spawns++
		return nil
	}
	return t, reg, &spawns
}

func TestToggle_AbsentSpawnsOnceWithoutRatioChange(t *testing.T) {
	sess := &fakeSession{
		focused: session.Workspace{Name: "1", Rect: geometry.Rect{Width: 1920, Height: 1080}},
	}
	tog, reg, spawns := newTestToggler(sess)

	if err := tog.Toggle("python"); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if *spawns != 1 {
		t.Fatalf("expected exactly one spawn, got %d", *spawns)
	}
	if len(sess.commands) != 0 {
		t.Fatalf("expected no manager commands for an absent shell, got %v", sess.commands)
	}
	if got := reg.Ratio("python"); got != 0.25 {
		t.Fatalf("expected ratio untouched at 0.25, got %v", got)
	}
}

func TestToggle_VisibleHereHidesAndLearnsRatio(t *testing.T) {
	sess := &fakeSession{
		focused: session.Workspace{Name: "1", Rect: geometry.Rect{Width: 1920, Height: 1000}},
		windows: []session.Window{{
			ID:            42,
			Mark:          "quickterm_python",
			Workspace:     "1",
			Rect:          geometry.Rect{Width: 1920, Height: 400},
			WorkspaceRect: geometry.Rect{Width: 1920, Height: 1000},
		}},
	}
	tog, reg, spawns := newTestToggler(sess)

	if err := tog.Toggle("python"); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if *spawns != 0 {
		t.Fatalf("expected no spawn, got %d", *spawns)
	}
	if len(sess.commands) != 1 {
		t.Fatalf("expected one compound command, got %v", sess.commands)
	}
	want := `[con_mark="quickterm_python"] floating enable, move scratchpad`
	if sess.commands[0] != want {
		t.Fatalf("hide command = %q, want %q", sess.commands[0], want)
	}
	// Observed fraction 0.4 drifts more than 3% from stored 0.25.
	if got := reg.Ratio("python"); got != 0.4 {
		t.Fatalf("expected learned ratio 0.4, got %v", got)
	}
}

func TestToggle_SmallDriftKeepsStoredRatio(t *testing.T) {
	sess := &fakeSession{
		focused: session.Workspace{Name: "1", Rect: geometry.Rect{Width: 1920, Height: 1000}},
		windows: []session.Window{{
			Mark:          "quickterm_python",
			Workspace:     "1",
			Rect:          geometry.Rect{Width: 1920, Height: 270},
			WorkspaceRect: geometry.Rect{Width: 1920, Height: 1000},
		}},
	}
	tog, reg, _ := newTestToggler(sess)

	if err := tog.Toggle("python"); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	// Observed 0.27 is within the 0.03 tolerance of 0.25.
	if got := reg.Ratio("python"); got != 0.25 {
		t.Fatalf("expected ratio to stay 0.25, got %v", got)
	}
}

func TestToggle_FullscreenWindowNeverLearns(t *testing.T) {
	sess := &fakeSession{
		focused: session.Workspace{Name: "1", Rect: geometry.Rect{Width: 1920, Height: 1000}},
		windows: []session.Window{{
			Mark:          "quickterm_python",
			Workspace:     "1",
			Rect:          geometry.Rect{Width: 1920, Height: 1000},
			WorkspaceRect: geometry.Rect{Width: 1920, Height: 1000},
			Fullscreen:    true,
		}},
	}
	tog, reg, _ := newTestToggler(sess)

	if err := tog.Toggle("python"); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if got := reg.Ratio("python"); got != 0.25 {
		t.Fatalf("expected ratio to stay 0.25 for fullscreen window, got %v", got)
	}
}

func TestToggle_HiddenElsewhereShowsAtStoredRatio(t *testing.T) {
	sess := &fakeSession{
		focused: session.Workspace{Name: "2", Rect: geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}},
		windows: []session.Window{{
			Mark:      "quickterm_python",
			Workspace: "__i3_scratch",
		}},
	}
	tog, reg, _ := newTestToggler(sess)
	reg.UpdateRatio("python", 0.5)

	if err := tog.Toggle("python"); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if len(sess.commands) != 1 {
		t.Fatalf("expected one compound command, got %v", sess.commands)
	}
	want := `[con_mark="quickterm_python"] move scratchpad, scratchpad show, resize set 1920 px 540 px, move absolute position 0px 0px`
	if sess.commands[0] != want {
		t.Fatalf("show command = %q, want %q", sess.commands[0], want)
	}
}

func TestToggle_DuplicateMarksOperateOnFirst(t *testing.T) {
	sess := &fakeSession{
		focused: session.Workspace{Name: "1", Rect: geometry.Rect{Width: 1920, Height: 1000}},
		windows: []session.Window{
			{Mark: "quickterm_python", Workspace: "__i3_scratch"},
			{Mark: "quickterm_python", Workspace: "1"},
		},
	}
	tog, _, _ := newTestToggler(sess)

	if err := tog.Toggle("python"); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	// First match is parked elsewhere, so the toggle must be a show.
	if len(sess.commands) != 1 || !strings.Contains(sess.commands[0], "scratchpad show") {
		t.Fatalf("expected a show sequence, got %v", sess.commands)
	}
}

func TestToggle_ManagerErrorLeavesRegistryUnchanged(t *testing.T) {
	sess := &fakeSession{findErr: session.ErrManagerUnavailable}
	tog, reg, spawns := newTestToggler(sess)

	if err := tog.Toggle("python"); err == nil {
		t.Fatal("expected error when the manager session is broken")
	}
	if *spawns != 0 {
		t.Fatalf("expected no spawn on error, got %d", *spawns)
	}
	if got := reg.Ratio("python"); got != 0.25 {
		t.Fatalf("expected ratio untouched, got %v", got)
	}
}

func TestToggle_FailedHideLeavesRegistryUnchanged(t *testing.T) {
	sess := &fakeSession{
		focused: session.Workspace{Name: "1", Rect: geometry.Rect{Width: 1920, Height: 1000}},
		windows: []session.Window{{
			Mark:          "quickterm_python",
			Workspace:     "1",
			Rect:          geometry.Rect{Width: 1920, Height: 400},
			WorkspaceRect: geometry.Rect{Width: 1920, Height: 1000},
		}},
		commandErr: session.ErrManagerUnavailable,
	}
	tog, reg, _ := newTestToggler(sess)

	if err := tog.Toggle("python"); err == nil {
		t.Fatal("expected error when the hide command is rejected")
	}
	// Observed fraction 0.4 would be learned after a successful hide, but
	// the window never moved.
	if got := reg.Ratio("python"); got != 0.25 {
		t.Fatalf("expected ratio untouched at 0.25, got %v", got)
	}
}

func TestLaunchInPlace_MarksThenPlacesThenExecs(t *testing.T) {
	sess := &fakeSession{
		focused: session.Workspace{Name: "1", Rect: geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}},
	}
	reg := registry.New(0.25)
	tog := New(sess, reg, testConfig())

	var execArgv []string
	tog.execve = func(argv0 string, argv []string, envv []string) error {
		execArgv = argv
		return nil
	}

	if err := tog.LaunchInPlace("python", 0.25); err != nil {
		t.Fatalf("LaunchInPlace: %v", err)
	}
	if len(sess.commands) != 2 {
		t.Fatalf("expected mark + placement commands, got %v", sess.commands)
	}
	if sess.commands[0] != "mark quickterm_python" {
		t.Fatalf("first command = %q, want mark", sess.commands[0])
	}
	want := `[con_mark="quickterm_python"] floating enable, move scratchpad, scratchpad show, resize set 1920 px 270 px, move absolute position 0px 0px`
	if sess.commands[1] != want {
		t.Fatalf("placement command = %q, want %q", sess.commands[1], want)
	}
	if len(execArgv) != 2 || execArgv[0] != "sh" || execArgv[1] != "-i" {
		t.Fatalf("expected exec into the configured shell command, got %v", execArgv)
	}
}

func TestLaunchInPlace_BadRatioFallsBackToRemembered(t *testing.T) {
	sess := &fakeSession{
		focused: session.Workspace{Name: "1", Rect: geometry.Rect{Width: 1920, Height: 1000}},
	}
	reg := registry.New(0.25)
	reg.UpdateRatio("python", 0.3)
	tog := New(sess, reg, testConfig())
	tog.execve = func(string, []string, []string) error { return nil }

	if err := tog.LaunchInPlace("python", 0); err != nil {
		t.Fatalf("LaunchInPlace: %v", err)
	}
	if !strings.Contains(sess.commands[1], "resize set 1920 px 300 px") {
		t.Fatalf("expected placement at remembered ratio 0.3, got %q", sess.commands[1])
	}
}
