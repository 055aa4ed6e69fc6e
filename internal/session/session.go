package session

import (
	"errors"
	"fmt"
	"regexp"

	"go.i3wm.org/i3/v4"

	"github.com/1broseidon/quickterm/internal/geometry"
)

// ErrManagerUnavailable reports that the window manager IPC session is
// broken. Operations failing with it are not retried; a broken session means
// the daemon is about to shut down.
var ErrManagerUnavailable = errors.New("window manager unavailable")

// Workspace identifies the currently focused workspace and its rectangle.
type Workspace struct {
	Name string
	Rect geometry.Rect
}

// Window is a live window matched by mark, together with the workspace that
// currently contains it. Scratchpad windows report the manager's internal
// holding-area workspace name.
type Window struct {
	ID            int64
	Mark          string
	Workspace     string
	Rect          geometry.Rect
	WorkspaceRect geometry.Rect
	Fullscreen    bool
}

// Client is a persistent session with the window manager's IPC protocol.
// Command execution and tree queries share the library-managed connection;
// event subscriptions use a dedicated one.
type Client struct{}

// New opens the manager session.
func New() *Client {
	return &Client{}
}

// FocusedWorkspace returns the workspace currently holding focus. Queried
// fresh on every call; workspace layouts change between invocations.
func (c *Client) FocusedWorkspace() (Workspace, error) {
	workspaces, err := i3.GetWorkspaces()
	if err != nil {
		return Workspace{}, fmt.Errorf("%w: %v", ErrManagerUnavailable, err)
	}
	for _, ws := range workspaces {
		if ws.Focused {
			return Workspace{Name: ws.Name, Rect: rectFromIPC(ws.Rect)}, nil
		}
	}
	return Workspace{}, fmt.Errorf("%w: no focused workspace", ErrManagerUnavailable)
}

// FindMarked returns every window whose mark matches pattern, an anchored
// regular expression (an exact mark works as-is for the quickterm_* family).
func (c *Client) FindMarked(pattern string) ([]Window, error) {
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("invalid mark pattern %q: %w", pattern, err)
	}

	tree, err := i3.GetTree()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManagerUnavailable, err)
	}

	var matches []Window
	var walk func(node, workspace *i3.Node)
	walk = func(node, workspace *i3.Node) {
		if node == nil {
			return
		}
		if node.Type == i3.WorkspaceNode {
			workspace = node
		}
		if workspace != nil {
			for _, mark := range node.Marks {
				if !re.MatchString(mark) {
					continue
				}
				matches = append(matches, Window{
					ID:            int64(node.ID),
					Mark:          mark,
					Workspace:     workspace.Name,
					Rect:          rectFromIPC(node.Rect),
					WorkspaceRect: rectFromIPC(workspace.Rect),
					Fullscreen:    node.FullscreenMode != 0,
				})
				break
			}
		}
		for _, child := range node.Nodes {
			walk(child, workspace)
		}
		for _, child := range node.FloatingNodes {
			walk(child, workspace)
		}
	}
	walk(tree.Root, nil)

	return matches, nil
}

// Command sends a compound command string to the manager. The string grammar
// (comma-separated sub-commands, [con_mark=...] selectors) is the manager's
// own and is passed through verbatim.
func (c *Client) Command(command string) error {
	if _, err := i3.RunCommand(command); err != nil {
		if i3.IsUnsuccessful(err) {
			return fmt.Errorf("command %q rejected: %w", command, err)
		}
		return fmt.Errorf("%w: %v", ErrManagerUnavailable, err)
	}
	return nil
}

// WatchShutdown blocks consuming manager lifecycle events and invokes fn for
// each shutdown event. It returns only once the event stream ends.
func (c *Client) WatchShutdown(fn func()) error {
	recv := i3.Subscribe(i3.ShutdownEventType)
	defer recv.Close()

	for recv.Next() {
		if _, ok := recv.Event().(*i3.ShutdownEvent); ok {
			fn()
		}
	}
	return fmt.Errorf("%w: event subscription closed", ErrManagerUnavailable)
}

func rectFromIPC(r i3.Rect) geometry.Rect {
	return geometry.Rect{
		X:      int(r.X),
		Y:      int(r.Y),
		Width:  int(r.Width),
		Height: int(r.Height),
	}
}
