package geometry

// Position selects which edge of the workspace a quickterm window is
// anchored to.
type Position string

const (
	PositionTop    Position = "top"
	PositionBottom Position = "bottom"
)

// bottomMargin keeps a bottom-anchored window clear of the workspace edge.
const bottomMargin = 6

// Rect is a window or workspace rectangle in absolute screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Plan maps a workspace rectangle, a position preference and a height ratio
// to the absolute rectangle the terminal should occupy. The window spans the
// full workspace width; its height is floor(workspace height * ratio).
//
// The caller guarantees 0 < ratio < 1; Plan performs no validation.
func Plan(workspace Rect, position Position, ratio float64) Rect {
	height := int(float64(workspace.Height) * ratio)

	y := workspace.Y
	if position == PositionBottom {
		y = workspace.Y + workspace.Height - height - bottomMargin
	}

	return Rect{
		X:      workspace.X,
		Y:      y,
		Width:  workspace.Width,
		Height: height,
	}
}
