// Package tuning tracks the tuning cursor over the spectrum surface
package tuning

// State is the pointer interaction state of the cursor
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	}
	return "unknown"
}

// Cursor is a horizontal pixel offset within [0, width]
type Cursor struct {
	x     float64
	width int
	state State
}

// NewCursor returns an idle cursor centered on a surface of the given width
func NewCursor(width int) Cursor {
	var c Cursor
	c.Reset(width)
	return c
}

// X returns the cursor offset in pixels
func (c *Cursor) X() float64 {
	return c.x
}

// Width returns the surface width the cursor is bound to
func (c *Cursor) Width() int {
	return c.width
}

// State returns the interaction state
func (c *Cursor) State() State {
	return c.state
}

// PointerDown starts a drag and moves the cursor to the pointer
func (c *Cursor) PointerDown(x float64) {
	c.state = Dragging
	c.x = c.clamp(x)
}

// PointerMove follows the pointer while dragging and is ignored otherwise
func (c *Cursor) PointerMove(x float64) {
	if c.state != Dragging {
		return
	}
	c.x = c.clamp(x)
}

// PointerUp ends a drag
func (c *Cursor) PointerUp() {
	c.state = Idle
}

// PointerLeave ends a drag when the pointer leaves the surface
func (c *Cursor) PointerLeave() {
	c.state = Idle
}

// Reset recenters the cursor and ends any drag
func (c *Cursor) Reset(width int) {
	if width < 0 {
		width = 0
	}
	c.width = width
	c.x = float64(width) / 2
	c.state = Idle
}

// Resize keeps the cursor position, clamped to the new width
func (c *Cursor) Resize(width int) {
	if width < 0 {
		width = 0
	}
	c.width = width
	c.x = c.clamp(c.x)
}

// Nudge moves the cursor by dx pixels in any state
func (c *Cursor) Nudge(dx float64) {
	c.x = c.clamp(c.x + dx)
}

// MoveTo places the cursor at x without changing the state
func (c *Cursor) MoveTo(x float64) {
	c.x = c.clamp(x)
}

func (c *Cursor) clamp(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > float64(c.width) {
		return float64(c.width)
	}
	return x
}
