package overlay

// Window is the capability surface of whatever hosts the overlay. A real
// compositor-backed host could make the surface click-through or move it;
// a terminal can do neither.
type Window interface {
	SetClickThrough(enabled bool) error
	SetPosition(x, y int) error
}

// terminalWindow accepts both capabilities and ignores them.
type terminalWindow struct{}

func (terminalWindow) SetClickThrough(bool) error { return nil }
func (terminalWindow) SetPosition(int, int) error { return nil }

// NewTerminalWindow returns the no-op window used when the overlay runs in
// a terminal.
func NewTerminalWindow() Window { return terminalWindow{} }
