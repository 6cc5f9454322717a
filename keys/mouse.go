package keys

import "fmt"

// SGR (1006) mouse button codes.
const (
	mouseButtonLeft      = 0
	mouseButtonWheelUp   = 64
	mouseButtonWheelDown = 65
)

// MouseClick encodes a left-button press followed by a release at the given
// cell. Coordinates are 0-based cells; the wire form is 1-based.
func MouseClick(x, y int) []byte {
	press := fmt.Sprintf("%s[<%d;%d;%dM", esc, mouseButtonLeft, x+1, y+1)
	release := fmt.Sprintf("%s[<%d;%d;%dm", esc, mouseButtonLeft, x+1, y+1)
	return []byte(press + release)
}

// MouseScrollUp encodes a single wheel-up event at the given cell.
func MouseScrollUp(x, y int) []byte {
	return []byte(fmt.Sprintf("%s[<%d;%d;%dM", esc, mouseButtonWheelUp, x+1, y+1))
}

// MouseScrollDown encodes a single wheel-down event at the given cell.
func MouseScrollDown(x, y int) []byte {
	return []byte(fmt.Sprintf("%s[<%d;%d;%dM", esc, mouseButtonWheelDown, x+1, y+1))
}
