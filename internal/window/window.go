// ABOUTME: Window location and activation for editor windows on X11.
// ABOUTME: A Query finds candidate windows, the Locator picks one, the Activator raises and focuses it.
package window

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrToolUnavailable means the external window query tool is not installed.
	ErrToolUnavailable = errors.New("window query tool not available")
	// ErrNoWindow means no candidate survived filtering. Not retried automatically.
	ErrNoWindow = errors.New("no matching window")
	// ErrActivationUnavailable means no display connection could be made.
	ErrActivationUnavailable = errors.New("window activation not available")
	// ErrBadHandle means the handle does not name a live window.
	ErrBadHandle = errors.New("invalid window handle")
)

// Handle is an X11 window id.
type Handle uint32

// ParseHandle parses a decimal (xdotool) or 0x-prefixed hex window id.
func ParseHandle(s string) (Handle, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	v, err := strconv.ParseUint(s, base, 32)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadHandle, s)
	}
	return Handle(v), nil
}

func (h Handle) String() string {
	return fmt.Sprintf("0x%x", uint32(h))
}

// Candidate is a window found during one locate call.
type Candidate struct {
	Handle Handle
	Title  string
}

// Target identifies an editor application on screen.
type Target struct {
	ID    string // editor id, e.g. "cursor"
	Class string // WM_CLASS to search first
	Title string // application name; title search fallback and title suffix
}
