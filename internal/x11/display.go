// ABOUTME: X11 implementation of the window activation steps using xgbutil/EWMH.
// ABOUTME: One Display wraps one X connection and is closed after each activation.
package x11

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/777genius/claude-notifier/internal/window"
)

// sourcePager marks EWMH requests as coming from a pager, which window
// managers exempt from focus-stealing prevention.
const sourcePager = 2

// serverTimeTimeout bounds the PropertyNotify round trip in ServerTime.
const serverTimeTimeout = 500 * time.Millisecond

var errServerTimeout = errors.New("timed out waiting for server time")

const (
	stateRemove = 0
	stateHidden = "_NET_WM_STATE_HIDDEN"
)

// Display issues activation requests on an X connection.
type Display struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window
}

// Dial connects to $DISPLAY.
func Dial() (window.Display, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", window.ErrActivationUnavailable, err)
	}
	return &Display{XUtil: xu, Root: xu.RootWin()}, nil
}

// Validate checks that h names an existing window.
func (d *Display) Validate(h window.Handle) error {
	if h == 0 {
		return fmt.Errorf("%w: zero", window.ErrBadHandle)
	}
	if _, err := xproto.GetWindowAttributes(d.XUtil.Conn(), xproto.Window(h)).Reply(); err != nil {
		return fmt.Errorf("%w: %s: %v", window.ErrBadHandle, h, err)
	}
	return nil
}

// Deminimize asks the window manager to drop _NET_WM_STATE_HIDDEN.
func (d *Display) Deminimize(h window.Handle) error {
	return ewmh.WmStateReqExtra(d.XUtil, xproto.Window(h), stateRemove, stateHidden, "", sourcePager)
}

// ServerTime reads the X server clock. It appends nothing to a property of a
// private InputOnly window and returns the time of the resulting PropertyNotify.
func (d *Display) ServerTime() (uint32, error) {
	conn := d.XUtil.Conn()
	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}
	err = xproto.CreateWindowChecked(
		conn,
		0, // depth (must be 0 for InputOnly)
		wid,
		d.Root,
		-1, -1,
		1, 1,
		0,
		xproto.WindowClassInputOnly,
		xproto.Visualid(0), // CopyFromParent
		xproto.CwEventMask,
		[]uint32{uint32(xproto.EventMaskPropertyChange)},
	).Check()
	if err != nil {
		return 0, fmt.Errorf("create time window: %w", err)
	}
	defer xproto.DestroyWindow(conn, wid)

	stamp := make(chan uint32, 1)
	go func() {
		for {
			ev, xerr := conn.WaitForEvent()
			if ev == nil && xerr == nil {
				return // connection closed
			}
			if pn, ok := ev.(xproto.PropertyNotifyEvent); ok && pn.Window == wid {
				stamp <- uint32(pn.Time)
				return
			}
		}
	}()

	err = xproto.ChangePropertyChecked(conn, xproto.PropModeAppend, wid,
		xproto.AtomWmName, xproto.AtomString, 8, 0, nil).Check()
	if err != nil {
		return 0, fmt.Errorf("touch time window: %w", err)
	}

	select {
	case ts := <-stamp:
		return ts, nil
	case <-time.After(serverTimeTimeout):
		return 0, errServerTimeout
	}
}

// RequestActivate sends a _NET_ACTIVE_WINDOW client message to the root window.
func (d *Display) RequestActivate(h window.Handle, timestamp uint32) error {
	return ewmh.ActiveWindowReqExtra(d.XUtil, xproto.Window(h), sourcePager, xproto.Timestamp(timestamp), 0)
}

// SetActive writes the _NET_ACTIVE_WINDOW root property directly.
func (d *Display) SetActive(h window.Handle) error {
	return ewmh.ActiveWindowSet(d.XUtil, xproto.Window(h))
}

func (d *Display) Map(h window.Handle) error {
	return xproto.MapWindowChecked(d.XUtil.Conn(), xproto.Window(h)).Check()
}

// Raise stacks h above its siblings.
func (d *Display) Raise(h window.Handle) error {
	return xproto.ConfigureWindowChecked(
		d.XUtil.Conn(),
		xproto.Window(h),
		xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeAbove},
	).Check()
}

// Focus gives h keyboard input focus. The request carries CurrentTime so the
// server never discards it as older than the last focus change.
func (d *Display) Focus(h window.Handle) error {
	return xproto.SetInputFocusChecked(
		d.XUtil.Conn(),
		xproto.InputFocusPointerRoot,
		xproto.Window(h),
		xproto.TimeCurrentTime,
	).Check()
}

// Close disconnects from the X server.
func (d *Display) Close() {
	d.XUtil.Conn().Close()
}
