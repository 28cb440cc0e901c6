package window

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/777genius/claude-notifier/internal/logging"
)

// DefaultSettleDelay is the pause between activation steps.
const DefaultSettleDelay = 50 * time.Millisecond

// Display is the set of display-server operations the activation sequence needs.
type Display interface {
	// Validate fails with ErrBadHandle when h is not a live window.
	Validate(h Handle) error
	// Deminimize asks the window manager to clear the hidden state.
	Deminimize(h Handle) error
	// ServerTime returns the display server's clock.
	ServerTime() (uint32, error)
	// RequestActivate sends a _NET_ACTIVE_WINDOW client message as a pager.
	RequestActivate(h Handle, timestamp uint32) error
	// SetActive writes _NET_ACTIVE_WINDOW on the root window.
	SetActive(h Handle) error
	Map(h Handle) error
	Raise(h Handle) error
	// Focus sets input focus at the server's current time.
	Focus(h Handle) error
	Close()
}

// DialFunc opens a Display.
type DialFunc func() (Display, error)

// CurrentTime asks the display server to stamp a request with its own clock.
const CurrentTime uint32 = 0

// requestTime stamps an activation request with the server clock, the clock
// window managers compare against their last user-interaction time.
func requestTime(d Display) uint32 {
	ts, err := d.ServerTime()
	if err != nil {
		logging.Debug("server time unavailable, using CurrentTime: %v", err)
		return CurrentTime
	}
	return ts
}

// Activator brings a window to the foreground with keyboard focus.
type Activator struct {
	Dial   DialFunc
	Settle time.Duration
	Sleep  func(time.Duration)
}

// NewActivator returns an Activator using dial and the given settle delay.
func NewActivator(dial DialFunc, settle time.Duration) *Activator {
	return &Activator{Dial: dial, Settle: settle, Sleep: time.Sleep}
}

type step struct {
	name string
	fn   func() error
}

// Activate runs the activation sequence against h:
//
//	deminimize, request activation, set active, map, raise, focus,
//	request activation, raise, focus
//
// The second request/raise/focus round is required by Electron editors, which
// on the first request only focus their top-level process. The sequence stops
// at the first failing step. Errors are never retried.
func (a *Activator) Activate(ctx context.Context, h Handle) error {
	if a.Dial == nil {
		return ErrActivationUnavailable
	}
	d, err := a.Dial()
	if err != nil {
		logging.Warn("activation unavailable: %v", err)
		if errors.Is(err, ErrActivationUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrActivationUnavailable, err)
	}
	defer d.Close()

	if err := d.Validate(h); err != nil {
		if errors.Is(err, ErrBadHandle) {
			return err
		}
		return fmt.Errorf("%w: %s: %v", ErrBadHandle, h, err)
	}

	steps := []step{
		{"deminimize", func() error { return d.Deminimize(h) }},
		{"request activate", func() error { return d.RequestActivate(h, requestTime(d)) }},
		{"set active", func() error { return d.SetActive(h) }},
		{"map", func() error { return d.Map(h) }},
		{"raise", func() error { return d.Raise(h) }},
		{"focus", func() error { return d.Focus(h) }},
		{"request activate (repeat)", func() error { return d.RequestActivate(h, requestTime(d)) }},
		{"raise (repeat)", func() error { return d.Raise(h) }},
		{"focus (repeat)", func() error { return d.Focus(h) }},
	}

	for i, s := range steps {
		if i > 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			a.sleep()
		}
		if err := s.fn(); err != nil {
			logging.Warn("activate %s: %s failed: %v", h, s.name, err)
			return fmt.Errorf("activate %s: %s: %w", h, s.name, err)
		}
	}
	logging.Debug("activated window %s", h)
	return nil
}

func (a *Activator) sleep() {
	if a.Settle <= 0 {
		return
	}
	if a.Sleep != nil {
		a.Sleep(a.Settle)
		return
	}
	time.Sleep(a.Settle)
}
