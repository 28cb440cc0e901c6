//go:build linux

package daemon

import (
	"context"
	"errors"
	"sync"

	"github.com/777genius/claude-notifier/internal/focus"
	"github.com/777genius/claude-notifier/internal/logging"
	"github.com/777genius/claude-notifier/internal/notification"
)

// Message is anything delivered to the consumer loop.
type Message interface{}

// PayloadMsg carries a decoded payload from the listener.
type PayloadMsg struct {
	Payload notification.Payload
}

// ActivatedMsg reports a click on a presented notification.
type ActivatedMsg struct {
	PresentationID uint32
}

// DismissedMsg reports that a presented notification was closed.
type DismissedMsg struct {
	PresentationID uint32
}

// FocusMsg asks for a focus attempt for a known notification.
type FocusMsg struct {
	NotificationID string
}

// FocusResult is posted by a focus worker when it finishes. It carries the
// notification itself because a click is usually followed by a close, which
// drops the record before the worker is done.
type FocusResult struct {
	NotificationID string
	Notification   *notification.Notification
	Result         focus.Result
	Err            error
}

// Presenter renders notifications. Its callbacks must post back to the loop
// rather than touch loop state.
type Presenter interface {
	Show(n *notification.Notification) (uint32, error)
	ShowFocusFailure(n *notification.Notification, err error)
	Close() error
}

// FocusFunc runs the focus pipeline for n. It is called on a worker goroutine.
type FocusFunc func(ctx context.Context, n *notification.Notification) (focus.Result, error)

// Hooks observe the loop's outputs. They run on the loop goroutine.
type Hooks struct {
	OnNotification func(n *notification.Notification)
	OnFocusResult  func(r FocusResult)
}

// maxTracked bounds notifications kept for click-to-focus when the
// notification server never reports closing them.
const maxTracked = 256

// Loop is the single owner of notification state. Everything reaches it
// through Post; only Run's goroutine reads or writes its maps.
type Loop struct {
	box        *mailbox
	normalizer *notification.Normalizer
	presenter  Presenter
	focus      FocusFunc
	hooks      Hooks

	// owned by Run
	notifications  map[string]*notification.Notification
	order          []string
	byPresentation map[uint32]string
	presentationOf map[string]uint32

	workers sync.WaitGroup
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithPresenter sets the presentation collaborator.
func WithPresenter(p Presenter) LoopOption {
	return func(l *Loop) { l.presenter = p }
}

// WithFocus sets the focus pipeline.
func WithFocus(fn FocusFunc) LoopOption {
	return func(l *Loop) { l.focus = fn }
}

// WithHooks sets output observers.
func WithHooks(h Hooks) LoopOption {
	return func(l *Loop) { l.hooks = h }
}

// WithNormalizer replaces the default normalizer.
func WithNormalizer(nz *notification.Normalizer) LoopOption {
	return func(l *Loop) { l.normalizer = nz }
}

// NewLoop creates a consumer loop.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		box:            newMailbox(),
		normalizer:     &notification.Normalizer{},
		notifications:  make(map[string]*notification.Notification),
		byPresentation: make(map[uint32]string),
		presentationOf: make(map[string]uint32),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Post enqueues m for the loop. It never blocks; it returns false after the
// loop has stopped.
func (l *Loop) Post(m Message) bool {
	return l.box.Put(m)
}

// PostPayload adapts Post to the listener's PostFunc.
func (l *Loop) PostPayload(p notification.Payload) bool {
	return l.Post(PayloadMsg{Payload: p})
}

// Run dispatches messages in order until ctx is cancelled, then waits for
// in-flight focus workers.
func (l *Loop) Run(ctx context.Context) error {
	defer func() {
		l.box.Close()
		l.workers.Wait()
	}()

	for {
		for {
			m, ok := l.box.Take()
			if !ok {
				break
			}
			l.dispatch(ctx, m)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.box.Wait():
		}
	}
}

func (l *Loop) dispatch(ctx context.Context, m Message) {
	switch msg := m.(type) {
	case PayloadMsg:
		l.handlePayload(msg.Payload)
	case ActivatedMsg:
		id, ok := l.byPresentation[msg.PresentationID]
		if !ok {
			logging.Debug("activation for unknown presentation %d", msg.PresentationID)
			return
		}
		l.startFocus(ctx, id)
	case FocusMsg:
		l.startFocus(ctx, msg.NotificationID)
	case DismissedMsg:
		if id, ok := l.byPresentation[msg.PresentationID]; ok {
			l.forget(id)
		}
	case FocusResult:
		l.handleFocusResult(msg)
	default:
		logging.Warn("consumer loop: unknown message %T", m)
	}
}

func (l *Loop) handlePayload(p notification.Payload) {
	n := l.normalizer.Normalize(p)
	l.track(n)
	logging.Info("notification %s: [%s] %s (%s)", n.ID, n.Urgency, n.Label, n.Project)

	if l.presenter != nil {
		pid, err := l.presenter.Show(n)
		if err != nil {
			logging.Error("failed to present notification: %v", err)
		} else if pid != 0 {
			l.byPresentation[pid] = n.ID
			l.presentationOf[n.ID] = pid
		}
	}
	if l.hooks.OnNotification != nil {
		l.hooks.OnNotification(n)
	}
}

func (l *Loop) track(n *notification.Notification) {
	l.notifications[n.ID] = n
	l.order = append(l.order, n.ID)
	for len(l.order) > maxTracked {
		oldest := l.order[0]
		l.order = l.order[1:]
		l.forget(oldest)
	}
}

func (l *Loop) forget(id string) {
	delete(l.notifications, id)
	if pid, ok := l.presentationOf[id]; ok {
		delete(l.byPresentation, pid)
		delete(l.presentationOf, id)
	}
}

func (l *Loop) startFocus(ctx context.Context, id string) {
	n, ok := l.notifications[id]
	if !ok {
		logging.Debug("focus for unknown notification %s", id)
		return
	}
	if l.focus == nil {
		l.handleFocusResult(FocusResult{NotificationID: id, Notification: n, Err: errors.New("focus not configured")})
		return
	}

	fn := l.focus
	l.workers.Add(1)
	go func() {
		defer l.workers.Done()
		res, err := fn(ctx, n)
		l.Post(FocusResult{NotificationID: n.ID, Notification: n, Result: res, Err: err})
	}()
}

func (l *Loop) handleFocusResult(r FocusResult) {
	if r.Err != nil {
		logging.Warn("focus failed for %s: %v", r.NotificationID, r.Err)
		n := r.Notification
		if n == nil {
			n = l.notifications[r.NotificationID]
		}
		if n != nil && l.presenter != nil {
			l.presenter.ShowFocusFailure(n, r.Err)
		}
	}
	if l.hooks.OnFocusResult != nil {
		l.hooks.OnFocusResult(r)
	}
}

// Pending returns the number of undelivered messages.
func (l *Loop) Pending() int {
	return l.box.Len()
}
