//go:build linux

package daemon

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/777genius/claude-notifier/internal/notification"
)

// shortSocketPath keeps socket paths under the 108-byte sun_path limit.
func shortSocketPath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "cn")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "s.sock")
}

func sendRaw(t *testing.T, path string, data []byte) {
	t.Helper()
	conn, err := DialEndpoint(path, time.Second)
	require.NoError(t, err)
	_, err = conn.Write(data)
	require.NoError(t, err)
	require.NoError(t, conn.Close())
}

type recorder struct {
	mu     sync.Mutex
	notes  []*notification.Notification
	focus  []FocusResult
	events chan struct{}
}

func newRecorder() *recorder {
	return &recorder{events: make(chan struct{}, 1024)}
}

func (r *recorder) hooks() Hooks {
	return Hooks{
		OnNotification: func(n *notification.Notification) {
			r.mu.Lock()
			r.notes = append(r.notes, n)
			r.mu.Unlock()
			r.events <- struct{}{}
		},
		OnFocusResult: func(f FocusResult) {
			r.mu.Lock()
			r.focus = append(r.focus, f)
			r.mu.Unlock()
			r.events <- struct{}{}
		},
	}
}

func (r *recorder) notifications() []*notification.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*notification.Notification(nil), r.notes...)
}

func (r *recorder) focusResults() []FocusResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]FocusResult(nil), r.focus...)
}

func (r *recorder) waitNotifications(t *testing.T, n int) []*notification.Notification {
	t.Helper()
	require.Eventually(t, func() bool { return len(r.notifications()) >= n }, 5*time.Second, 10*time.Millisecond)
	return r.notifications()
}

type fakePresenter struct {
	mu       sync.Mutex
	nextID   uint32
	shown    []*notification.Notification
	failures []error
	showErr  error
	closed   bool
}

func (p *fakePresenter) Show(n *notification.Notification) (uint32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.showErr != nil {
		return 0, p.showErr
	}
	p.nextID++
	p.shown = append(p.shown, n)
	return p.nextID, nil
}

func (p *fakePresenter) ShowFocusFailure(n *notification.Notification, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures = append(p.failures, err)
}

func (p *fakePresenter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *fakePresenter) failureCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.failures)
}

func runLoop(t *testing.T, l *Loop) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = l.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}
