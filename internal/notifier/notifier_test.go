package notifier

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/777genius/claude-notifier/internal/config"
	"github.com/777genius/claude-notifier/internal/notification"
	"github.com/777genius/claude-notifier/internal/sounds"
)

type fakeBackend struct {
	mu     sync.Mutex
	sent   []Message
	nextID uint32
	err    error
	closed bool
}

func (f *fakeBackend) Send(m Message) (uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.sent = append(f.sent, m)
	if !m.Clickable {
		return 0, nil
	}
	f.nextID++
	return f.nextID, nil
}

func (f *fakeBackend) Close() error {
	f.closed = true
	return nil
}

// hungBackend never answers until release is closed.
type hungBackend struct {
	release chan struct{}
}

func (h *hungBackend) Send(m Message) (uint32, error) {
	<-h.release
	return 7, nil
}

func (h *hungBackend) Close() error { return nil }

type playRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (p *playRecorder) play(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paths = append(p.paths, path)
	return nil
}

func (p *playRecorder) played() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.paths...)
}

func newTestNotifier(t *testing.T, cfg *config.Config) (*Notifier, *fakeBackend, *playRecorder, string) {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"dialog-warning.oga", "message-new-instant.wav"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	backend := &fakeBackend{}
	n := NewWithBackend(cfg, backend)
	n.resolver = &sounds.Resolver{Dirs: []string{dir}}
	rec := &playRecorder{}
	n.play = rec.play
	return n, backend, rec, dir
}

func permissionNotification() *notification.Notification {
	return notification.Normalize(notification.Payload{
		"notification_type": notification.TypePermissionPrompt,
		"message":           "Allow Bash?",
		"cwd":               "/home/u/demo",
	}, time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC))
}

func TestShow_SendsClickableCriticalMessage(t *testing.T) {
	n, backend, rec, dir := newTestNotifier(t, config.DefaultConfig())

	notif := permissionNotification()
	id, err := n.Show(notif)
	require.NoError(t, err)
	require.NoError(t, n.Close())

	assert.Equal(t, uint32(1), id)
	require.Len(t, backend.sent, 1)
	msg := backend.sent[0]
	assert.Equal(t, notif.Title(), msg.Title)
	assert.Equal(t, notif.Body, msg.Body)
	assert.True(t, msg.Critical)
	assert.True(t, msg.Clickable)
	assert.Equal(t, 30*time.Second, msg.Timeout)

	assert.Equal(t, []string{filepath.Join(dir, "dialog-warning.oga")}, rec.played())
	assert.True(t, backend.closed)
}

func TestShow_NotClickableWhenClickToFocusDisabled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Notifications.Desktop.ClickToFocus = false
	n, backend, _, _ := newTestNotifier(t, cfg)

	id, err := n.Show(permissionNotification())
	require.NoError(t, err)
	require.NoError(t, n.Close())

	assert.Zero(t, id)
	require.Len(t, backend.sent, 1)
	assert.False(t, backend.sent[0].Clickable)
}

func TestShow_DisabledDesktop(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Notifications.Desktop.Enabled = false
	n, backend, rec, _ := newTestNotifier(t, cfg)

	id, err := n.Show(permissionNotification())
	require.NoError(t, err)
	require.NoError(t, n.Close())

	assert.Zero(t, id)
	assert.Empty(t, backend.sent)
	assert.Empty(t, rec.played())
}

func TestShow_BackendError(t *testing.T) {
	n, backend, rec, _ := newTestNotifier(t, config.DefaultConfig())
	backend.err = errors.New("bus gone")

	_, err := n.Show(permissionNotification())
	require.Error(t, err)
	require.NoError(t, n.Close())
	assert.Empty(t, rec.played())
}

func TestShow_HungServerTimesOut(t *testing.T) {
	backend := &hungBackend{release: make(chan struct{})}
	defer close(backend.release)

	n := NewWithBackend(config.DefaultConfig(), backend)
	n.sendTimeout = 50 * time.Millisecond
	rec := &playRecorder{}
	n.play = rec.play

	start := time.Now()
	id, err := n.Show(permissionNotification())
	assert.ErrorIs(t, err, ErrSendTimeout)
	assert.Zero(t, id)
	assert.Less(t, time.Since(start), 2*time.Second)

	// the failure notice is bounded the same way
	start = time.Now()
	n.ShowFocusFailure(permissionNotification(), errors.New("no window"))
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Empty(t, rec.played())
}

func TestShow_SoundSelection(t *testing.T) {
	tests := []struct {
		name     string
		override string
		sound    bool
		want     string
	}{
		{name: "classification sound", sound: true, want: "dialog-warning.oga"},
		{name: "override by type tag", override: "message-new-instant", sound: true, want: "message-new-instant.wav"},
		{name: "unresolvable override", override: "nope", sound: true},
		{name: "sound disabled", sound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Notifications.Desktop.Sound = tt.sound
			if tt.override != "" {
				cfg.Statuses[notification.TypePermissionPrompt] = config.StatusInfo{Sound: tt.override}
			}
			n, _, rec, dir := newTestNotifier(t, cfg)

			_, err := n.Show(permissionNotification())
			require.NoError(t, err)
			require.NoError(t, n.Close())

			if tt.want == "" {
				assert.Empty(t, rec.played())
				return
			}
			assert.Equal(t, []string{filepath.Join(dir, tt.want)}, rec.played())
		})
	}
}

func TestShow_NoSoundAfterClose(t *testing.T) {
	n, _, rec, _ := newTestNotifier(t, config.DefaultConfig())
	require.NoError(t, n.Close())

	_, err := n.Show(permissionNotification())
	require.NoError(t, err)
	assert.Empty(t, rec.played())
}

func TestShowFocusFailure(t *testing.T) {
	n, backend, rec, _ := newTestNotifier(t, config.DefaultConfig())

	notif := permissionNotification()
	n.ShowFocusFailure(notif, errors.New("no window"))
	require.NoError(t, n.Close())

	require.Len(t, backend.sent, 1)
	msg := backend.sent[0]
	assert.Contains(t, msg.Title, "Could not focus")
	assert.Equal(t, "demo: no window", msg.Body)
	assert.False(t, msg.Clickable)
	assert.Equal(t, focusFailureTimeout, msg.Timeout)
	assert.Empty(t, rec.played())
}

func TestBeeepBackend_NeverReportsID(t *testing.T) {
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") == "" {
		t.Skip("no session bus")
	}
	b := NewBeeepBackend(AppName)
	id, err := b.Send(Message{Title: "test", Body: "beeep backend", Clickable: true})
	if err != nil {
		t.Skipf("notification server unavailable: %v", err)
	}
	assert.Zero(t, id)
	assert.NoError(t, b.Close())
}
