package notifier

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/777genius/claude-notifier/internal/audio"
	"github.com/777genius/claude-notifier/internal/config"
	"github.com/777genius/claude-notifier/internal/logging"
	"github.com/777genius/claude-notifier/internal/notification"
	"github.com/777genius/claude-notifier/internal/sounds"
)

// AppName identifies the daemon to the notification server.
const AppName = "claude-notifier"

// focusFailureTimeout keeps the "Could not focus" notice short-lived.
const focusFailureTimeout = 5 * time.Second

// DefaultSendTimeout bounds one call to the notification server. Show runs on
// the daemon's consumer loop, which must not stall behind a hung server.
const DefaultSendTimeout = 5 * time.Second

// ErrSendTimeout is returned when the notification server does not answer in time.
var ErrSendTimeout = errors.New("notification server did not answer")

// Notifier presents notifications on the desktop and plays their sounds.
type Notifier struct {
	cfg      *config.Config
	backend  Backend
	resolver *sounds.Resolver
	play     func(path string) error

	sendTimeout time.Duration

	audioPlayer *audio.Player
	playerInit  sync.Once
	playerErr   error
	mu          sync.Mutex
	wg          sync.WaitGroup
	closing     bool // Prevents new sounds from being enqueued after Close() is called
}

// New creates a notifier on the D-Bus backend, falling back to beeep when no
// session bus is available (clicks are then not reported).
func New(cfg *config.Config, cb Callbacks) *Notifier {
	backend, err := NewDBusBackend(AppName, cb)
	if err != nil {
		logging.Warn("D-Bus notifications unavailable, falling back to beeep (click-to-focus disabled): %v", err)
		backend = NewBeeepBackend(AppName)
	}
	return NewWithBackend(cfg, backend)
}

// NewWithBackend creates a notifier on an explicit backend.
func NewWithBackend(cfg *config.Config, backend Backend) *Notifier {
	n := &Notifier{
		cfg:         cfg,
		backend:     backend,
		resolver:    sounds.NewResolver(),
		sendTimeout: DefaultSendTimeout,
	}
	n.play = n.playSound
	return n
}

// Show renders n and returns the backend's presentation id (0 when clicks
// cannot be reported for it).
func (n *Notifier) Show(notif *notification.Notification) (uint32, error) {
	if !n.cfg.IsDesktopEnabled() {
		logging.Debug("Desktop notifications disabled, skipping %s", notif.ID)
		return 0, nil
	}

	desktop := n.cfg.Notifications.Desktop
	id, err := n.send(Message{
		Title:     notif.Title(),
		Body:      notif.Body,
		Icon:      desktop.AppIcon,
		Critical:  notif.IsCritical(),
		Timeout:   time.Duration(desktop.TimeoutSeconds) * time.Second,
		Clickable: desktop.ClickToFocus,
	})
	if err != nil {
		return 0, err
	}

	n.playSoundAsync(n.soundFor(notif))
	return id, nil
}

// ShowFocusFailure shows a transient, non-clickable notice that focusing failed.
func (n *Notifier) ShowFocusFailure(notif *notification.Notification, cause error) {
	if !n.cfg.IsDesktopEnabled() {
		return
	}
	_, err := n.send(Message{
		Title:   "⚠️ Could not focus",
		Body:    fmt.Sprintf("%s: %v", notif.Project, cause),
		Icon:    n.cfg.Notifications.Desktop.AppIcon,
		Timeout: focusFailureTimeout,
	})
	if err != nil {
		logging.Warn("failed to show focus failure: %v", err)
	}
}

// send delivers m, giving up after sendTimeout. A reply that arrives later is
// discarded, so that notification cannot be clicked.
func (n *Notifier) send(m Message) (uint32, error) {
	type reply struct {
		id  uint32
		err error
	}
	done := make(chan reply, 1)
	go func() {
		id, err := n.backend.Send(m)
		done <- reply{id: id, err: err}
	}()

	select {
	case r := <-done:
		return r.id, r.err
	case <-time.After(n.sendTimeout):
		return 0, fmt.Errorf("%w within %s", ErrSendTimeout, n.sendTimeout)
	}
}

// soundFor returns the configured override for the type tag, else the
// classification's sound name.
func (n *Notifier) soundFor(notif *notification.Notification) string {
	if s, ok := n.cfg.SoundOverride(notif.Type); ok {
		return s
	}
	return notif.Sound
}

// playSoundAsync plays sound asynchronously if enabled
func (n *Notifier) playSoundAsync(sound string) {
	if !n.cfg.Notifications.Desktop.Sound || sound == "" {
		return
	}
	path, ok := n.resolver.Resolve(sound)
	if !ok {
		logging.Warn("Sound not found: %s", sound)
		return
	}

	// Check if notifier is closing to prevent WaitGroup race
	n.mu.Lock()
	if n.closing {
		n.mu.Unlock()
		logging.Debug("Skipping sound playback: notifier is closing")
		return
	}
	n.wg.Add(1)
	n.mu.Unlock()

	go func() {
		defer n.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logging.Error("panic during sound playback: %v", r)
			}
		}()
		if err := n.play(path); err != nil {
			logging.Error("Failed to play sound %s: %v", path, err)
		}
	}()
}

// initPlayer initializes the audio player once
func (n *Notifier) initPlayer() error {
	n.playerInit.Do(func() {
		deviceName := n.cfg.Notifications.Desktop.AudioDevice
		volume := n.cfg.Notifications.Desktop.Volume

		player, err := audio.NewPlayer(deviceName, volume)
		if err != nil {
			n.playerErr = err
			return
		}

		n.mu.Lock()
		n.audioPlayer = player
		n.mu.Unlock()

		if deviceName != "" {
			logging.Debug("Audio player initialized with device: %s, volume: %.0f%%", deviceName, volume*100)
		} else {
			logging.Debug("Audio player initialized with default device, volume: %.0f%%", volume*100)
		}
	})

	return n.playerErr
}

// playSound plays a sound file using the audio module
func (n *Notifier) playSound(soundPath string) error {
	if err := n.initPlayer(); err != nil {
		return fmt.Errorf("failed to initialize audio player: %w", err)
	}

	n.mu.Lock()
	player := n.audioPlayer
	n.mu.Unlock()
	if player == nil {
		return errors.New("audio player closed")
	}

	if err := player.Play(soundPath); err != nil {
		return err
	}
	logging.Debug("Sound played successfully: %s", soundPath)
	return nil
}

// Close waits for all sounds to finish playing and cleans up resources
func (n *Notifier) Close() error {
	n.mu.Lock()
	n.closing = true
	n.mu.Unlock()

	n.wg.Wait()

	n.mu.Lock()
	if n.audioPlayer != nil {
		if err := n.audioPlayer.Close(); err != nil {
			logging.Warn("Failed to close audio player: %v", err)
		}
		n.audioPlayer = nil
		logging.Debug("Audio player closed")
	}
	n.mu.Unlock()

	return n.backend.Close()
}
