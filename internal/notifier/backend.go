// ABOUTME: Desktop notification backends: freedesktop D-Bus (with click actions) and a beeep fallback.
// ABOUTME: The D-Bus backend reports ActionInvoked/NotificationClosed signals through callbacks.
package notifier

import (
	"fmt"
	"time"

	"github.com/esiqveland/notify"
	"github.com/gen2brain/beeep"
	"github.com/godbus/dbus/v5"

	"github.com/777genius/claude-notifier/internal/logging"
)

// DefaultActionKey is the freedesktop action invoked by clicking the notification body.
const DefaultActionKey = "default"

// urgency hint values (org.freedesktop.Notifications)
const (
	urgencyNormal   byte = 1
	urgencyCritical byte = 2
)

// Message is one rendered desktop notification.
type Message struct {
	Title     string
	Body      string
	Icon      string
	Critical  bool
	Timeout   time.Duration
	Clickable bool
}

// Backend delivers messages to the desktop. IDs are 0 when the backend cannot
// report clicks for the message.
type Backend interface {
	Send(m Message) (uint32, error)
	Close() error
}

// Callbacks receive desktop events. They run on the D-Bus signal goroutine.
type Callbacks struct {
	OnActivated func(id uint32)
	OnDismissed func(id uint32)
}

type dbusBackend struct {
	appName string
	conn    *dbus.Conn
	bus     notify.Notifier
	cb      Callbacks
}

// NewDBusBackend connects a private session bus connection to the
// org.freedesktop.Notifications service.
func NewDBusBackend(appName string, cb Callbacks) (Backend, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to D-Bus session bus: %w", err)
	}

	b := &dbusBackend{appName: appName, conn: conn, cb: cb}
	bus, err := notify.New(conn,
		notify.WithOnAction(b.onActionInvoked),
		notify.WithOnClosed(b.onNotificationClosed),
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create notifier: %w", err)
	}
	b.bus = bus
	return b, nil
}

func (b *dbusBackend) Send(m Message) (uint32, error) {
	urgency := urgencyNormal
	if m.Critical {
		urgency = urgencyCritical
	}

	n := notify.Notification{
		AppName:       b.appName,
		AppIcon:       m.Icon,
		Summary:       m.Title,
		Body:          m.Body,
		ExpireTimeout: m.Timeout,
		Hints: map[string]dbus.Variant{
			"urgency":        dbus.MakeVariant(urgency),
			"suppress-sound": dbus.MakeVariant(true),
		},
	}
	if m.Clickable {
		n.Actions = []notify.Action{{Key: DefaultActionKey, Label: "Focus"}}
	}

	id, err := b.bus.SendNotification(n)
	if err != nil {
		return 0, fmt.Errorf("failed to send notification: %w", err)
	}
	if !m.Clickable {
		return 0, nil
	}
	return id, nil
}

func (b *dbusBackend) onActionInvoked(sig *notify.ActionInvokedSignal) {
	logging.Debug("ActionInvoked: ID=%d, Action=%s", sig.ID, sig.ActionKey)
	if sig.ActionKey != DefaultActionKey || b.cb.OnActivated == nil {
		return
	}
	b.cb.OnActivated(sig.ID)
}

func (b *dbusBackend) onNotificationClosed(sig *notify.NotificationClosedSignal) {
	logging.Debug("NotificationClosed: ID=%d, Reason=%v", sig.ID, sig.Reason)
	if b.cb.OnDismissed != nil {
		b.cb.OnDismissed(sig.ID)
	}
}

func (b *dbusBackend) Close() error {
	err := b.bus.Close()
	if cerr := b.conn.Close(); err == nil {
		err = cerr
	}
	return err
}

// beeepBackend is used when no session bus is reachable. It cannot report clicks.
type beeepBackend struct{}

// NewBeeepBackend returns the fallback backend.
func NewBeeepBackend(appName string) Backend {
	beeep.AppName = appName
	return beeepBackend{}
}

func (beeepBackend) Send(m Message) (uint32, error) {
	if err := beeep.Notify(m.Title, m.Body, m.Icon); err != nil {
		return 0, fmt.Errorf("failed to send desktop notification: %w", err)
	}
	logging.Debug("Desktop notification sent via beeep: title=%s", m.Title)
	return 0, nil
}

func (beeepBackend) Close() error { return nil }
